package engine

// PlayableCards returns the cards of hand that may legally be played into t.
//
// Rules, in order:
//   - an empty trick accepts any card;
//   - a hand holding neither the lead suit nor trump may play anything;
//   - when trump was led, trumps must follow, unless the only trump held is
//     the Jack;
//   - a hand holding the lead suit plays it, or a trump beating the current
//     winner;
//   - otherwise a trump beating the winner, else any non-trump, else the
//     remaining trumps.
func (t Trick) PlayableCards(hand CardSet) CardSet {
	if t.IsEmpty() {
		return hand
	}
	trump := t.Trump()
	lead := t.LeadSuit()
	trumps := hand.SubsetOfSuit(trump)
	leads := hand.SubsetOfSuit(lead)

	if leads.IsEmpty() && trumps.IsEmpty() {
		return hand
	}
	if lead == trump {
		if trumps == Singleton(NewCard(trump, RankJack)) {
			return hand
		}
		return trumps
	}

	over := trumpsAbove(trumps, trump, t.Card(t.winningIndex()))
	if !leads.IsEmpty() {
		return leads.Union(over)
	}
	if !over.IsEmpty() {
		return over
	}
	if others := hand.Difference(trumps); !others.IsEmpty() {
		return others
	}
	return trumps
}

// trumpsAbove returns the cards of trumps that beat winner.
func trumpsAbove(trumps CardSet, trump Suit, winner Card) CardSet {
	out := EmptySet
	for _, c := range trumps.Cards() {
		if c.IsBetter(trump, winner) {
			out = out.Add(c)
		}
	}
	return out
}
