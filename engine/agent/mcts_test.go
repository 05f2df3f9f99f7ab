package agent

import (
	"errors"
	"math/rand/v2"
	"testing"

	engine "github.com/charlesbvll/Javass/engine"
)

// shuffledHands deals the 36 cards with a seeded generator.
func shuffledHands(seed uint64) [engine.PlayerCount]engine.CardSet {
	deck := engine.AllCards.Cards()
	rng := rand.New(rand.NewPCG(seed, 0))
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	var hands [engine.PlayerCount]engine.CardSet
	for i, c := range deck {
		hands[i/engine.HandSize] = hands[i/engine.HandSize].Add(c)
	}
	return hands
}

func TestNewMCTSPlayerRejectsFewIterations(t *testing.T) {
	if _, err := NewMCTSPlayer(engine.Player1, 0, engine.HandSize-1); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("NewMCTSPlayer(8 iterations) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewMCTSPlayer(engine.PlayerID(7), 0, 100); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("NewMCTSPlayer(bad seat) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewMCTSPlayer(engine.Player1, 0, engine.HandSize); err != nil {
		t.Errorf("NewMCTSPlayer(9 iterations) error = %v", err)
	}
}

func TestSetPlayersReseats(t *testing.T) {
	p, err := NewMCTSPlayer(engine.Player1, 0, engine.HandSize)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetPlayers(engine.Player3, nil); err != nil {
		t.Fatalf("SetPlayers(P3) error = %v", err)
	}
	if got := p.ID(); got != engine.Player3 {
		t.Errorf("ID() = %v, want P3", got)
	}
	if err := p.SetPlayers(engine.PlayerID(4), nil); !errors.Is(err, engine.ErrInvalidArgument) {
		t.Errorf("SetPlayers(bad seat) error = %v, want ErrInvalidArgument", err)
	}
	if got := p.ID(); got != engine.Player3 {
		t.Errorf("ID() after rejected seat = %v, want P3", got)
	}
}

// TestSingleCandidate checks that a forced card is returned whatever the seed.
func TestSingleCandidate(t *testing.T) {
	lead := engine.NewCard(engine.SuitSpade, engine.RankSix)
	state, err := engine.InitialTurnState(engine.SuitHeart, engine.InitialScore, engine.Player1).WithNewCardPlayed(lead)
	if err != nil {
		t.Fatal(err)
	}
	forced := engine.NewCard(engine.SuitSpade, engine.RankSeven)
	hand := engine.NewCardSet(forced)
	for r := engine.RankSix; r <= engine.RankKing; r++ {
		hand = hand.Add(engine.NewCard(engine.SuitClub, r))
	}
	if hand.Size() != engine.HandSize {
		t.Fatalf("hand size = %d", hand.Size())
	}
	for seed := uint64(0); seed < 5; seed++ {
		p, err := NewMCTSPlayer(engine.Player2, seed, engine.HandSize)
		if err != nil {
			t.Fatal(err)
		}
		got, err := p.CardToPlay(state, hand)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if got != forced {
			t.Errorf("seed %d: CardToPlay = %s, want %s", seed, got, forced)
		}
	}
}

// TestLastCardOfDeal plays a deal down to its last card, where the only
// child would be terminal and is never added to the tree.
func TestLastCardOfDeal(t *testing.T) {
	hands := shuffledHands(7)
	s := engine.InitialTurnState(engine.SuitDiamond, engine.InitialScore, engine.Player1)
	for s.UnplayedCards().Size() > 1 {
		p, err := s.NextPlayer()
		if err != nil {
			t.Fatal(err)
		}
		c := s.Trick().PlayableCards(hands[p]).Get(0)
		hands[p] = hands[p].Remove(c)
		if s, err = s.WithNewCardPlayedAndTrickCollected(c); err != nil {
			t.Fatal(err)
		}
	}
	last, err := s.NextPlayer()
	if err != nil {
		t.Fatal(err)
	}
	mp, err := NewMCTSPlayer(last, 1, engine.HandSize)
	if err != nil {
		t.Fatal(err)
	}
	got, err := mp.CardToPlay(s, hands[last])
	if err != nil {
		t.Fatal(err)
	}
	if want := hands[last].Get(0); got != want {
		t.Errorf("CardToPlay = %s, want %s", got, want)
	}
}

// TestDeterministicAndLegal checks equal seeds give equal choices and that
// every choice is playable, over a whole deal.
func TestDeterministicAndLegal(t *testing.T) {
	hands := shuffledHands(42)
	var a, b [engine.PlayerCount]*MCTSPlayer
	for _, id := range engine.AllPlayers {
		var err error
		if a[id], err = NewMCTSPlayer(id, uint64(id)+100, 200); err != nil {
			t.Fatal(err)
		}
		if b[id], err = NewMCTSPlayer(id, uint64(id)+100, 200); err != nil {
			t.Fatal(err)
		}
	}

	s := engine.InitialTurnState(engine.SuitClub, engine.InitialScore, engine.Player3)
	for !s.IsTerminal() {
		p, err := s.NextPlayer()
		if err != nil {
			t.Fatal(err)
		}
		c1, err := a[p].CardToPlay(s, hands[p])
		if err != nil {
			t.Fatal(err)
		}
		c2, err := b[p].CardToPlay(s, hands[p])
		if err != nil {
			t.Fatal(err)
		}
		if c1 != c2 {
			t.Fatalf("%s: same seed chose %s and %s", p, c1, c2)
		}
		if !s.Trick().PlayableCards(hands[p]).Contains(c1) {
			t.Fatalf("%s played %s, not playable from %s in %s", p, c1, hands[p], s.Trick())
		}
		hands[p] = hands[p].Remove(c1)
		if s, err = s.WithNewCardPlayedAndTrickCollected(c1); err != nil {
			t.Fatal(err)
		}
	}
	sc := s.Score()
	if got := sc.TotalPoints(engine.Team1) + sc.TotalPoints(engine.Team2); got != 157 && got != 257 {
		t.Errorf("deal points = %d", got)
	}
}

// secondToLastTrick returns the ♠-trump state where P1 led ♦A, P2 played
// ♦T and P3 ♦K into the eighth trick, with P1 having won the first seven.
// P4 holds ♠J and ♣6; the other unplayed cards are ♥6, ♥7 and ♥8.
func secondToLastTrick(t *testing.T) (engine.TurnState, engine.CardSet) {
	t.Helper()
	const trump = engine.SuitSpade
	hand := engine.NewCardSet(engine.NewCard(trump, engine.RankJack), engine.NewCard(engine.SuitClub, engine.RankSix))
	hearts := engine.NewCardSet(
		engine.NewCard(engine.SuitHeart, engine.RankSix),
		engine.NewCard(engine.SuitHeart, engine.RankSeven),
		engine.NewCard(engine.SuitHeart, engine.RankEight))
	eighth := []engine.Card{
		engine.NewCard(engine.SuitDiamond, engine.RankAce),
		engine.NewCard(engine.SuitDiamond, engine.RankTen),
		engine.NewCard(engine.SuitDiamond, engine.RankKing),
	}

	// P1 leads a trump into each early trick and nobody else plays one
	// higher, so P1 keeps the lead.
	leads := engine.AllCards.SubsetOfSuit(trump).Difference(hand).Remove(engine.NewCard(trump, engine.RankSix))
	rest := engine.AllCards.Difference(hand).Difference(hearts).Difference(leads).Difference(engine.NewCardSet(eighth...))
	if leads.Size() != 7 || rest.Size() != 21 {
		t.Fatalf("early tricks use %d leads and %d other cards", leads.Size(), rest.Size())
	}

	s := engine.InitialTurnState(trump, engine.InitialScore, engine.Player1)
	play := func(c engine.Card) {
		t.Helper()
		var err error
		if s, err = s.WithNewCardPlayedAndTrickCollected(c); err != nil {
			t.Fatal(err)
		}
	}
	for _, lead := range leads.Cards() {
		play(lead)
		for i := 0; i < engine.PlayerCount-1; i++ {
			c := rest.Get(0)
			rest = rest.Remove(c)
			play(c)
		}
	}
	for _, c := range eighth {
		play(c)
	}
	if s.Trick().Index() != 7 || s.Trick().FirstPlayer() != engine.Player1 {
		t.Fatalf("position is %s, want P1 leading the eighth trick", s)
	}
	if next, err := s.NextPlayer(); err != nil || next != engine.Player4 {
		t.Fatalf("next player = %v, %v", next, err)
	}
	return s, hand
}

// TestTakesValuableTrick checks the search prefers the card that gains its
// team the most points: trumping with ♠J takes 45 points now and leaves ♣6
// to win the last trick, while discarding ♣6 only wins the last trick.
func TestTakesValuableTrick(t *testing.T) {
	state, hand := secondToLastTrick(t)
	want := engine.NewCard(engine.SuitSpade, engine.RankJack)
	for seed := uint64(0); seed < 10; seed++ {
		p, err := NewMCTSPlayer(engine.Player4, seed, engine.HandSize)
		if err != nil {
			t.Fatal(err)
		}
		got, err := p.CardToPlay(state, hand)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if got != want {
			t.Errorf("seed %d: CardToPlay = %s, want %s", seed, got, want)
		}
	}
}

// playDeal plays one deal from hands. Seats marked in searching use MCTS,
// the others play uniformly at random.
func playDeal(t *testing.T, hands [engine.PlayerCount]engine.CardSet, trump engine.Suit, leader engine.PlayerID, searching [engine.PlayerCount]bool, seed uint64) engine.Score {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, 1))
	var players [engine.PlayerCount]*MCTSPlayer
	for _, id := range engine.AllPlayers {
		if !searching[id] {
			continue
		}
		var err error
		if players[id], err = NewMCTSPlayer(id, seed+uint64(id), 1000); err != nil {
			t.Fatal(err)
		}
	}

	s := engine.InitialTurnState(trump, engine.InitialScore, leader)
	for !s.IsTerminal() {
		p, err := s.NextPlayer()
		if err != nil {
			t.Fatal(err)
		}
		playable := s.Trick().PlayableCards(hands[p])
		c := playable.Get(rng.IntN(playable.Size()))
		if players[p] != nil {
			if c, err = players[p].CardToPlay(s, hands[p]); err != nil {
				t.Fatal(err)
			}
		}
		hands[p] = hands[p].Remove(c)
		if s, err = s.WithNewCardPlayedAndTrickCollected(c); err != nil {
			t.Fatal(err)
		}
	}
	return s.Score()
}

// TestOutscoresRandomPlay deals each hand twice, once with MCTS on team 1
// and once on team 2, and checks the searching team collects clearly more
// points overall.
func TestOutscoresRandomPlay(t *testing.T) {
	if testing.Short() {
		t.Skip("plays 30 deals")
	}
	var search, random int
	for seed := uint64(0); seed < 15; seed++ {
		hands := shuffledHands(seed + 1000)
		trump := engine.AllSuits[seed%engine.SuitCount]
		leader := engine.AllPlayers[seed%engine.PlayerCount]

		sc := playDeal(t, hands, trump, leader, [engine.PlayerCount]bool{true, false, true, false}, seed)
		search += sc.TotalPoints(engine.Team1)
		random += sc.TotalPoints(engine.Team2)

		sc = playDeal(t, hands, trump, leader, [engine.PlayerCount]bool{false, true, false, true}, seed)
		search += sc.TotalPoints(engine.Team2)
		random += sc.TotalPoints(engine.Team1)
	}
	t.Logf("searching teams %d points, random teams %d", search, random)
	if search*10 <= random*11 {
		t.Errorf("searching teams scored %d against %d for random play", search, random)
	}
}

func TestSlotOf(t *testing.T) {
	cands := engine.NewCardSet(
		engine.NewCard(engine.SuitSpade, engine.RankTen),
		engine.NewCard(engine.SuitHeart, engine.RankSix),
		engine.NewCard(engine.SuitClub, engine.RankAce))
	for i, c := range cands.Cards() {
		if got := slotOf(cands, c); got != i {
			t.Errorf("slotOf(%s) = %d, want %d", c, got, i)
		}
	}
}

func TestBestSlotPrefersEmptyThenMean(t *testing.T) {
	var tr tree
	state := engine.InitialTurnState(engine.SuitSpade, engine.InitialScore, engine.Player1)
	cands := engine.NewCardSet(engine.NewCard(engine.SuitSpade, engine.RankSix), engine.NewCard(engine.SuitSpade, engine.RankSeven))
	root := tr.add(state, cands, engine.Team1)
	if got := tr.bestSlot(root, ExplorationConstant); got != 0 {
		t.Fatalf("bestSlot on fresh node = %d, want 0", got)
	}
	c0 := tr.add(state, cands, engine.Team1)
	tr.setChild(root, 0, c0)
	tr.nodes[c0].visits, tr.nodes[c0].points = 2, 100
	if got := tr.bestSlot(root, ExplorationConstant); got != 1 {
		t.Fatalf("bestSlot with empty slot 1 = %d, want 1", got)
	}
	c1 := tr.add(state, cands, engine.Team1)
	tr.setChild(root, 1, c1)
	tr.nodes[c1].visits, tr.nodes[c1].points = 2, 60
	tr.nodes[root].visits = 4
	if got := tr.bestSlot(root, 0); got != 0 {
		t.Errorf("bestSlot(c=0) = %d, want 0", got)
	}
	tr.nodes[c1].points = 100
	if got := tr.bestSlot(root, 0); got != 0 {
		t.Errorf("bestSlot tie = %d, want lowest slot 0", got)
	}
}
