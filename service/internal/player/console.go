package player

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	engine "github.com/charlesbvll/Javass/engine"
)

// Console renders notifications as text lines for a human at a terminal.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	own   engine.PlayerID
	names map[engine.PlayerID]string
}

var _ engine.Observer = (*Console)(nil)

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, names: map[engine.PlayerID]string{}}
}

func (c *Console) printf(format string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, format+"\n", args...)
	return err
}

func (c *Console) name(p engine.PlayerID) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.names[p]; ok && n != "" {
		return n
	}
	return p.String()
}

func (c *Console) SetPlayers(own engine.PlayerID, names map[engine.PlayerID]string) error {
	c.mu.Lock()
	c.own = own
	for p, n := range names {
		c.names[p] = n
	}
	c.mu.Unlock()
	return c.printf("You are %s (%s), team %s.", c.name(own), own, own.Team())
}

func (c *Console) UpdateHand(hand engine.CardSet) error {
	return c.printf("Hand: %s", hand)
}

func (c *Console) SetTrump(trump engine.Suit) error {
	return c.printf("Trump: %s", trump)
}

func (c *Console) UpdateTrick(trick engine.Trick) error {
	if trick == engine.TerminalTrick || trick.IsEmpty() {
		return nil
	}
	return c.printf("%s", trick)
}

func (c *Console) UpdateScore(score engine.Score) error {
	return c.printf("Score: %s %d, %s %d.",
		engine.Team1, score.TotalPoints(engine.Team1), engine.Team2, score.TotalPoints(engine.Team2))
}

func (c *Console) SetWinningTeam(team engine.TeamID) error {
	c.mu.Lock()
	won := c.own.Team() == team
	c.mu.Unlock()
	if won {
		return c.printf("Team %s wins. Well played!", team)
	}
	return c.printf("Team %s wins.", team)
}

// Prompt lists the playable cards, numbered from 0, as an OnTurn callback.
func (c *Console) Prompt(_ engine.TurnState, _ engine.CardSet, playable engine.CardSet) {
	parts := make([]string, 0, playable.Size())
	for i, card := range playable.Cards() {
		parts = append(parts, fmt.Sprintf("%d:%s", i, card))
	}
	c.printf("Your turn: %s", strings.Join(parts, " "))
}

// ReadChoices reads one choice per line from r and hands it to whichever of
// humans is waiting for a card. A line is either the index shown by Prompt
// or a card such as ♥K. It returns when r is exhausted, ctx is done or a
// human is closed.
func ReadChoices(ctx context.Context, r io.Reader, out io.Writer, humans ...*Human) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		h := waiting(humans)
		if h == nil {
			fmt.Fprintln(out, "not your turn")
			continue
		}
		card, ok := parseChoice(text, h.Playable())
		if !ok {
			fmt.Fprintf(out, "not a playable card: %q\n", text)
			continue
		}
		if err := h.Choose(ctx, card); err != nil {
			return err
		}
	}
	return sc.Err()
}

func waiting(humans []*Human) *Human {
	for _, h := range humans {
		if !h.Playable().IsEmpty() {
			return h
		}
	}
	return nil
}

func parseChoice(text string, playable engine.CardSet) (engine.Card, bool) {
	if i, err := strconv.Atoi(text); err == nil {
		if i < 0 || i >= playable.Size() {
			return engine.NoCard, false
		}
		return playable.Get(i), true
	}
	for _, c := range engine.AllCards.Cards() {
		if strings.EqualFold(c.String(), text) {
			return c, playable.Contains(c)
		}
	}
	return engine.NoCard, false
}
