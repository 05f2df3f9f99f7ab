package engine

import (
	"errors"
	"testing"
)

// TestCardPacking verifies suit and rank survive a pack/unpack for all 36 cards.
func TestCardPacking(t *testing.T) {
	for _, s := range AllSuits {
		for r := RankSix; r <= RankAce; r++ {
			c := NewCard(s, r)
			if c.Suit() != s || c.Rank() != r {
				t.Errorf("NewCard(%s,%s) unpacked to %s,%s", s, r, c.Suit(), c.Rank())
			}
			if !c.IsValid() {
				t.Errorf("NewCard(%s,%s) = %#x is not valid", s, r, uint8(c))
			}
			if got := uint8(c); got != uint8(s)<<4|uint8(r) {
				t.Errorf("NewCard(%s,%s) = %#b, want suit<<4|rank", s, r, got)
			}
		}
	}
}

func TestCardOf(t *testing.T) {
	tests := []struct {
		packed uint32
		ok     bool
	}{
		{0x00, true},
		{0x38, true},
		{0x08, true},
		{0x09, false},
		{0x0F, false},
		{0x3F, false},
		{0x40, false},
		{0xFFFFFFFF, false},
	}
	for _, tt := range tests {
		c, err := CardOf(tt.packed)
		if tt.ok && err != nil {
			t.Errorf("CardOf(%#x) error = %v", tt.packed, err)
		}
		if !tt.ok {
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("CardOf(%#x) error = %v, want ErrInvalidArgument", tt.packed, err)
			}
			continue
		}
		if uint32(c) != tt.packed {
			t.Errorf("CardOf(%#x) = %#x", tt.packed, uint8(c))
		}
	}
}

func TestNewCardPanicsOnBadRank(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewCard with rank 9 did not panic")
		}
	}()
	NewCard(SuitSpade, Rank(9))
}

// TestCardPoints checks the trump and plain point tables.
func TestCardPoints(t *testing.T) {
	tests := []struct {
		rank        Rank
		trump, free int
	}{
		{RankSix, 0, 0},
		{RankSeven, 0, 0},
		{RankEight, 0, 0},
		{RankNine, 14, 0},
		{RankTen, 10, 10},
		{RankJack, 20, 2},
		{RankQueen, 3, 3},
		{RankKing, 4, 4},
		{RankAce, 11, 11},
	}
	total := 0
	for _, tt := range tests {
		c := NewCard(SuitClub, tt.rank)
		if got := c.Points(SuitClub); got != tt.trump {
			t.Errorf("%s.Points(trump) = %d, want %d", c, got, tt.trump)
		}
		if got := c.Points(SuitHeart); got != tt.free {
			t.Errorf("%s.Points(plain) = %d, want %d", c, got, tt.free)
		}
		total += tt.trump + 3*tt.free
	}
	// 152 card points per deal, before the last trick bonus.
	if total != 152 {
		t.Errorf("total deck points = %d, want 152", total)
	}
}

func TestCardIsBetter(t *testing.T) {
	trump := SuitHeart
	tests := []struct {
		name string
		c    Card
		that Card
		want bool
	}{
		{"trump jack over trump nine", NewCard(SuitHeart, RankJack), NewCard(SuitHeart, RankNine), true},
		{"trump nine over trump ace", NewCard(SuitHeart, RankNine), NewCard(SuitHeart, RankAce), true},
		{"trump ace under trump nine", NewCard(SuitHeart, RankAce), NewCard(SuitHeart, RankNine), false},
		{"trump six over plain ace", NewCard(SuitHeart, RankSix), NewCard(SuitSpade, RankAce), true},
		{"plain ace under trump six", NewCard(SuitSpade, RankAce), NewCard(SuitHeart, RankSix), false},
		{"plain ace over plain king", NewCard(SuitSpade, RankAce), NewCard(SuitSpade, RankKing), true},
		{"plain jack over plain ten", NewCard(SuitSpade, RankJack), NewCard(SuitSpade, RankTen), true},
		{"different plain suits", NewCard(SuitClub, RankAce), NewCard(SuitSpade, RankSix), false},
		{"different plain suits reversed", NewCard(SuitSpade, RankSix), NewCard(SuitClub, RankAce), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsBetter(trump, tt.that); got != tt.want {
				t.Errorf("%s.IsBetter(%s, %s) = %v, want %v", tt.c, trump, tt.that, got, tt.want)
			}
		})
	}
}

func TestCardString(t *testing.T) {
	if got := NewCard(SuitDiamond, RankTen).String(); got != "♦10" {
		t.Errorf("String() = %q, want ♦10", got)
	}
	if got := NoCard.String(); got != "--" {
		t.Errorf("NoCard.String() = %q, want --", got)
	}
}

func TestPlayerTeams(t *testing.T) {
	wantTeams := [PlayerCount]TeamID{Team1, Team2, Team1, Team2}
	for i, p := range AllPlayers {
		if got := p.Team(); got != wantTeams[i] {
			t.Errorf("%s.Team() = %s, want %s", p, got, wantTeams[i])
		}
		if got := p.Next(); got != AllPlayers[(i+1)%PlayerCount] {
			t.Errorf("%s.Next() = %s", p, got)
		}
	}
	if Team1.Other() != Team2 || Team2.Other() != Team1 {
		t.Error("Other() does not swap teams")
	}
	if _, err := PlayerIDOf(4); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("PlayerIDOf(4) error = %v", err)
	}
	if _, err := TeamIDOf(2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("TeamIDOf(2) error = %v", err)
	}
	if _, err := SuitOf(4); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SuitOf(4) error = %v", err)
	}
}
