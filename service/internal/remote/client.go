package remote

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/service/internal/logging"
	"github.com/sirupsen/logrus"
)

// Client is an engine.Player whose decisions are made by a Server at the
// other end of the connection. It is not safe for concurrent use.
type Client struct {
	conn io.ReadWriteCloser
	r    *bufio.Reader
	w    *bufio.Writer
	log  *logrus.Entry
}

var _ engine.Player = (*Client)(nil)

// Dial connects to a Server at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial remote player %s: %w", addr, err)
	}
	c := NewClient(conn)
	c.log = c.log.WithField("addr", addr)
	return c, nil
}

// NewClient wraps an established connection.
func NewClient(conn io.ReadWriteCloser) *Client {
	return &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
		log:  logging.For("remote-client"),
	}
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) send(cmd Command, args ...string) error {
	line := Combine(" ", append([]string{string(cmd)}, args...)...)
	c.log.WithField("cmd", cmd).Debug(line)
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	return nil
}

func (c *Client) SetPlayers(own engine.PlayerID, names map[engine.PlayerID]string) error {
	encoded := make([]string, engine.PlayerCount)
	for i, p := range engine.AllPlayers {
		encoded[i] = SerializeString(names[p])
	}
	return c.send(CmdPlayers, SerializeInt(uint32(own)), Combine(",", encoded...))
}

func (c *Client) UpdateHand(hand engine.CardSet) error {
	return c.send(CmdHand, SerializeLong(uint64(hand)))
}

func (c *Client) SetTrump(trump engine.Suit) error {
	return c.send(CmdTrump, SerializeInt(uint32(trump)))
}

func (c *Client) UpdateTrick(trick engine.Trick) error {
	return c.send(CmdTrick, SerializeInt(uint32(trick)))
}

func (c *Client) UpdateScore(score engine.Score) error {
	return c.send(CmdScore, SerializeLong(uint64(score)))
}

func (c *Client) SetWinningTeam(team engine.TeamID) error {
	return c.send(CmdWinner, SerializeInt(uint32(team)))
}

// CardToPlay sends the state and hand, then blocks until the reply line.
func (c *Client) CardToPlay(state engine.TurnState, hand engine.CardSet) (engine.Card, error) {
	packedState := Combine(",",
		SerializeLong(uint64(state.Score())),
		SerializeLong(uint64(state.UnplayedCards())),
		SerializeInt(uint32(state.Trick())))
	if err := c.send(CmdCard, packedState, SerializeLong(uint64(hand))); err != nil {
		return engine.NoCard, err
	}

	line, err := c.r.ReadString('\n')
	if err != nil {
		return engine.NoCard, fmt.Errorf("read %s reply: %w", CmdCard, err)
	}
	v, err := DeserializeInt(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return engine.NoCard, err
	}
	card, err := engine.CardOf(v)
	if err != nil {
		return engine.NoCard, fmt.Errorf("%w: reply %w", ErrProtocol, err)
	}
	return card, nil
}
