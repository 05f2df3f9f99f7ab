package remote

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/service/internal/logging"
	"github.com/sirupsen/logrus"
)

// Server exposes a local player to one remote game.
type Server struct {
	player engine.Player
	log    *logrus.Entry
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the default logger.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Server) { s.log = l }
}

// NewServer returns a server dispatching to player.
func NewServer(player engine.Player, opts ...Option) *Server {
	s := &Server{player: player, log: logging.For("remote-server")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListenAndServe listens on addr, accepts exactly one connection and serves
// it until the game closes it.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts one connection from ln, closes ln and serves the connection.
// Cancelling ctx aborts the accept and the connection.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.log.WithField("addr", ln.Addr().String()).Info("waiting for the game to connect")
	conn, err := ln.Accept()
	ln.Close()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()
	stopConn := context.AfterFunc(ctx, func() { conn.Close() })
	defer stopConn()

	s.log.WithField("peer", conn.RemoteAddr().String()).Info("game connected")
	if err := s.ServeConn(conn); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// ServeConn reads commands from rw until end of stream. It returns nil on a
// clean end of stream and the first protocol, I/O or player error otherwise.
func (s *Server) ServeConn(rw io.ReadWriter) error {
	r := bufio.NewReader(rw)
	w := bufio.NewWriter(rw)
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read command: %w", err)
		}
		if text := strings.TrimRight(line, "\r\n"); text != "" {
			if derr := s.dispatch(text, w); derr != nil {
				s.log.WithError(derr).Error("stopping")
				return derr
			}
		}
		if err != nil {
			s.log.Info("game closed the connection")
			return nil
		}
	}
}

func (s *Server) dispatch(line string, w *bufio.Writer) error {
	fields := Split(" ", line)
	cmd, err := ParseCommand(fields[0])
	if err != nil {
		return err
	}
	if len(fields)-1 != cmd.Args() {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrProtocol, cmd, cmd.Args(), len(fields)-1)
	}
	s.log.WithField("cmd", cmd).Debug(line)
	arg := fields[1]

	switch cmd {
	case CmdPlayers:
		return s.handlePlayers(arg, fields[2])
	case CmdCard:
		return s.handleCard(arg, fields[2], w)
	case CmdHand:
		hand, err := parseCardSet(arg)
		if err != nil {
			return err
		}
		return wrapPlayer(cmd, s.player.UpdateHand(hand))
	case CmdTrump:
		v, err := DeserializeInt(arg)
		if err != nil {
			return err
		}
		trump, err := engine.SuitOf(v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		return wrapPlayer(cmd, s.player.SetTrump(trump))
	case CmdTrick:
		v, err := DeserializeInt(arg)
		if err != nil {
			return err
		}
		trick := engine.TerminalTrick
		if engine.Trick(v) != engine.TerminalTrick {
			if trick, err = engine.TrickOf(v); err != nil {
				return fmt.Errorf("%w: %w", ErrProtocol, err)
			}
		}
		return wrapPlayer(cmd, s.player.UpdateTrick(trick))
	case CmdScore:
		v, err := DeserializeLong(arg)
		if err != nil {
			return err
		}
		score, err := engine.ScoreOf(v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		return wrapPlayer(cmd, s.player.UpdateScore(score))
	case CmdWinner:
		v, err := DeserializeInt(arg)
		if err != nil {
			return err
		}
		team, err := engine.TeamIDOf(v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		return wrapPlayer(cmd, s.player.SetWinningTeam(team))
	}
	return fmt.Errorf("%w: unhandled command %s", ErrProtocol, cmd)
}

func (s *Server) handlePlayers(idArg, namesArg string) error {
	v, err := DeserializeInt(idArg)
	if err != nil {
		return err
	}
	own, err := engine.PlayerIDOf(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	encoded := Split(",", namesArg)
	if len(encoded) != engine.PlayerCount {
		return fmt.Errorf("%w: %d player names, want %d", ErrProtocol, len(encoded), engine.PlayerCount)
	}
	names := make(map[engine.PlayerID]string, engine.PlayerCount)
	for i, p := range engine.AllPlayers {
		if names[p], err = DeserializeString(encoded[i]); err != nil {
			return err
		}
	}
	if err := s.player.SetPlayers(own, names); err != nil {
		return wrapPlayer(CmdPlayers, err)
	}
	s.log = s.log.WithField("seat", own.String())
	return nil
}

func (s *Server) handleCard(stateArg, handArg string, w *bufio.Writer) error {
	parts := Split(",", stateArg)
	if len(parts) != 3 {
		return fmt.Errorf("%w: state has %d components, want 3", ErrProtocol, len(parts))
	}
	score, err := DeserializeLong(parts[0])
	if err != nil {
		return err
	}
	unplayed, err := DeserializeLong(parts[1])
	if err != nil {
		return err
	}
	trick, err := DeserializeInt(parts[2])
	if err != nil {
		return err
	}
	state, err := engine.TurnStateOf(score, unplayed, trick)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	hand, err := parseCardSet(handArg)
	if err != nil {
		return err
	}

	card, err := s.player.CardToPlay(state, hand)
	if err != nil {
		return wrapPlayer(CmdCard, err)
	}
	if _, err := w.WriteString(SerializeInt(uint32(card)) + "\n"); err != nil {
		return fmt.Errorf("reply %s: %w", CmdCard, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("reply %s: %w", CmdCard, err)
	}
	return nil
}

func parseCardSet(arg string) (engine.CardSet, error) {
	v, err := DeserializeLong(arg)
	if err != nil {
		return engine.EmptySet, err
	}
	set, err := engine.CardSetOf(v)
	if err != nil {
		return engine.EmptySet, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return set, nil
}

func wrapPlayer(cmd Command, err error) error {
	if err != nil {
		return fmt.Errorf("player %s: %w", cmd, err)
	}
	return nil
}
