package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/engine/agent"
	"github.com/charlesbvll/Javass/service/internal/config"
	"github.com/charlesbvll/Javass/service/internal/player"
	"github.com/charlesbvll/Javass/service/internal/remote"
)

var defaultNames = [engine.PlayerCount]string{"Aline", "Bastien", "Colette", "David"}

type playerKind byte

const (
	kindHuman     playerKind = 'h'
	kindSimulated playerKind = 's'
	kindRemote    playerKind = 'r'
)

// playerSpec is one parsed seat argument: h[:name], s[:name[:iterations]]
// or r[:name[:host]].
type playerSpec struct {
	kind       playerKind
	name       string
	iterations int
	host       string
}

// parsePlayerSpec reads the argument for seat. Iterations and the remote
// host default to cfg.
func parsePlayerSpec(arg string, seat engine.PlayerID, cfg *config.Config) (playerSpec, error) {
	parts := strings.Split(arg, ":")
	if len(parts) > 3 {
		return playerSpec{}, fmt.Errorf("too many components in player %q", arg)
	}
	spec := playerSpec{name: defaultNames[seat], iterations: cfg.Iterations, host: cfg.Host}
	if len(parts) > 1 && parts[1] != "" {
		spec.name = parts[1]
	}
	var param string
	if len(parts) > 2 {
		param = parts[2]
	}

	switch parts[0] {
	case "h":
		spec.kind = kindHuman
		if len(parts) > 2 {
			return playerSpec{}, fmt.Errorf("too many components in human player %q", arg)
		}
	case "s":
		spec.kind = kindSimulated
		if param != "" {
			n, err := strconv.Atoi(param)
			if err != nil || n < config.MinIterations {
				return playerSpec{}, fmt.Errorf("invalid MCTS iteration count in %q, need an integer of at least %d", arg, config.MinIterations)
			}
			spec.iterations = n
		}
	case "r":
		spec.kind = kindRemote
		if param != "" {
			spec.host = param
		}
	default:
		return playerSpec{}, fmt.Errorf("invalid player specification %q", arg)
	}
	return spec, nil
}

// remoteAddr adds port unless host already names one.
func remoteAddr(host string, port int) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// seats holds what buildPlayers created.
type seats struct {
	players map[engine.PlayerID]engine.Player
	names   map[engine.PlayerID]string
	humans  []*player.Human
	remotes []*remote.Client
}

// close releases humans and remote connections.
func (s *seats) close() {
	for _, h := range s.humans {
		h.Close()
	}
	for _, c := range s.remotes {
		c.Close()
	}
}

// buildPlayers creates one player per spec. Simulated players draw their
// seeds from seed in seat order and are paced by cfg.Pace. Humans print
// to out.
func buildPlayers(ctx context.Context, specs [engine.PlayerCount]playerSpec, cfg *config.Config, seed func() uint64, out io.Writer) (*seats, error) {
	s := &seats{
		players: make(map[engine.PlayerID]engine.Player, engine.PlayerCount),
		names:   make(map[engine.PlayerID]string, engine.PlayerCount),
	}
	for i, spec := range specs {
		id := engine.PlayerID(i)
		s.names[id] = spec.name
		switch spec.kind {
		case kindHuman:
			console := player.NewConsole(out)
			h := player.NewHuman(console)
			h.OnTurn = console.Prompt
			s.humans = append(s.humans, h)
			s.players[id] = h
		case kindSimulated:
			mcts, err := agent.NewMCTSPlayer(id, seed(), spec.iterations)
			if err != nil {
				s.close()
				return nil, err
			}
			paced, err := player.NewPaced(mcts, cfg.Pace)
			if err != nil {
				s.close()
				return nil, err
			}
			s.players[id] = paced
		case kindRemote:
			c, err := remote.Dial(ctx, remoteAddr(spec.host, cfg.Port))
			if err != nil {
				s.close()
				return nil, fmt.Errorf("cannot reach remote player %s: %w", spec.name, err)
			}
			s.remotes = append(s.remotes, c)
			s.players[id] = c
		}
	}
	return s, nil
}
