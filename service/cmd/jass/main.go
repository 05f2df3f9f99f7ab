// Command jass plays a game of Jass in the terminal between humans,
// simulated players and remote players.
//
// Usage:
//
//	jass [-env file] <p1> <p2> <p3> <p4> [seed]
//
// Each player is one of
//
//	h[:name]              a human at this terminal
//	s[:name[:iterations]] a simulated player running MCTS
//	r[:name[:host]]       a player served by jass-remote on host
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/service/internal/config"
	"github.com/charlesbvll/Javass/service/internal/game"
	"github.com/charlesbvll/Javass/service/internal/logging"
	"github.com/charlesbvll/Javass/service/internal/player"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "jass:", err)
		}
		os.Exit(1)
	}
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintln(w, "Usage: jass [flags] <p1> <p2> <p3> <p4> [seed]")
		fmt.Fprintln(w, "Each <pn> is one of:")
		fmt.Fprintln(w, "  h[:name]               a human at this terminal")
		fmt.Fprintln(w, "  s[:name[:iterations]]  a simulated player running MCTS")
		fmt.Fprintln(w, "  r[:name[:host]]        a remote player served by jass-remote")
		fmt.Fprintln(w, "Names default to Aline, Bastien, Colette and David. Remote players")
		fmt.Fprintln(w, "are dialled at JASS_HOST and JASS_PORT unless host names them.")
		fs.PrintDefaults()
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("jass", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "optional file of environment settings")
	fs.Usage = usage(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != engine.PlayerCount && len(rest) != engine.PlayerCount+1 {
		fs.Usage()
		return fmt.Errorf("expected %d players and an optional seed, got %d arguments", engine.PlayerCount, len(rest))
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, nil)

	seed, err := gameSeed(cfg, rest[engine.PlayerCount:])
	if err != nil {
		return err
	}
	var specs [engine.PlayerCount]playerSpec
	for i := range specs {
		if specs[i], err = parsePlayerSpec(rest[i], engine.PlayerID(i), cfg); err != nil {
			return err
		}
	}

	seeds := rand.New(rand.NewPCG(seed, 0))
	matchSeed := seeds.Uint64()
	s, err := buildPlayers(ctx, specs, cfg, seeds.Uint64, out)
	if err != nil {
		return err
	}
	defer s.close()

	g, err := game.New(matchSeed, s.players, s.names)
	if err != nil {
		return err
	}
	g.TrickPause = cfg.Pace
	release, err := attachBackends(ctx, cfg, g)
	defer release()
	if err != nil {
		return err
	}

	if len(s.humans) > 0 {
		go func() {
			if err := player.ReadChoices(ctx, in, out, s.humans...); err != nil && !errors.Is(err, player.ErrClosed) {
				logging.For("console").WithError(err).Warn("input stopped")
			}
		}()
	}

	logging.ForGame("jass", g.ID).WithFields(logrus.Fields{"seed": seed, "players": s.names}).Info("starting game")
	return g.Run(ctx)
}

// gameSeed reads the optional seed argument, then JASS_SEED, then draws one.
func gameSeed(cfg *config.Config, arg []string) (uint64, error) {
	if len(arg) == 1 {
		v, err := strconv.ParseInt(arg[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seed %q", arg[0])
		}
		return uint64(v), nil
	}
	if cfg.Seed != 0 {
		return cfg.Seed, nil
	}
	return rand.Uint64(), nil
}
