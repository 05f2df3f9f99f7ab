// Command jass-remote serves one player to a jass game running on another
// machine. It waits for the game to connect on the Jass port, then plays
// until the game closes the connection.
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
	"github.com/charlesbvll/Javass/engine/agent"
	"github.com/charlesbvll/Javass/service/internal/config"
	"github.com/charlesbvll/Javass/service/internal/logging"
	"github.com/charlesbvll/Javass/service/internal/player"
	"github.com/charlesbvll/Javass/service/internal/remote"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "jass-remote:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("jass-remote", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "optional file of environment settings")
	addr := fs.String("addr", "", "listen address (default :JASS_PORT)")
	human := fs.Bool("human", false, "play from this terminal instead of running MCTS")
	iterations := fs.Int("iterations", 0, "MCTS iterations per card (default JASS_MCTS_ITERATIONS)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments %q", fs.Args())
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, nil)
	if *addr == "" {
		*addr = ":" + strconv.Itoa(cfg.Port)
	}
	if *iterations == 0 {
		*iterations = cfg.Iterations
	}

	p, cleanup, err := localPlayer(ctx, cfg, *human, *iterations, in, out)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintln(out, "The game starts when the client connects.")
	return remote.NewServer(p, remote.WithLogger(serverLog(*human))).ListenAndServe(ctx, *addr)
}

// serverLog tags the server's log with the kind of player it serves.
func serverLog(human bool) *logrus.Entry {
	kind := "mcts"
	if human {
		kind = "human"
	}
	return logging.For("remote-server").WithField("player", kind)
}

// localPlayer builds the player being served. The MCTS seat is provisional;
// the game assigns the real one when it connects.
func localPlayer(ctx context.Context, cfg *config.Config, human bool, iterations int, in io.Reader, out io.Writer) (engine.Player, func(), error) {
	if human {
		console := player.NewConsole(out)
		h := player.NewHuman(console)
		h.OnTurn = console.Prompt
		go func() {
			if err := player.ReadChoices(ctx, in, out, h); err != nil && !errors.Is(err, player.ErrClosed) {
				logging.For("console").WithError(err).Warn("input stopped")
			}
		}()
		return h, h.Close, nil
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	mcts, err := agent.NewMCTSPlayer(engine.Player1, seed, iterations)
	if err != nil {
		return nil, nil, err
	}
	return mcts, func() {}, nil
}
