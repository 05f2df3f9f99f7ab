package main

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	engine "github.com/charlesbvll/Javass/engine"
	"github.com/charlesbvll/Javass/service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlayerSpec(t *testing.T) {
	cfg := &config.Config{Host: "table.local", Port: 6000, Iterations: 500}
	tests := []struct {
		arg     string
		seat    engine.PlayerID
		want    playerSpec
		wantErr bool
	}{
		{"h", engine.Player1, playerSpec{kind: kindHuman, name: "Aline", iterations: 500, host: "table.local"}, false},
		{"h:Zoé", engine.Player2, playerSpec{kind: kindHuman, name: "Zoé", iterations: 500, host: "table.local"}, false},
		{"s::2000", engine.Player3, playerSpec{kind: kindSimulated, name: "Colette", iterations: 2000, host: "table.local"}, false},
		{"s:Bot", engine.Player4, playerSpec{kind: kindSimulated, name: "Bot", iterations: 500, host: "table.local"}, false},
		{"r:Far:10.0.0.7", engine.Player4, playerSpec{kind: kindRemote, name: "Far", iterations: 500, host: "10.0.0.7"}, false},
		{"r", engine.Player2, playerSpec{kind: kindRemote, name: "Bastien", iterations: 500, host: "table.local"}, false},
		{"h:a:b", engine.Player1, playerSpec{}, true},
		{"s:a:b:c", engine.Player1, playerSpec{}, true},
		{"s:a:8", engine.Player1, playerSpec{}, true},
		{"s:a:many", engine.Player1, playerSpec{}, true},
		{"x:a", engine.Player1, playerSpec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parsePlayerSpec(tt.arg, tt.seat, cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoteAddr(t *testing.T) {
	assert.Equal(t, "localhost:5108", remoteAddr("localhost", config.DefaultPort))
	assert.Equal(t, "example.org:7000", remoteAddr("example.org:7000", 6000))
	assert.Equal(t, "[::1]:6000", remoteAddr("::1", 6000))
}

func TestRemoteDefaultsFollowEnvironment(t *testing.T) {
	t.Setenv("JASS_HOST", "jass.example")
	t.Setenv("JASS_PORT", "6000")
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	spec, err := parsePlayerSpec("r", engine.Player3, cfg)
	require.NoError(t, err)
	assert.Equal(t, "jass.example", spec.host)
	assert.Equal(t, "jass.example:6000", remoteAddr(spec.host, cfg.Port))
	assert.Equal(t, cfg.Addr(), remoteAddr(spec.host, cfg.Port))
}

func TestBuildPlayersDialsConfiguredPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		if c, err := ln.Accept(); err == nil {
			accepted <- c
		}
	}()
	port := ln.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cfg := &config.Config{Host: "127.0.0.1", Port: port}
	specs := [engine.PlayerCount]playerSpec{
		{kind: kindSimulated, name: "A", iterations: 50},
		{kind: kindSimulated, name: "B", iterations: 50},
		{kind: kindSimulated, name: "C", iterations: 50},
		{kind: kindRemote, name: "D", host: cfg.Host},
	}
	s, err := buildPlayers(ctx, specs, cfg, func() uint64 { return 1 }, &bytes.Buffer{})
	require.NoError(t, err)
	defer s.close()
	assert.Len(t, s.remotes, 1)
	select {
	case c := <-accepted:
		c.Close()
	case <-ctx.Done():
		t.Fatal("remote player was not dialled on the configured port")
	}
}

func TestGameSeed(t *testing.T) {
	cfg := &config.Config{Seed: 77}
	seed, err := gameSeed(cfg, []string{"-3"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<64-3), seed)

	seed, err = gameSeed(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), seed)

	_, err = gameSeed(cfg, []string{"abc"})
	assert.Error(t, err)
}

func TestBuildPlayers(t *testing.T) {
	cfg := &config.Config{Pace: 0, Iterations: config.MinIterations}
	specs := [engine.PlayerCount]playerSpec{
		{kind: kindHuman, name: "Aline"},
		{kind: kindSimulated, name: "Bastien", iterations: 50},
		{kind: kindHuman, name: "Colette"},
		{kind: kindSimulated, name: "David", iterations: 50},
	}
	n := uint64(0)
	s, err := buildPlayers(context.Background(), specs, cfg, func() uint64 { n++; return n }, &bytes.Buffer{})
	require.NoError(t, err)
	defer s.close()
	assert.Len(t, s.players, engine.PlayerCount)
	assert.Len(t, s.humans, 2)
	assert.Equal(t, uint64(2), n, "one seed per simulated player")
	assert.Equal(t, "Colette", s.names[engine.Player3])
}

func TestBuildPlayersUnreachableRemote(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	specs := [engine.PlayerCount]playerSpec{
		{kind: kindSimulated, name: "A", iterations: 50},
		{kind: kindSimulated, name: "B", iterations: 50},
		{kind: kindSimulated, name: "C", iterations: 50},
		{kind: kindRemote, name: "D", host: "127.0.0.1:1"},
	}
	_, err := buildPlayers(ctx, specs, &config.Config{}, func() uint64 { return 1 }, &bytes.Buffer{})
	assert.ErrorContains(t, err, "cannot reach remote player D")
}

func TestRunAllSimulated(t *testing.T) {
	t.Setenv("JASS_PACE", "0s")
	t.Setenv("JASS_MCTS_ITERATIONS", "9")
	t.Setenv("JASS_LOG_LEVEL", "error")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("JASS_SPECTATOR_ADDR", "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	var out bytes.Buffer
	err := run(ctx, []string{"-env", "testdata/none.env", "s", "s", "s", "s", "12"}, &bytes.Buffer{}, &out)
	require.NoError(t, err)
	assert.Empty(t, out.String(), "simulated players print nothing")
}

func TestRunRejectsArgumentCount(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"s", "s"}, &bytes.Buffer{}, &out)
	assert.Error(t, err)
}
