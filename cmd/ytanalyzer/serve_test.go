package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/nao1215/ytanalyzer/internal/config"
	"github.com/nao1215/ytanalyzer/internal/server"
)

func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	flag := cmd.Flags().Lookup("listen")
	if flag == nil {
		t.Fatal("expected listen flag")
	}
	if flag.DefValue != config.DefaultListen {
		t.Errorf("expected default %q, got %q", config.DefaultListen, flag.DefValue)
	}
	if cmd.Flags().Lookup("cache-max-age") == nil {
		t.Error("expected cache-max-age flag")
	}
}

func TestRunServeCmd(t *testing.T) {
	t.Parallel()

	t.Run("rejects an invalid listen address", func(t *testing.T) {
		t.Parallel()
		env := newCLIEnv(t)

		_, _, err := env.run(t, "serve", "--listen", "localhost")
		if !errors.Is(err, config.ErrInvalidListen) {
			t.Errorf("expected ErrInvalidListen, got %v", err)
		}
	})

	t.Run("rejects a negative cache age", func(t *testing.T) {
		t.Parallel()
		env := newCLIEnv(t)

		_, _, err := env.run(t, "serve", "--cache-max-age=-1s")
		if !errors.Is(err, config.ErrInvalidCacheMaxAge) {
			t.Errorf("expected ErrInvalidCacheMaxAge, got %v", err)
		}
	})
}

func TestServe(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		srv := server.NewServer(server.Config{Addr: "127.0.0.1:0", Logger: logger})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := serve(ctx, srv, logger); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("returns listener errors", func(t *testing.T) {
		t.Parallel()

		srv := server.NewServer(server.Config{Addr: "127.0.0.1:99999", Logger: logger})

		err := serve(context.Background(), srv, logger)
		if err == nil || !strings.Contains(err.Error(), "server error") {
			t.Errorf("expected server error, got %v", err)
		}
	})
}
