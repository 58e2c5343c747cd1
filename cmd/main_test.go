package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/gaming-portal/config"
)

func TestRunReturnsErrorWhenDatabaseIsUnreachable(t *testing.T) {
	t.Parallel()

	// Reserve a port and release it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatalf("close listener: %v", err)
	}

	cfg := &config.Config{
		DatabaseURL:      "postgres://portal:portal@" + addr + "/portal?sslmode=disable",
		DBConnectTimeout: 2 * time.Second,
		JWTSecretKey:     "secret",
		ServerPort:       0,
		TokenTTL:         time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg, logger) }()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "connect to database") {
			t.Fatalf("run error = %v, want a database connection error", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return")
	}
}
