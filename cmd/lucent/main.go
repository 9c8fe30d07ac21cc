// Command lucent runs the HTTP/1.1 origin server against a single YAML
// configuration file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lunarcoffee/lucent/internal/config"
	"github.com/lunarcoffee/lucent/internal/logging"
	"github.com/lunarcoffee/lucent/internal/server"
	"github.com/lunarcoffee/lucent/internal/wire"
)

func main() {
	os.Exit(run())
}

func run() int {
	logging.Setup(os.Getenv("LUCENT_ENV"), os.Getenv("LUCENT_LOG_LEVEL"))
	slog.Info("starting", "server", wire.ServerName)

	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <config.yaml>\n", os.Args[0])
		return 1
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "lucent: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	srv := server.New(cfg)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "lucent: %v\n", err)
		return 1
	}
	return 0
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, the
// graceful-shutdown trigger for the accept loop.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		cancel()
	}()
	return ctx, cancel
}
