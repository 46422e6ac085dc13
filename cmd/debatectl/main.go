package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aescanero/debatehub/pkg/frontdoor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

// globals shared by every subcommand
type globals struct {
	server  string
	timeout time.Duration
	debug   bool
}

func (g *globals) transport() *frontdoor.HTTPTransport {
	return frontdoor.NewHTTPTransport(g.server, &http.Client{Timeout: g.timeout})
}

func (g *globals) logger() *zap.Logger {
	level := zapcore.WarnLevel
	if g.debug {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	g := &globals{}

	root := &cobra.Command{
		Use:           "debatectl",
		Short:         "Start and follow debatehub sessions",
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&g.server, "server", envOr("DEBATEHUB_SERVER", "http://localhost:8080"), "debatehub HTTP address")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 30*time.Second, "Timeout for single HTTP requests")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")

	root.AddCommand(startCmd(g))
	root.AddCommand(watchCmd(g))
	root.AddCommand(resultCmd(g))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorMsg("%v", err))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
