package main

import (
	"errors"
	"fmt"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/frontdoor"
	"github.com/spf13/cobra"
)

func watchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <session-id>",
		Short: "Follow a session until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchSession(cmd, g, args[0])
		},
	}
}

// watchSession follows id and prints the result once it is available
func watchSession(cmd *cobra.Command, g *globals, id string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := g.logger()
	defer func() { _ = logger.Sync() }()

	transport := g.transport()
	watcher := frontdoor.NewWatcher(transport, frontdoor.Config{}, logger)
	watcher.OnEvent(func(event domain.ProgressEvent) {
		fmt.Fprintln(out, renderEvent(event))
	})
	watcher.OnMode(func(mode frontdoor.Mode, cause error) {
		if line := renderMode(mode, cause); line != "" {
			fmt.Fprintln(out, line)
		}
	})

	outcome, err := watcher.Watch(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("session %s not found", id)
		}
		return err
	}

	result := outcome.Result
	if result == nil {
		if result, err = transport.Result(ctx, id); err != nil {
			return fmt.Errorf("fetch result: %w", err)
		}
	}
	fmt.Fprint(out, renderResult(result))

	if outcome.Event.Failed() {
		return fmt.Errorf("session %s failed: %s", id, outcome.Event.ErrorMessage())
	}
	return nil
}
