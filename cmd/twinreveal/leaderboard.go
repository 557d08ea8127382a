package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/leaderboard"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
)

type leaderboardOptions struct {
	watch  bool
	source string
}

func newLeaderboardCmd(cfg *Config) *cobra.Command {
	opts := &leaderboardOptions{}
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show who guessed the twins correctly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.source != leaderboard.ModePoll && opts.source != leaderboard.ModeSubscribe {
				return fmt.Errorf("invalid --source %q (expected poll or subscribe)", opts.source)
			}
			return runLeaderboard(cmd.Context(), cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	fs := cmd.Flags()
	fs.BoolVarP(&opts.watch, "watch", "w", false, "keep the leaderboard open and refresh on every change")
	fs.StringVar(&opts.source, "source", leaderboard.ModeSubscribe, "how --watch receives updates: poll or subscribe")

	return cmd
}

func runLeaderboard(ctx context.Context, cfg *Config, opts *leaderboardOptions, out, errOut io.Writer) error {
	target, err := cfg.target()
	if err != nil {
		return err
	}
	client := cfg.client()
	logger := cfg.logger(errOut)
	gw := cfg.gateway(client, logger)

	if !opts.watch {
		list, err := gw.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %s", userMessage(client, err))
		}
		renderSummary(out, leaderboard.Summarize(list, target))
		return nil
	}

	con := newConsole(out)
	redraw := isTerminal(out)
	board := leaderboard.NewBoard(nil)
	src := leaderboard.SelectSource(opts.source, gw, cfg.pollInterval, logger, nil)
	logging.Debug(logger, "watching leaderboard", slog.String("mode", src.Mode()), slog.String("api_url", client.BaseURL()))

	err = leaderboard.RunWithFallback(ctx, src, gw, cfg.pollInterval, logger, nil, func(list []guesses.Guess) {
		board.Reconcile(list)
		con.mu.Lock()
		defer con.mu.Unlock()
		if redraw {
			_, _ = io.WriteString(con.out, clearScreen)
		}
		renderSummary(con.out, board.Summary(target))
		if !redraw {
			_, _ = fmt.Fprintln(con.out, "---")
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
