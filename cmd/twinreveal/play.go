package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/twin-reveal-service/internal/apiclient"
	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/game"
	"github.com/preston-bernstein/twin-reveal-service/internal/leaderboard"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

type playOptions struct {
	name       string
	twin1      string
	twin2      string
	optimistic bool
}

func newPlayCmd(cfg *Config) *cobra.Command {
	opts := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Submit a guess, watch the countdown and see the reveal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), cfg, opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.name, "name", "", "your name (prompted when omitted)")
	fs.StringVar(&opts.twin1, "twin1", "", "your guess for twin 1: boy or girl (prompted when omitted)")
	fs.StringVar(&opts.twin2, "twin2", "", "your guess for twin 2: boy or girl (prompted when omitted)")
	fs.BoolVar(&opts.optimistic, "optimistic", false, "start the countdown before the server confirms the guess")

	return cmd
}

func runPlay(ctx context.Context, cfg *Config, opts *playOptions, in io.Reader, out, errOut io.Writer) error {
	target, err := cfg.target()
	if err != nil {
		return err
	}
	con := newConsole(out)
	client := cfg.client()
	logger := cfg.logger(errOut)

	mode := game.ModeAwaited
	var board *leaderboard.Board
	if opts.optimistic {
		mode = game.ModeOptimistic
		board = leaderboard.NewBoard(func(g guesses.Guess) {
			con.printf("The guess from %s never reached the server.\n", g.Name)
		})
	}

	gw := cfg.gateway(client, logger)
	ctrl := game.NewController(gw, game.Options{
		Mode:     mode,
		Target:   target,
		Tick:     cfg.tick,
		Board:    board,
		Logger:   logger,
		OnChange: countdownPrinter(con),
		OnError: func(err error) {
			con.printf("Your guess could not be saved: %s\n", userMessage(client, err))
		},
	})

	reader := bufio.NewReader(in)
	preset := *opts
	for {
		if err := fillInput(ctrl, reader, con, preset); err != nil {
			return err
		}
		preset = playOptions{}

		if _, err := ctrl.Submit(ctx); err != nil {
			return fmt.Errorf("submit failed: %s", userMessage(client, err))
		}
		result, err := ctrl.Wait(ctx)
		if err != nil {
			return err
		}
		printResult(con, result)
		ctrl.Flush()
		if board != nil {
			showBoard(ctx, gw, board, target, con, client)
		}

		again, err := askYesNo(reader, con, "Play again? [y/N]: ")
		if err != nil || !again {
			return nil
		}
		if err := ctrl.PlayAgain(); err != nil {
			return err
		}
	}
}

// fillInput applies preset values and prompts for anything missing.
func fillInput(ctrl *game.Controller, r *bufio.Reader, con *console, preset playOptions) error {
	name := strings.TrimSpace(preset.name)
	for name == "" {
		line, err := prompt(r, con, "Your name: ")
		if err != nil {
			return errors.New("a name is required")
		}
		name = line
	}
	if err := ctrl.SetName(name); err != nil {
		return err
	}

	choices := []struct {
		label  string
		preset string
		choose func(guesses.Gender) error
	}{
		{label: "Twin 1", preset: preset.twin1, choose: ctrl.ChooseTwin1},
		{label: "Twin 2", preset: preset.twin2, choose: ctrl.ChooseTwin2},
	}
	for _, c := range choices {
		if c.preset != "" {
			g, ok := guesses.ParseGender(c.preset)
			if !ok {
				return fmt.Errorf("%s: %s", c.label, guesses.MessageInvalidGender)
			}
			if err := c.choose(g); err != nil {
				return err
			}
			continue
		}
		for {
			line, err := prompt(r, con, c.label+" (boy/girl): ")
			if err != nil {
				return fmt.Errorf("%s: a guess is required", c.label)
			}
			g, ok := guesses.ParseGender(line)
			if !ok {
				con.printf("Please answer boy or girl.\n")
				continue
			}
			if err := c.choose(g); err != nil {
				return err
			}
			break
		}
	}

	if !ctrl.CanSubmit() {
		return game.ErrCannotSubmit
	}
	return nil
}

func prompt(r *bufio.Reader, con *console, label string) (string, error) {
	con.printf("%s", label)
	line, err := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

func askYesNo(r *bufio.Reader, con *console, label string) (bool, error) {
	line, err := prompt(r, con, label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func countdownPrinter(con *console) func(game.Snapshot) {
	return func(s game.Snapshot) {
		if s.State == game.StateCountdown {
			con.printf("%d...\n", s.Remaining)
		}
	}
}

func printResult(con *console, r game.Result) {
	con.printf("\nThe twins are: %s\n", r.Actual.Label())
	con.printf("Your guess:    %s\n", pairLabel(r.Guess))
	con.printf("Twin 1 correct: %s\n", mark(r.Twin1Correct))
	con.printf("Twin 2 correct: %s\n", mark(r.Twin2Correct))
	con.printf("%s\n\n", r.Message)
}

// showBoard reconciles pending guesses with the server's list and prints the result.
func showBoard(ctx context.Context, gw store.Gateway, board *leaderboard.Board, target guesses.TargetPair, con *console, client *apiclient.Client) {
	list, err := gw.List(ctx)
	if err != nil {
		con.printf("Could not refresh the leaderboard: %s\n\n", userMessage(client, err))
		return
	}
	board.Reconcile(list)

	con.mu.Lock()
	defer con.mu.Unlock()
	renderSummary(con.out, board.Summary(target))
	_, _ = fmt.Fprintln(con.out)
}

// userMessage turns a gateway error into something to show a guest.
func userMessage(client *apiclient.Client, err error) string {
	var vErr *guesses.ValidationError
	switch {
	case errors.As(err, &vErr):
		return vErr.Message
	case apiclient.IsConnectivity(err):
		return "could not reach the game server at " + client.BaseURL()
	default:
		return err.Error()
	}
}
