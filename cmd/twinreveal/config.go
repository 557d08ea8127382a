package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/preston-bernstein/twin-reveal-service/internal/apiclient"
	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

const envPrefix = "TWINREVEAL"

// Config holds the flags shared by every subcommand.
type Config struct {
	apiURL       string
	configFile   string
	targetTwin1  string
	targetTwin2  string
	pollInterval time.Duration
	listAttempts int
	tick         time.Duration
	verbose      bool
}

func (c *Config) validate() error {
	if _, err := c.target(); err != nil {
		return err
	}
	if c.pollInterval <= 0 {
		return fmt.Errorf("invalid --poll-interval (must be positive): %s", c.pollInterval)
	}
	if c.listAttempts < 1 {
		return fmt.Errorf("invalid --list-attempts (must be at least 1): %d", c.listAttempts)
	}
	return nil
}

func (c *Config) target() (guesses.TargetPair, error) {
	t1, ok1 := guesses.ParseGender(c.targetTwin1)
	t2, ok2 := guesses.ParseGender(c.targetTwin2)
	if !ok1 || !ok2 {
		return guesses.TargetPair{}, fmt.Errorf("invalid target %q/%q (expected boy or girl)", c.targetTwin1, c.targetTwin2)
	}
	return guesses.TargetPair{Twin1: t1, Twin2: t2}, nil
}

func (c *Config) client() *apiclient.Client {
	return apiclient.NewClient(apiclient.Config{BaseURL: c.apiURL})
}

// gateway wraps client so leaderboard reads retry on connectivity failures when
// --list-attempts allows more than one try. Writes are never retried.
func (c *Config) gateway(client *apiclient.Client, logger *slog.Logger) *store.Retrying {
	return store.NewRetrying(client, logger, c.listAttempts, 0)
}

func (c *Config) logger(w io.Writer) *slog.Logger {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.Config{Level: level, Format: "text", Output: w, Service: "twinreveal", Version: releaseVersion})
}

func newRootCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "twinreveal",
		Short:         "Guess the twins' genders and follow the party leaderboard.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyViper(v, cmd, cfg.configFile); err != nil {
				return err
			}
			return cfg.validate()
		},
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.apiURL, "api-url", "http://localhost:3000", "base URL of the guess API (env: TWINREVEAL_API_URL)")
	fs.StringVar(&cfg.configFile, "config", "", "optional config file (yaml, json or toml)")
	fs.StringVar(&cfg.targetTwin1, "target-twin1", string(guesses.DefaultTarget.Twin1), "actual gender of twin 1 (env: TWINREVEAL_TARGET_TWIN1)")
	fs.StringVar(&cfg.targetTwin2, "target-twin2", string(guesses.DefaultTarget.Twin2), "actual gender of twin 2 (env: TWINREVEAL_TARGET_TWIN2)")
	fs.DurationVar(&cfg.pollInterval, "poll-interval", 5*time.Second, "leaderboard refresh interval when polling (env: TWINREVEAL_POLL_INTERVAL)")
	fs.IntVar(&cfg.listAttempts, "list-attempts", 1, "tries per leaderboard read before reporting a failure (env: TWINREVEAL_LIST_ATTEMPTS)")
	fs.DurationVar(&cfg.tick, "tick", time.Second, "countdown tick length")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log diagnostics to stderr (env: TWINREVEAL_VERBOSE)")
	_ = fs.MarkHidden("tick")

	cmd.AddCommand(newPlayCmd(cfg), newLeaderboardCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("twinreveal v{{.Version}}\n")

	return cmd
}

// applyViper fills every flag the user did not set from the config file or
// TWINREVEAL_* environment, in that order of precedence below the command line.
func applyViper(v *viper.Viper, cmd *cobra.Command, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var setErr error
	visit := func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			if err := f.Value.Set(fmt.Sprintf("%v", v.Get(f.Name))); err != nil && setErr == nil {
				setErr = fmt.Errorf("invalid value for %s: %w", f.Name, err)
			}
		}
	}
	cmd.Flags().VisitAll(visit)
	return setErr
}
