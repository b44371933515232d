package main

import (
	"fmt"
	"lasertag/internal/server"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	server.Config
	verbose bool
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LASERTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "lasertag-server",
		Short:   "Development referee for the laser tag client.",
		Args:    cobra.ExactArgs(0),
		Version: server.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return server.Serve(cmd.Context(), &cfg.Config, newLogger(cfg.verbose))
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: LASERTAG_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 5000, "port to listen on (env: LASERTAG_PORT)")
	fs.StringVar(&cfg.PublicURL, "public-url", "", "websocket URL advertised by /join.png (env: LASERTAG_PUBLIC_URL)")
	fs.Float64Var(&cfg.HitChance, "hit-chance", 0, "probability in [0,1] that a shot hits a random opponent (env: LASERTAG_HIT_CHANCE)")
	fs.IntVar(&cfg.Rules.Magazine, "magazine", server.DefaultRules.Magazine, "rounds per magazine (env: LASERTAG_MAGAZINE)")
	fs.IntVar(&cfg.Rules.Health, "health", server.DefaultRules.Health, "starting health (env: LASERTAG_HEALTH)")
	fs.IntVar(&cfg.Rules.Damage, "damage", server.DefaultRules.Damage, "health lost per hit (env: LASERTAG_DAMAGE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log at debug level (env: LASERTAG_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("lasertag-server v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
