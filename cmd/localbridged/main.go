// Command localbridged runs the HL7 integration broker: serve starts every
// configured channel, validate dry-runs the config tree, stats prints the
// persisted counters.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/williamray70/localbridge/internal/engine"
	"github.com/williamray70/localbridge/internal/logx"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "localbridged",
		Short: "HL7 v2 integration broker",
	}

	rootCmd.PersistentFlags().String("conf-dir", "./conf", "Root directory holding channels/ and transformers/")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	_ = viper.BindPFlag("conf-dir", rootCmd.PersistentFlags().Lookup("conf-dir"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.SetEnvPrefix("LOCALBRIDGE")
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (string, zerolog.Logger) {
	confDir := viper.GetString("conf-dir")
	log := logx.New(viper.GetString("log-level"), viper.GetString("log-format"))
	return confDir, log
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load conf/ and run every enabled channel until terminated",
		RunE: func(cmd *cobra.Command, args []string) error {
			confDir, log := newLogger()
			confDir, err := filepath.Abs(confDir)
			if err != nil {
				return err
			}

			eng := engine.New(confDir, log)
			if err := eng.Start(); err != nil {
				return fmt.Errorf("starting channels: %w", err)
			}
			log.Info().Str("confDir", confDir).Msg("localbridged serving")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			go func() {
				if err := eng.WatchAndReload(ctx); err != nil {
					log.Warn().Err(err).Msg("config hot-reload watcher stopped")
				}
			}()

			<-ctx.Done()
			log.Info().Msg("shutting down")
			eng.StopAll()
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load conf/ and report configuration errors without starting any channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			confDir, log := newLogger()
			eng := engine.New(confDir, log)

			tErrs, iErrs, oErrs := eng.LoadConfigs()
			total := len(tErrs) + len(iErrs) + len(oErrs)
			for _, err := range tErrs {
				fmt.Printf("translate: %v\n", err)
			}
			for _, err := range iErrs {
				fmt.Printf("inbound: %v\n", err)
			}
			for _, err := range oErrs {
				fmt.Printf("outbound: %v\n", err)
			}
			if total == 0 {
				fmt.Println("conf/ is valid")
				return nil
			}
			return fmt.Errorf("%d configuration error(s)", total)
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the persisted per-channel processed/error counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			confDir, log := newLogger()
			eng := engine.New(confDir, log)

			snap := eng.Stats.Snapshot()
			names := make([]string, 0, len(snap))
			for name := range snap {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Printf("%-30s %10s %10s\n", "CHANNEL", "PROCESSED", "ERRORS")
			for _, name := range names {
				r := snap[name]
				fmt.Printf("%-30s %10d %10d\n", name, r.Processed, r.Errors)
			}
			return nil
		},
	}
}
