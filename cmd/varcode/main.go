// Package main provides the varcode command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "varcode",
		Short:   "Predict the molecular consequences of genomic variants",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newAnnotateCmd())
	root.AddCommand(newConfigCmd())

	return root
}

func initConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil // no home dir, run with defaults
	}

	viper.SetConfigFile(filepath.Join(home, ".varcode.yaml"))
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("VARCODE")
	viper.AutomaticEnv()

	viper.SetDefault("assembly", "GRCh38")
	viper.SetDefault("splice.intronic_window", 2)
	viper.SetDefault("splice.exonic_window", 3)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return nil // config file is optional
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	return nil
}

// newLogger builds the CLI logger: human-readable, debug level when verbose.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
