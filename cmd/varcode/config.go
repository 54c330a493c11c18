package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys maps each recognized setting to its value parser. Settings not
// listed here are rejected rather than silently written to the config file.
var configKeys = map[string]func(string) (any, error){
	"assembly": parseAssembly,
	"annotation": func(v string) (any, error) {
		return v, nil
	},
	"splice.intronic_window": parseSpliceWindow,
	"splice.exonic_window":   parseSpliceWindow,
}

func parseAssembly(v string) (any, error) {
	switch v {
	case "GRCh37", "GRCh38":
		return v, nil
	}
	return nil, fmt.Errorf("unknown assembly %q (expected GRCh37 or GRCh38)", v)
}

func parseSpliceWindow(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("splice window must be a non-negative integer, got %q", v)
	}
	return n, nil
}

func knownConfigKeys() string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage varcode configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.varcode.yaml.",
		Example: `  varcode config                          # show all config
  varcode config set assembly GRCh37      # set default assembly
  varcode config set splice.intronic_window 8
  varcode config get splice.intronic_window`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("# No configuration set. Config file: ~/.varcode.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	parse, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key %q (known keys: %s)", key, knownConfigKeys())
	}
	parsed, err := parse(value)
	if err != nil {
		return err
	}
	viper.Set(key, parsed)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".varcode.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %v in %s\n", key, parsed, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	if _, ok := configKeys[key]; !ok {
		return fmt.Errorf("unknown configuration key %q (known keys: %s)", key, knownConfigKeys())
	}
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
