// Package main provides the CLI entrypoint for xfergen.
//
// xfergen is a serializer-synthesis tool that:
//   - Loads a declarative model of types, fields and relations
//   - Applies per-member directives (skip, rename, custom transforms)
//   - Walks the relation graph once per (source, destination, type) triple
//   - Emits formatted Go serializer routines
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xfergen",
		Short: "Serializer generator for modeled type graphs",
		Long: `xfergen turns a declarative type model into serializer routines that
convert values between representations. Directives adjust individual
members without touching the model itself.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(inspectCmd)

	cobra.OnInitialize(initConfig)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig wires the optional xfergen.yaml config file and the
// XFERGEN_* environment overrides into flag defaults.
func initConfig() {
	viper.SetConfigName("xfergen")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("xfergen")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Missing config file is fine; flags and env still apply.
	_ = viper.ReadInConfig()
}
