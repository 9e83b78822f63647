// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the usecase-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the usecase-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "usecase-engine",
	Short: "Extract business use cases from legacy source listings",
	Long: `usecase-engine feeds legacy source listings (RPG, COBOL and similar
fixed-format programs) through a local language model and turns the replies
into reviewed use-case documents.

The analyze command runs the full pipeline for one listing or a configured
batch: window the source into overlapping chunks, prompt the model per chunk,
validate and score each reply, deduplicate near-identical results, and write
the run artifacts. The index command maintains an optional full-text index
over accepted documents from past runs.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./usecase-engine.yaml or ~/.config/usecase-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("usecase-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "usecase-engine"))
		}
	}

	viper.SetEnvPrefix("USECASE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
