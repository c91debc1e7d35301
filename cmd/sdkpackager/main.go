// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/builds"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/catalog"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/deploy"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/download"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/install"
	"github.com/isomorphic-tools/sdkpackager/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCmd assembles the command tree around v.
func newRootCmd(v *viper.Viper) *cobra.Command {
	var configFile string
	rootCmd := &cobra.Command{
		Use:   "sdkpackager [subcommand]",
		Short: "Download vendor SDK builds and publish them as Maven artifacts",
		// Silence errors because we will print the error ourselves in main.
		SilenceErrors: true,
		// Don't show usage for every error.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ReadFile(v, configFile); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			level, _ := log.ParseLevel(cfg.LogLevel)
			log.SetLevel(level)
			cmd.SetContext(config.NewContext(cmd.Context(), cfg))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/"+config.FileName+")")
	config.SetDefaults(v)
	if err := config.BindFlags(v, rootCmd.PersistentFlags()); err != nil {
		log.Fatal(err)
	}
	rootCmd.AddCommand(download.Command())
	rootCmd.AddCommand(install.Command())
	rootCmd.AddCommand(deploy.Command())
	rootCmd.AddCommand(builds.Command())
	rootCmd.AddCommand(catalog.Command())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
