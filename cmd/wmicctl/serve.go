package main

import (
	"strings"

	"github.com/danmuck/wmicctl/internal/config"
	"github.com/danmuck/wmicctl/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the process operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Server
			if strings.TrimSpace(addr) != "" {
				cfg.Addr = addr
			}
			srv := server.Appear(cfg, a.client)
			log.Info().Str("binary", a.cfg.Binary).Bool("ssh", a.cfg.SSH.Enabled).Msg("serving process api")
			return srv.Serve()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the TOML config file",
	}

	var output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config template",
		Args:  cobra.NoArgs,
		// The template must be writable before any config exists.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(output, force); err != nil {
				return err
			}
			return a.printText("wrote " + output)
		},
	}
	initCmd.Flags().StringVar(&output, "output", "wmicctl.toml", "output path")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the --config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printJSON(a.cfg)
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
