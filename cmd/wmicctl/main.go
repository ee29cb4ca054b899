package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/danmuck/wmicctl"
	"github.com/danmuck/wmicctl/internal/config"
	"github.com/danmuck/wmicctl/internal/observability"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	cfg        config.Config
	client     *wmicctl.Client
	out        io.Writer
}

func main() {
	if err := newRootCmd(&app{out: os.Stdout}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wmicctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "wmicctl",
		Short:         "Query and control host processes through wmic",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a TOML config file")

	root.AddCommand(
		newGetCmd(a),
		newListCmd(a),
		newCallCmd(a),
		newTerminateCmd(a),
		newExecCmd(a),
		newExplainCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads .env, the logger and the config, then builds the client
// unless one was provided.
func (a *app) setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	observability.InitLogger("wmicctl")

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.client != nil {
		return nil
	}

	spawner, err := config.Spawner(cfg)
	if err != nil {
		return err
	}
	a.client = wmicctl.New(wmicctl.WithBinary(cfg.Binary), wmicctl.WithSpawner(spawner))
	log.Debug().Str("binary", cfg.Binary).Bool("ssh", cfg.SSH.Enabled).Msg("client ready")
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (a *app) printText(s string) error {
	_, err := fmt.Fprintln(a.out, s)
	return err
}
