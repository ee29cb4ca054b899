package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danmuck/wmicctl"
	"github.com/danmuck/wmicctl/internal/clause"
	"github.com/spf13/cobra"
)

// parseWhereFlag decodes the JSON object form of a filter. A blank flag
// yields nil.
func parseWhereFlag(raw string) (*wmicctl.Where, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var w wmicctl.Where
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("--where: %w", err)
	}
	return &w, nil
}

func splitFields(raw string) []string {
	if raw == "" {
		return nil
	}
	fields := strings.Split(raw, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func newGetCmd(a *app) *cobra.Command {
	var whereRaw, fieldsRaw string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch fields of matching processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			where, err := parseWhereFlag(whereRaw)
			if err != nil {
				return err
			}
			set, err := a.client.Get(cmd.Context(), wmicctl.GetOptions{Where: where, Get: splitFields(fieldsRaw)})
			if err != nil {
				return err
			}
			return a.printJSON(set)
		},
	}
	cmd.Flags().StringVar(&whereRaw, "where", "", `filter as JSON, e.g. {"Name":"notepad.exe"}`)
	cmd.Flags().StringVar(&fieldsRaw, "fields", "", "comma separated field list")
	_ = cmd.MarkFlagRequired("fields")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var whereRaw string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List matching processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			where, err := parseWhereFlag(whereRaw)
			if err != nil {
				return err
			}
			set, err := a.client.List(cmd.Context(), where)
			if err != nil {
				return err
			}
			return a.printJSON(set)
		},
	}
	cmd.Flags().StringVar(&whereRaw, "where", "", "filter as JSON")
	return cmd
}

func newCallCmd(a *app) *cobra.Command {
	var whereRaw, method string
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Invoke a method on matching processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			where, err := parseWhereFlag(whereRaw)
			if err != nil {
				return err
			}
			out, err := a.client.Call(cmd.Context(), wmicctl.CallOptions{Where: where, Call: method})
			if err != nil {
				return err
			}
			return a.printText(out)
		},
	}
	cmd.Flags().StringVar(&whereRaw, "where", "", "filter as JSON")
	cmd.Flags().StringVar(&method, "method", "", "method name and arguments, e.g. getowner")
	return cmd
}

func newTerminateCmd(a *app) *cobra.Command {
	var whereRaw string
	cmd := &cobra.Command{
		Use:   "terminate",
		Short: "Terminate matching processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			where, err := parseWhereFlag(whereRaw)
			if err != nil {
				return err
			}
			out, err := a.client.Terminate(cmd.Context(), where)
			if err != nil {
				return err
			}
			return a.printText(out)
		},
	}
	cmd.Flags().StringVar(&whereRaw, "where", "", "filter as JSON")
	return cmd
}

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec COMMAND...",
		Short: "Run raw command text through wmic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.client.Execute(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.printText(out)
		},
	}
}

func newExplainCmd(a *app) *cobra.Command {
	var whereRaw string
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the where clause a filter builds, without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			where, err := parseWhereFlag(whereRaw)
			if err != nil {
				return err
			}
			text, err := clause.BuildWhere(where, false)
			if err != nil {
				return err
			}
			parsed, err := clause.ParseWhere(text)
			if err != nil {
				return err
			}
			return a.printJSON(struct {
				Clause string         `json:"clause"`
				Parsed *wmicctl.Where `json:"parsed"`
			}{text, parsed})
		},
	}
	cmd.Flags().StringVar(&whereRaw, "where", "", "filter as JSON")
	return cmd
}
