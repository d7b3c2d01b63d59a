/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/config"
	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/logging"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	keyColor  = color.New(color.FgCyan)
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", global.ProgramName, global.Version)
		},
	}
}

func newCheckConfigCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Show the resolved configuration and any problems with it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := flags.newConfig()
			return checkConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

func checkConfig(out io.Writer, cfg *config.Config) error {
	values, validationErr := cfg.Inspect()
	if values == nil {
		return validationErr
	}

	_, _ = fmt.Fprintln(out, "Config search paths:")
	for _, p := range cfg.SearchPaths() {
		_, _ = fmt.Fprintf(out, "  %s\n", p)
	}
	_, _ = fmt.Fprintln(out)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = keyColor.Fprintf(out, "%-22s", k)
		_, _ = fmt.Fprintf(out, " %v\n", values[k])
	}
	_, _ = fmt.Fprintln(out)

	for _, w := range cfg.Warnings() {
		_, _ = warnColor.Fprintf(out, "warning: %s\n", w)
	}
	if validationErr != nil {
		_, _ = failColor.Fprintf(out, "invalid: %v\n", validationErr)
		return fmt.Errorf("configuration is invalid")
	}
	_, _ = okColor.Fprintln(out, "Configuration OK")
	return nil
}

func newTestConnectionCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Verify the API key against ClickUp and list accessible workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := flags.newConfig()
			if err := cfg.Load(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			client := clickup.New(cfg.APIKey(),
				clickup.WithTimeout(cfg.RequestTimeout()),
				clickup.WithLogger(logging.Discard()),
				clickup.WithUserAgent(global.ProgramName+"/"+global.Version),
			)
			return testConnection(cmd.Context(), cmd.OutOrStdout(), client)
		},
	}
}

func testConnection(ctx context.Context, out io.Writer, client *clickup.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	user, err := client.GetCurrentUser(ctx)
	if err != nil {
		_, _ = failColor.Fprintf(out, "Connection failed (%s): %v\n", clickup.KindOf(err), err)
		return fmt.Errorf("connection test failed")
	}
	_, _ = okColor.Fprintf(out, "Authenticated as %s (%d)\n", user.Username, user.ID)

	workspaces, err := client.ListWorkspaces(ctx)
	if err != nil {
		_, _ = warnColor.Fprintf(out, "Could not list workspaces: %v\n", err)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Workspaces (%d):\n", len(workspaces))
	for _, ws := range workspaces {
		_, _ = fmt.Fprintf(out, "  %s  %s\n", ws.ID, ws.Name)
	}
	return nil
}

func newSetAPIKeyCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set-api-key [key]",
		Short: "Store an API key in the config file (reads stdin when no key is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read API key: %w", err)
				}
				key = strings.TrimSpace(line)
			}

			var opts []config.Option
			if flags.configPath != "" {
				opts = append(opts, config.WithConfigPath(flags.configPath))
			}
			path, err := config.New(opts...).SetAPIKey(key)
			if err != nil {
				return err
			}
			_, _ = okColor.Fprintf(cmd.OutOrStdout(), "API key %s saved to %s\n", config.RedactKey(key), path)
			if os.Getenv(global.APIKeyEnvVar) != "" {
				_, _ = warnColor.Fprintf(cmd.OutOrStdout(), "note: %s is set and takes precedence over the file\n", global.APIKeyEnvVar)
			}
			return nil
		},
	}
}
