package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"ws-tools/internal/client"
	"ws-tools/internal/config"
	"ws-tools/internal/render"
	"ws-tools/internal/server"
	"ws-tools/internal/tools"
	"ws-tools/internal/workspace"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errToolFailed = errors.New("tool call failed")

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errToolFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ws-tools",
		Short:         "ws-tools - workspace-scoped search, read and write tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("workspace", config.DefaultWorkspace, "Workspace root directory")
	cmd.PersistentFlags().Bool("find-root", false, "Use the enclosing git repository as the workspace root")
	cmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output JSON only")
	cmd.PersistentFlags().String("timeout", config.DefaultTimeout.String(), "Timeout per command (e.g. 60s)")

	cmd.AddCommand(newCatalogCmd(), newRunCmd(), newServeCmd())
	return cmd
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List available tools and their input schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			catalog := tools.DefaultRegistry().Catalog()
			if cfg.Remote != "" {
				ctx, cancel := commandContext(cfg)
				defer cancel()
				catalog, err = client.New(cfg.Remote, cfg.Client.RetryMax).Catalog(ctx)
				if err != nil {
					return err
				}
			}

			switch strings.ToLower(format) {
			case "openai":
				payload, err := json.MarshalIndent(tools.OpenAIToolsFor(catalog), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			case "json":
				return render.NewStdoutRenderer(cmd.OutOrStdout(), true).Catalog(catalog)
			case "", "text":
				return render.NewStdoutRenderer(cmd.OutOrStdout(), cfg.JSON).Catalog(catalog)
			default:
				return fmt.Errorf("unknown format %q (want text, json or openai)", format)
			}
		},
	}
	cmd.Flags().String("format", "text", "Output format: text, json or openai")
	cmd.Flags().String("remote", "", "Fetch the catalog from a running ws-tools server")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Invoke a tool by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			rawInput, _ := cmd.Flags().GetString("input")
			pairs, _ := cmd.Flags().GetStringArray("arg")
			input, err := buildInput(rawInput, pairs)
			if err != nil {
				return err
			}

			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			ctx, cancel := commandContext(cfg)
			defer cancel()

			var env tools.Envelope
			if cfg.Remote != "" {
				env, err = client.New(cfg.Remote, cfg.Client.RetryMax).Invoke(ctx, name, input)
				if err != nil {
					return err
				}
			} else {
				dispatcher, err := newDispatcher(cfg, logger)
				if err != nil {
					return err
				}
				env = dispatcher.Dispatch(ctx, name, input)
			}

			if err := render.NewStdoutRenderer(cmd.OutOrStdout(), cfg.JSON).Envelope(name, env); err != nil {
				return err
			}
			if !env.OK {
				return errToolFailed
			}
			return nil
		},
	}
	cmd.Flags().String("input", "", "Tool input as a JSON object")
	cmd.Flags().StringArray("arg", nil, "Tool input field as key=value (repeatable)")
	cmd.Flags().String("remote", "", "Invoke the tool on a running ws-tools server")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool catalog and dispatcher over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			dispatcher, err := newDispatcher(cfg, logger)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return server.New(dispatcher, logger, cfg.Server.MaxBodyBytes).ListenAndServe(ctx, cfg.Listen)
		},
	}
	cmd.Flags().String("listen", config.DefaultListen, "Listen address")
	return cmd
}

func newDispatcher(cfg config.Config, logger *zap.Logger) (*tools.Dispatcher, error) {
	start := cfg.Workspace
	if cfg.FindRoot {
		found, err := workspace.FindRoot(start)
		if err != nil {
			logger.Warn("failed to find repo root", zap.Error(err))
		} else {
			start = found
		}
	}
	root, err := workspace.Resolve(start)
	if err != nil {
		return nil, err
	}
	logger.Debug("workspace resolved", zap.String("root", root))
	return tools.NewDispatcher(tools.DefaultRegistry(), tools.Meta{WorkspaceRoot: root}, logger), nil
}

// buildInput merges a JSON object with key=value pairs; pairs win.
func buildInput(rawJSON string, pairs []string) (map[string]any, error) {
	input := map[string]any{}
	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &input); err != nil {
			return nil, fmt.Errorf("invalid --input: %w", err)
		}
		if input == nil {
			input = map[string]any{}
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --arg %q: want key=value", pair)
		}
		key = strings.TrimSpace(key)
		input[key] = parseArgValue(key, value)
	}
	return input, nil
}

// parseArgValue keeps values as strings except for boolean flags, so
// create_dirs=false behaves like the JSON boolean.
func parseArgValue(key, value string) any {
	if key == "create_dirs" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}

func commandContext(cfg config.Config) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func buildLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
