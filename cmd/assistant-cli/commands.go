// cmd/assistant-cli/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"assistant-workers/internal/app"
	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/logger"
	"assistant-workers/pkg/registry"

	pui "assistant-workers/internal/workers/ai-conversation/parse-user-intent"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "assistant-cli",
		Short:         "Talk to the assistant pipeline from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a config.yaml (default: configs/config.yaml lookup)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	cmd.AddCommand(newAskCommand(opts))
	cmd.AddCommand(newIntentCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newWorkersCommand(opts))
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromFile(o.configPath)
	}
	return config.Load()
}

func (o *rootOptions) buildApp() (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	zapLog := logger.NewFromConfig(config.LoggingConfig{
		Level:  o.logLevel,
		Format: "console",
		Output: "stderr",
	})
	return app.New(cfg, logger.NewZapAdapter(zapLog), app.Options{}), nil
}

func newAskCommand(opts *rootOptions) *cobra.Command {
	var (
		model    string
		username string
		timeout  time.Duration
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer one message with the configured models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.buildApp()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out, err := a.Messages.HandleUserMessage(ctx, strings.Join(args, " "), username, model)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Response)
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to use: yandex (A) or giga (B); empty picks the first available")
	cmd.Flags().StringVarP(&username, "user", "u", "cli", "Username shown to the model")
	cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "Overall deadline for the answer")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}

func newIntentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "intent <message>",
		Short: "Show how a message is classified without calling any provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent := pui.Classify(strings.Join(args, " "))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(intent)
		},
	}
}

type statusPayload struct {
	Text string `json:"text"`
}

func newStatusCommand() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print usage statistics from a running worker-manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var payload statusPayload
			resp, err := resty.New().
				SetBaseURL(strings.TrimRight(server, "/")).
				SetTimeout(10 * time.Second).
				R().
				SetContext(cmd.Context()).
				SetResult(&payload).
				Get("/api/v1/status")
			if err != nil {
				return fmt.Errorf("query status: %w", err)
			}
			if resp.IsError() {
				return fmt.Errorf("query status: unexpected status %d", resp.StatusCode())
			}
			fmt.Fprint(cmd.OutOrStdout(), payload.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "worker-manager base URL")
	return cmd
}

func newWorkersCommand(opts *rootOptions) *cobra.Command {
	var registryPath string
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List the registered service tasks and whether they are enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			w := cmd.OutOrStdout()
			for _, taskType := range app.TaskTypes() {
				state := "enabled"
				if !config.IsWorkerEnabled(cfg, taskType) {
					state = "disabled"
				}
				name := taskType
				if a, ok := reg.Find(taskType); ok {
					name = a.DisplayName
				}
				fmt.Fprintf(w, "%-22s %-22s %s\n", taskType, name, state)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&registryPath, "registry", "configs/activity-registry.json", "Path to the activity registry")

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the activity registry against the task types this build serves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}
			if err := reg.Validate(app.TaskTypes()); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	})
	return cmd
}
