package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/cli"
	"github.com/Veraticus/spend-ledger/internal/config"
	"github.com/Veraticus/spend-ledger/internal/llm"
)

// createLLMClient builds the provider client from configuration.
func createLLMClient() (llm.Client, llm.Config, error) {
	cfg, err := config.LoadLLMConfig(viper.GetViper())
	if err != nil {
		return nil, cfg, err
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, cfg, nil
}

// createAdvisorySession builds a session for one compare run.
func createAdvisorySession() (*advisory.Session, error) {
	client, llmCfg, err := createLLMClient()
	if err != nil {
		return nil, err
	}

	advCfg, err := config.LoadAdvisoryConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	runner, err := advisory.NewRunner(client, advCfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create advisory runner: %w", err)
	}

	slog.Debug("Advisory enabled", "provider", llmCfg.Provider, "model", llmCfg.Model)
	return runner.NewSession(), nil
}

func llmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Inspect the advisory model connection",
	}

	cmd.AddCommand(llmTestCmd())

	return cmd
}

func llmTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a short prompt to verify the API key and endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			client, cfg, err := createLLMClient()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Testing %s (%s)...", cfg.Provider, cfg.Model)))

			reply, err := llm.Ping(cmd.Context(), client, llm.PingTimeout)
			if err != nil {
				fmt.Fprintln(out, cli.FormatError(llm.Explain(err)))
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess("Connection OK: "+strings.TrimSpace(reply)))
			return nil
		},
	}
}
