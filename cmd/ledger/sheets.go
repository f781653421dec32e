package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spend-ledger/internal/cli"
	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/config"
	"github.com/Veraticus/spend-ledger/internal/sheets"
)

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets export setup",
	}

	cmd.AddCommand(sheetsAuthCmd())

	return cmd
}

func sheetsAuthCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets access with OAuth2",
		Long: `Run the browser OAuth2 flow and store the refresh token in sheets.token_file.

Requires sheets.client_id and sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID
and GOOGLE_SHEETS_CLIENT_SECRET).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return err
			}
			if cfg.ClientID == "" || cfg.ClientSecret == "" {
				return fmt.Errorf("%w: sheets.client_id and sheets.client_secret are required", common.ErrMissingConfig)
			}

			tokenFile := cfg.TokenFile
			if tokenFile == "" {
				tokenFile = config.ExpandPath(sheets.DefaultTokenFile)
			}

			if _, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), sheets.OAuth2Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				TokenFile:    tokenFile,
				CallbackAddr: addr,
			}); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authorized. Token saved to "+tokenFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "callback-addr", sheets.DefaultCallbackAddr, "address for the OAuth2 callback server")

	return cmd
}
