package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/gtasks-mcp/internal/google"
)

func newLoginCmd() *cobra.Command {
	var (
		account   string
		configDir string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize a Google account for Tasks access",
		Long: `Run the OAuth consent flow for a Google account and store the resulting
token in the config directory.

The flow opens a browser pointing at Google's consent page and captures
the authorization code on a local callback port. Use --account to
authorize multiple accounts side by side; tools select an account via
their 'account' parameter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := google.NewConfig(configDir)
			if err := cfg.EnsureDir(); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}

			auth := google.NewAuthenticator(cfg)
			auth.AllowConsent = true

			return google.Login(cmd.Context(), auth, account, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account label for the stored token")
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory for OAuth credentials and tokens (default: ~/.config/gtasks-mcp)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	var (
		account   string
		configDir string
	)

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := google.NewConfig(configDir)
			if !cfg.HasToken(account) {
				fmt.Fprintf(cmd.OutOrStdout(), "no token stored for account %q\n", account)
				return nil
			}
			if err := cfg.RemoveToken(account); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed token for account %q\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account label of the token to remove")
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory for OAuth credentials and tokens (default: ~/.config/gtasks-mcp)")

	return cmd
}
