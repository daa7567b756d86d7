package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schematiq/schematiq/internal/auth"
	"github.com/schematiq/schematiq/internal/plan"
	"github.com/schematiq/schematiq/internal/seed"
)

var (
	tokenUser string
	tokenTier string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed API token",
	Long: `Mint a bearer token for the HTTP API, signed with auth.secret.

The tier decides which plan modes the caller is entitled to request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mode, err := plan.ParseMode(tokenTier)
		if err != nil {
			return err
		}
		issuer, err := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TTL)
		if err != nil {
			return err
		}
		tok, err := issuer.Issue(auth.Claims{UserID: tokenUser, Tier: mode})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if isJSON() {
			return printJSON(out, map[string]string{"token": tok, "tier": string(mode)})
		}
		_, err = fmt.Fprintln(out, tok)
		return err
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", seed.DefaultOwner, "user id carried by the token")
	tokenCmd.Flags().StringVarP(&tokenTier, "tier", "t", string(plan.ModeStrategist), "tier: free or paid")
	rootCmd.AddCommand(tokenCmd)
}
