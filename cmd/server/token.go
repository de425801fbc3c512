package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/table-reservation/internal/utils"
)

func newTokenCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Print a bearer token for the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadRuntime()
			if err != nil {
				return err
			}
			tok, err := utils.NewAccessToken(cfg.JWT.Secret, subject, utils.RoleAdmin, cfg.JWT.AccessTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", tok.Exp.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "operator identity stored in the token (e.g. ops@example.com)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
