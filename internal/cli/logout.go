package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the stored token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.manager.Session()
		a.manager.Logout(cmd.Context())
		if s.Authenticated && s.User != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s\n", s.User.Email)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
		return nil
	},
}
