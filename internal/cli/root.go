// Package cli implements the firefly command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "firefly",
	Short: "Thanacare Firefly session client",
	Long: `firefly signs in to the Firefly backend, keeps the session alive across
restarts when asked to remember it, and serves a role-guarded portal.

A session signed in without --remember lives only as long as the process
that created it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/firefly.yaml", "config file (missing file falls back to defaults)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env if present)")

	rootCmd.AddCommand(serveCmd, loginCmd, logoutCmd, statusCmd, historyCmd, versionCmd)
}

// openApp wires the session core for a one-shot command.
func openApp(cmd *cobra.Command) (*app, error) {
	return newApp(cmd.Context(), appOptions{configPath: configPath, envFile: envFile, quiet: true})
}
