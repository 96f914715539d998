package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"inviteplanner/config"
)

var (
	cfg     *config.Config
	logger  *slog.Logger
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "inviteplanner",
	Short: "Event invitation backend",
	Long: `inviteplanner serves the invitation API: accounts in PostgreSQL,
invitations and payments in MongoDB.

Configuration is read from the environment (and .env outside production).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = config.NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "inviteplanner %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}

func Root() *cobra.Command {
	return rootCmd
}
