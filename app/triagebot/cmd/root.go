package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mathlilypeng/github-app/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "triagebot",
	Short: "Turns externally computed patches into pull requests",
	Long: `Triagebot automates triage of repository issues. It consumes patch results
computed elsewhere and either commits the changes to a new branch and opens a
pull request, or posts a diagnostic comment on the originating issue.`,
	PersistentPreRunE: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(cmd *cobra.Command, _ []string) error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	loaded, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}
