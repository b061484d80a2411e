package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the inboxdigest application
var rootCmd = &cobra.Command{
	Use:   "inboxdigest",
	Short: "Summarizes recent emails and posts a digest to chat",
	Long: `inboxdigest reads the newest messages of one mailbox, summarizes them with a
text generation model and posts the resulting report to Discord or Signal.

It can run as:
  - A one-shot CLI command (default)
  - An AWS Lambda function triggered by a schedule or an API call`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "inboxdigest version %s\n" .Version}}`)

	// If no subcommand is provided, run the report command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "report")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newLambdaCmd())
	rootCmd.AddCommand(newCheckTokenCmd())
	rootCmd.AddCommand(newVersionCmd())
}
