package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reposnap/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize reposnap configuration",
	Long:  "Create a default configuration file for reposnap",
	// An existing file may be invalid, which is a reason to re-initialize it
	PersistentPreRun: func(_ *cobra.Command, _ []string) {},
	RunE:             runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Fprintf(out, "⚠️  Configuration file already exists at: %s\n", path)
		fmt.Fprint(out, "Do you want to overwrite it? (y/N): ")
		var response string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &response) // Ignore error for user input
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Configuration initialization cancelled.")
			return nil
		}
	}

	if err := config.DefaultConfig().SaveConfigToPath(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(out, "✅ Configuration file created at: %s\n", path)
	fmt.Fprintln(out, "📝 Edit the file to change the API URL, timeouts, retries or cache settings.")

	return nil
}
