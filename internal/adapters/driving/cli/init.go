package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/daviidwuu/invoiceAI/internal/adapters/driven/auth"
	"github.com/daviidwuu/invoiceAI/internal/adapters/driven/config/file"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare the config directory for first use",
	Long: `Creates the configuration directory, spool and data directories,
a known-entities template and a service account key template. Existing
files are left alone, so re-running is safe.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	settings := file.LoadSettings(configStore)
	if err := file.Scaffold(configStore, settings); err != nil {
		return err
	}

	if _, err := os.Stat(settings.CredentialsFile); os.IsNotExist(err) {
		if err := auth.WriteKeyTemplate(settings.CredentialsFile); err != nil {
			return err
		}
		cmd.Printf("Wrote service account key template to %s.\n", settings.CredentialsFile)
		cmd.Println("Replace it with a real key before syncing.")
	}

	cmd.Printf("Initialised %s.\n", file.ConfigDir())
	return nil
}
