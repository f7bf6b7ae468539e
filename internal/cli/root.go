package cli

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "fitting-room",
	Short: "Virtual fitting room kiosk service",
	Long: `fitting-room runs the in-store virtual fitting room kiosk backend: shopper
sessions, outfit try-on with matching suggestions, cart and simulated checkout.

Configuration is read from an optional YAML file (--config) and FITTING_ROOM_*
environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
}

func newLogger() *log.Logger {
	return log.New(os.Stdout, "[fitting-room] ", log.LstdFlags|log.Lmicroseconds)
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		log.Printf("fitting-room: %v", err)
		return err
	}
	return nil
}
