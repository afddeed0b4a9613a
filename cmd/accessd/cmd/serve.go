package cmd

import (
	"github.com/spf13/cobra"
	"github.com/stackmill/accessd/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the accessd API server",
	Long: `Start the API server, run database migrations, seed default roles,
and start the audit worker. Configuration is read from config.yaml and
ACCESSD_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.RunWithSignalHandling(server.Config{
			Port:    servePort,
			Version: Version,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
}
