// Package cmd implements the corememctl command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coremem/coremem/pkg/client"
	"github.com/coremem/coremem/pkg/version"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:           "corememctl",
	Short:         "CoreMem command-line client",
	Long:          "corememctl stores, searches and manages memories on a running CoreMem server.",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "http://127.0.0.1:8080", "CoreMem server URL")
}

func newClient() *client.Client {
	return client.New(serverURL)
}
