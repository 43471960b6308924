package commands

import (
	"github.com/spf13/cobra"
)

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	conf     string
	database string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "couchview",
		Short:         "Query CouchDB views and page through their results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.conf, "conf", "c", "", "config file path (default couchview.yaml in the standard locations)")
	rootCmd.PersistentFlags().StringVarP(&opts.database, "db", "d", "", "database name, overrides couchdb.database")

	rootCmd.AddCommand(
		newQueryCommand(opts),
		newAllDocsCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}
