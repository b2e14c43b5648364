package main

import (
	"github.com/spf13/cobra"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdlog"
)

// rootOptions carries flags every subcommand shares.
type rootOptions struct {
	dbPath  string
	verbose bool
	log     *mdlog.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "metadatastore",
		Short:         "Inspect and drive a metadata store from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode := "dev"
			if !opts.verbose {
				mode = "prod"
			}
			log, err := mdlog.New(mode)
			if err != nil {
				return err
			}
			opts.log = log
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "metadata.sqlite", "path to the SQLite metadata database")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newDemoCommand(opts))
	cmd.AddCommand(newDowngradeCommand(opts))

	return cmd
}
