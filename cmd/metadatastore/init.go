package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wagnerlima/memory-cloud/metadatastore/store"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database file and apply schema plus built-in types",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(opts.dbPath, opts.log)
			if err != nil {
				return err
			}
			if err := s.InitMetadataStoreIfNotExists(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized metadata store at %s\n", opts.dbPath)
			return nil
		},
	}
}
