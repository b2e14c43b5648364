package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mderr"
	"github.com/wagnerlima/memory-cloud/metadatastore/store"
)

// newDowngradeCommand drives Create's migration_options.downgrade_to_schema_version
// path (spec.md §4.5, concrete scenario 6): Create performs the downgrade
// and reports it via Cancelled rather than returning a usable store, so a
// Cancelled result here is success, not failure.
func newDowngradeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-downgrade <version>",
		Short: "Roll the recorded schema version back, for handoff to an older binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toVersion, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid target version %q: %w", args[0], err)
			}
			_, err = store.Create(cmd.Context(), opts.dbPath, opts.log, store.MigrationOptions{
				DowngradeToSchemaVersion:    toVersion,
				HasDowngradeToSchemaVersion: true,
			})
			if !mderr.Is(err, codes.Canceled) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), err)
			return nil
		},
	}
}
