package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wagnerlima/memory-cloud/metadatastore/internal/graph"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/lineage"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdentity"
	"github.com/wagnerlima/memory-cloud/metadatastore/internal/mdtype"
	"github.com/wagnerlima/memory-cloud/metadatastore/store"
)

// newDemoCommand walks through the operations spec.md names end to end
// against a freshly initialized database: register a type triple, run a
// PutExecution that produces one artifact and joins one context, then read
// the lineage graph back out from the artifact it produced.
func newDemoCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-demo",
		Short: "Run a scripted PutExecution + lineage walk against the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := store.Create(ctx, opts.dbPath, opts.log, store.MigrationOptions{})
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			typeOpts := store.TypeWriteOptions{AllFieldsMatch: true, CanAddFields: true}
			datasetTypeID, err := s.PutArtifactType(ctx, mdtype.Type{
				Name:       "DataSet",
				Properties: map[string]mdtype.PropertyType{"split": mdtype.String},
			}, typeOpts)
			if err != nil {
				return fmt.Errorf("put artifact type: %w", err)
			}
			trainerTypeID, err := s.PutExecutionType(ctx, mdtype.Type{Name: "Trainer"}, typeOpts)
			if err != nil {
				return fmt.Errorf("put execution type: %w", err)
			}
			runTypeID, err := s.PutContextType(ctx, mdtype.Type{Name: "Run"}, typeOpts)
			if err != nil {
				return fmt.Errorf("put context type: %w", err)
			}

			result, err := s.PutExecution(ctx, graph.Request{
				Execution: mdentity.Execution{
					TypeID:  trainerTypeID,
					Name:    "train-run-1",
					HasName: true,
					State:   mdentity.ExecutionComplete,
				},
				HasExecution: true,
				ArtifactsAndEvents: []graph.ArtifactAndEvent{{
					Artifact: mdentity.Artifact{
						TypeID:  datasetTypeID,
						URI:     "/tmp/demo/dataset.csv",
						HasURI:  true,
						Name:    "training-data",
						HasName: true,
						State:   mdentity.ArtifactLive,
						Properties: map[string]mdtype.Value{
							"split": mdtype.StringValue("train"),
						},
					},
					Event: mdentity.Event{
						Type: mdentity.EventOutput,
					},
					HasEvent: true,
				}},
				Contexts: []mdentity.Context{{
					TypeID: runTypeID,
					Name:   "demo-run",
				}},
			})
			if err != nil {
				return fmt.Errorf("put execution: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "execution id=%d artifacts=%v contexts=%v\n",
				result.ExecutionID, result.ArtifactIDs, result.ContextIDs)

			subgraph, err := s.GetLineageGraph(ctx, lineage.Options{SeedArtifactIDs: result.ArtifactIDs})
			if err != nil {
				return fmt.Errorf("get lineage graph: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lineage: artifacts=%v executions=%v events=%d\n",
				subgraph.ArtifactIDs, subgraph.ExecutionIDs, len(subgraph.Events))
			return nil
		},
	}
}
