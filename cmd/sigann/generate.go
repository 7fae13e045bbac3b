package main

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/sigann/dataset"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		records    int
		queries    int
		dimension  int
		categories int
		seed       uint64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random record set and query workload",
		Long: `Generate writes a random record set and a query set crafted from it.

Query i copies the vector of record i and draws a random kind; its filters
always admit that record.

Examples:
  sigann generate --records 100000 --queries 1000
  sigann generate -c run.yaml --dimension 32`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dc := &a.cfg.Dataset
			if cmd.Flags().Changed("records") {
				dc.NumRecords = records
			}
			if cmd.Flags().Changed("queries") {
				dc.NumQueries = queries
			}
			if cmd.Flags().Changed("dimension") {
				dc.Dimension = dimension
			}
			if cmd.Flags().Changed("categories") {
				dc.Categories = categories
			}
			if cmd.Flags().Changed("seed") {
				dc.Seed = seed
			}

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			start := time.Now()
			g := dataset.NewGenerator(dc.Dimension, dc.Seed)
			if dc.Categories > 0 {
				g.Categories = dc.Categories
			}
			db := g.Database(dc.NumRecords)
			qs := g.Queries(db, dc.NumQueries)
			defer db.Release()
			defer qs.Release()

			opts := []dataset.FileOption{
				dataset.WithBatchSize(dc.BatchSize),
				dataset.WithResourceController(a.resources),
			}
			if err := dataset.SaveDatabase(ctx, store, dc.Records, db, opts...); err != nil {
				return err
			}
			if err := dataset.SaveQuerySet(ctx, store, dc.Queries, qs, opts...); err != nil {
				return err
			}

			codec := dataset.NewCodec(dc.Dimension)
			a.logger.WithDimension(dc.Dimension).InfoContext(ctx, "dataset generated",
				"records", db.Len(),
				"queries", qs.Len(),
				"records_file", dc.Records,
				"queries_file", dc.Queries,
				"raw_size", humanize.IBytes(uint64(4+db.Len()*codec.RecordSize()+4+qs.Len()*codec.QuerySize())),
				"elapsed", time.Since(start),
			)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&records, "records", 0, "number of records (default from config)")
	flags.IntVar(&queries, "queries", 0, "number of queries (default from config)")
	flags.IntVar(&dimension, "dimension", 0, "vector dimension (default from config)")
	flags.IntVar(&categories, "categories", 0, "number of record categories (default from config)")
	flags.Uint64Var(&seed, "seed", 0, "random seed (default from config)")
	return cmd
}
