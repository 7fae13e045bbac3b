package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hupe1980/sigann"
	"github.com/hupe1980/sigann/dataset"
	"github.com/spf13/cobra"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		k          int
		budget     int
		hops       int
		method     string
		filterMode string
		workers    int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Build the index and measure recall on a query set",
		Long: `Evaluate loads the configured record and query files, builds the
proximity graph and spatial trees, answers every query with the selected
method and with exhaustive search, and reports recall.

Examples:
  sigann evaluate
  sigann evaluate --method tree --budget 2000
  sigann evaluate --k 10 --hops 2 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ec := &a.cfg.Engine
			if cmd.Flags().Changed("k") {
				ec.K = k
			}
			if cmd.Flags().Changed("budget") {
				ec.Budget = budget
			}
			if cmd.Flags().Changed("hops") {
				ec.GraphHops = hops
			}
			if cmd.Flags().Changed("method") {
				ec.Method = method
			}
			if cmd.Flags().Changed("filter-mode") {
				ec.FilterMode = filterMode
			}
			if cmd.Flags().Changed("workers") {
				ec.Workers = workers
			}

			m, err := sigann.ParseMethod(ec.Method)
			if err != nil {
				return err
			}
			opts, err := a.cfg.EngineOptions()
			if err != nil {
				return err
			}

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			dc := a.cfg.Dataset
			fileOpts := []dataset.FileOption{
				dataset.WithBatchSize(dc.BatchSize),
				dataset.WithResourceController(a.resources),
			}
			codec := dataset.NewCodec(dc.Dimension)
			db, err := dataset.LoadDatabase(ctx, store, dc.Records, dc.Dimension, fileOpts...)
			if err != nil {
				return err
			}
			defer func() {
				a.resources.Free(codec.DatabaseBytes(db.Len()))
				db.Release()
			}()
			qs, err := dataset.LoadQuerySet(ctx, store, dc.Queries, dc.Dimension, fileOpts...)
			if err != nil {
				return err
			}
			defer func() {
				a.resources.Free(codec.QuerySetBytes(qs.Len()))
				qs.Release()
			}()

			metrics := &sigann.BasicMetricsCollector{}
			logger := a.logger.WithK(ec.K).WithDimension(dc.Dimension)
			opts = append(opts,
				sigann.WithLogger(logger),
				sigann.WithResourceController(a.resources),
				sigann.WithMetricsCollector(metrics),
			)

			engine, err := sigann.New(ctx, db, opts...)
			if err != nil {
				logger.ErrorContext(ctx, "build failed", "error", err)
				return err
			}
			defer engine.Close()

			report, err := engine.Evaluate(ctx, qs, m)
			if err != nil {
				return err
			}

			stats := metrics.GetStats()
			logger.DebugContext(ctx, "metrics",
				"build_stages", stats.BuildCount,
				"build_time", time.Duration(stats.BuildTotalNanos),
				"evaluated_queries", stats.EvaluatedQueries,
			)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, a.runID, report)
			}
			return writeTable(out, report)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&k, "k", 0, "neighbors per query (default from config)")
	flags.IntVar(&budget, "budget", 0, "tree backtracking budget (default from config)")
	flags.IntVar(&hops, "hops", 0, "graph expansion hops (default from config)")
	flags.StringVar(&method, "method", "", "search method: graph, tree or exhaustive")
	flags.StringVar(&filterMode, "filter-mode", "", "filter mode: uniform or ignore")
	flags.IntVar(&workers, "workers", 0, "parallel workers (default GOMAXPROCS)")
	flags.BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

type jsonReport struct {
	RunID        string             `json:"run_id"`
	Method       string             `json:"method"`
	K            int                `json:"k"`
	Queries      int                `json:"queries"`
	MeanRecall   float64            `json:"mean_recall"`
	StdDevRecall float64            `json:"stddev_recall"`
	KindRecall   map[string]float64 `json:"kind_recall"`
	Evaluated    int64              `json:"distance_evaluations"`
	QPS          float64            `json:"qps"`
	BuildSeconds map[string]float64 `json:"build_seconds"`
	Seconds      float64            `json:"seconds"`
}

func writeJSON(w io.Writer, runID string, r *sigann.Report) error {
	out := jsonReport{
		RunID:        runID,
		Method:       r.Method.String(),
		K:            r.K,
		Queries:      r.Queries,
		MeanRecall:   r.MeanRecall,
		StdDevRecall: r.StdDevRecall,
		KindRecall:   make(map[string]float64, len(r.Kinds)),
		Evaluated:    r.Evaluated,
		QPS:          r.QPS,
		BuildSeconds: make(map[string]float64, len(r.Build)),
		Seconds:      r.Elapsed.Seconds(),
	}
	for _, kr := range r.Kinds {
		out.KindRecall[kr.Kind.String()] = kr.MeanRecall
	}
	for _, st := range r.Build {
		out.BuildSeconds[st.Stage] = st.Elapsed.Seconds()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTable(w io.Writer, r *sigann.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "method\t%s\n", r.Method)
	fmt.Fprintf(tw, "k\t%d\n", r.K)
	fmt.Fprintf(tw, "queries\t%d\n", r.Queries)
	fmt.Fprintf(tw, "recall\t%.4f ± %.4f\n", r.MeanRecall, r.StdDevRecall)
	for _, kr := range r.Kinds {
		fmt.Fprintf(tw, "recall %s\t%.4f (%d queries)\n", kr.Kind, kr.MeanRecall, kr.Queries)
	}
	fmt.Fprintf(tw, "distance evaluations\t%d (baseline %d)\n", r.Evaluated, r.BaselineEvaluated)
	fmt.Fprintf(tw, "qps\t%.1f\n", r.QPS)
	for _, st := range r.Build {
		fmt.Fprintf(tw, "build %s\t%s\n", st.Stage, st.Elapsed)
	}
	fmt.Fprintf(tw, "elapsed\t%s\n", r.Elapsed)
	return tw.Flush()
}
