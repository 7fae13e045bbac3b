// Package sigann is an approximate nearest neighbor engine for vectors that
// carry a category and a timestamp, built for offline batch evaluation.
//
// An Engine is built once from an immutable Database. It owns three
// structures, all read-only after New returns:
//
//   - a Proximity Graph whose neighbor lists come from comparing records that
//     share a window of a per-dimension sorted ordering,
//   - a median-split tree that finds one seed record per query,
//   - a hyperplane tree answering top-K queries by branch-and-bound.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("data")
//	db, _ := dataset.LoadDatabase(ctx, store, "records.bin", 100)
//	eng, err := sigann.New(ctx, db, sigann.WithK(100))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	results, _ := eng.Search(ctx, &query, sigann.MethodGraph)
//	for _, c := range results {
//	    fmt.Println(c.ID, c.Score)
//	}
//
// # Search Methods
//
//   - MethodGraph: median tree seed, then one hop (or more, see WithGraphHops)
//     through the seed's neighbor list. Cheapest.
//   - MethodTree: hyperplane tree descent; WithBudget trades time for recall.
//   - MethodExhaustive: scores every eligible record. The recall baseline.
//
// # Filtering
//
// Queries of kind by-category, by-time or both restrict results to eligible
// records. With FilterUniform (default) every method admits only eligible
// records; FilterIgnore answers every query unfiltered.
//
// # Evaluation
//
// Evaluate runs a QuerySet through one method and the exhaustive baseline in
// parallel and reports mean recall overall and per query kind.
package sigann
