package sigann_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/sigann"
	"github.com/hupe1980/sigann/model"
)

// Example_search builds an engine over five points and answers one query
// with every method.
func Example_search() {
	ctx := context.Background()

	db := model.NewDatabase(5, 2)
	for i, v := range [][]float32{{0, 0}, {1, 0}, {0, 1}, {5, 5}, {5, 6}} {
		copy(db.Records[i].Vector, v)
	}

	eng, err := sigann.New(ctx, db, sigann.WithK(2))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	q := &model.Query{Kind: model.KindNormal, Vector: []float32{0, 0}}
	for _, method := range []sigann.Method{sigann.MethodGraph, sigann.MethodTree, sigann.MethodExhaustive} {
		results, err := eng.Search(ctx, q, method)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(method, results)
	}
	// Output:
	// graph [Cand(0:0) Cand(1:1)]
	// tree [Cand(0:0) Cand(1:1)]
	// exhaustive [Cand(0:0) Cand(1:1)]
}

// Example_filtered restricts a query to one category.
func Example_filtered() {
	ctx := context.Background()

	db := model.NewDatabase(4, 1)
	for i := range db.Records {
		db.Records[i].Vector[0] = float32(i)
		db.Records[i].Category = uint32(i % 2)
	}

	eng, err := sigann.New(ctx, db, sigann.WithK(2))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	q := &model.Query{Kind: model.KindByCategory, Category: 1, Vector: []float32{0}}
	results, _ := eng.Search(ctx, q, sigann.MethodExhaustive)
	fmt.Println(results)
	// Output: [Cand(1:1) Cand(3:3)]
}
