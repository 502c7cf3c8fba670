package movegraph_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/grapplegraph/pkg/catalog"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
)

func ExampleBuild() {
	c, err := catalog.Load("../catalog/testdata/fixture.gm")
	if err != nil {
		panic(err)
	}
	g, report, err := movegraph.Build(context.Background(), c, movegraph.BuildOptions{})
	if err != nil {
		panic(err)
	}
	for _, t := range report.Transitions {
		fmt.Printf("%s: %d -> %d\n", t.Description, t.From, t.To)
	}
	fmt.Println(g.NodeCount(), "nodes,", g.EdgeCount(), "edges")
	// Output:
	// to honey: 0 -> 2
	// top tries to free leg: 1 -> 3
	// 4 nodes, 3 edges
}
