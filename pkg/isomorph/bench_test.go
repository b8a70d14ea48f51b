package isomorph

import (
	"context"
	"fmt"
	"testing"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

func BenchmarkIsomorphic(b *testing.B) {
	for _, n := range []int{50, 200} {
		a, err := graph.Random("a", n, 3*n, 1, true)
		if err != nil {
			b.Fatal(err)
		}
		c := permuted(b, a, 2)
		b.Run(fmt.Sprintf("nodes=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Isomorphic(context.Background(), a, c); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSubgraphTriangles(b *testing.B) {
	target, err := graph.Random("target", 300, 1500, 3, true)
	if err != nil {
		b.Fatal(err)
	}
	tri := build(b, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := NewSubgraphMatcher(target, tri)
		if _, err := m.FindAll(context.Background(), 100); err != nil {
			b.Fatal(err)
		}
	}
}
