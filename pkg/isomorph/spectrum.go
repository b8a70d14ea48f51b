package isomorph

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/sanonone/kektorgraph/pkg/graph"
)

// Spectrum returns the ascending eigenvalues of g's symmetric adjacency matrix,
// where entry (i,j) counts the edges joining i and j in either direction and
// the diagonal counts self-loops. ok is false if the decomposition failed.
func Spectrum(g *graph.Graph) (values []float64, ok bool) {
	n := g.NumNodes()
	if n == 0 {
		return nil, true
	}
	adj := mat.NewSymDense(n, nil)
	for _, e := range g.Edges() {
		i, j := e.Node1, e.Node2
		adj.SetSym(i, j, adj.At(i, j)+1)
	}
	var es mat.EigenSym
	if !es.Factorize(adj, false) {
		return nil, false
	}
	values = es.Values(nil)
	slices.Sort(values)
	return values, true
}

// sameSpectrum compares two sorted spectra after rounding to decimals places.
// Values within one unit of the last place are equal, so rounding noise at a
// half-way point does not split an isomorphic pair.
func sameSpectrum(a, b []float64, decimals int) bool {
	if len(a) != len(b) {
		return false
	}
	scale := math.Pow(10, float64(decimals))
	for i := range a {
		ra, rb := math.Round(a[i]*scale), math.Round(b[i]*scale)
		if math.Abs(ra-rb) > 1 {
			return false
		}
	}
	return true
}
