package element

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/gopoisson/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJacobiGQ(t *testing.T) {
	tests := []struct {
		name string
		N    int
		x, w []float64
	}{
		{"N=0", 0, []float64{0}, []float64{2}},
		{"N=1", 1, []float64{-1 / math.Sqrt(3), 1 / math.Sqrt(3)}, []float64{1, 1}},
		{"N=2", 2, []float64{-math.Sqrt(0.6), 0, math.Sqrt(0.6)}, []float64{5. / 9, 8. / 9, 5. / 9}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, w := JacobiGQ(0, 0, tc.N)
			assert.InDeltaSlice(t, tc.x, x, 1e-14)
			assert.InDeltaSlice(t, tc.w, w, 1e-14)
		})
	}
	// symmetric rules are exactly symmetric
	x, w := JacobiGQ(0, 0, 6)
	for i := range x {
		assert.Equal(t, -x[i], x[len(x)-1-i])
		assert.Equal(t, w[i], w[len(w)-1-i])
	}
}

func TestJacobiGL(t *testing.T) {
	assert.Equal(t, []float64{-1, 1}, JacobiGL(0, 0, 1))
	assert.Equal(t, []float64{-1, 0, 1}, JacobiGL(0, 0, 2))
	assert.InDeltaSlice(t, []float64{-1, -0.4472135954999579, 0.4472135954999579, 1}, JacobiGL(0, 0, 3), 1e-14)
	assert.InDeltaSlice(t, []float64{-1, -0.6546536707079771, 0, 0.6546536707079771, 1}, JacobiGL(0, 0, 4), 1e-14)
}

func TestGaussRule(t *testing.T) {
	// an n point rule integrates x^k exactly for k <= 2n-1
	for n := 1; n <= 6; n++ {
		x, w := Gauss1D(n)
		for k := 0; k <= 2*n-1; k++ {
			var sum float64
			for i := range x {
				sum += w[i] * math.Pow(x[i], float64(k))
			}
			exact := 0.
			if k%2 == 0 {
				exact = 2. / float64(k+1)
			}
			assert.InDelta(t, exact, sum, 1e-13, "n=%d, k=%d", n, k)
		}
	}
	r := NewGaussRule(3, 2)
	assert.Equal(t, 8, r.Len())
	var vol float64
	for _, w := range r.Weights {
		vol += w
	}
	assert.InDelta(t, 8., vol, 1e-14)
	assert.Panics(t, func() { Gauss1D(0) })
}

func TestLagrange(t *testing.T) {
	_, err := NewLagrange(Quadrilateral, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidDegree))

	for _, fam := range []Family{Quadrilateral, Hexahedron} {
		for p := 1; p <= 3; p++ {
			le, err := NewLagrange(fam, p)
			require.NoError(t, err)
			expected := int(math.Pow(float64(p+1), float64(fam.Dim())))
			assert.Equal(t, expected, le.NumNodes)
			vals := make([]float64, le.NumNodes)
			grads := make([][3]float64, le.NumNodes)
			// Kronecker property at the support points
			for n := 0; n < le.NumNodes; n++ {
				assert.Equal(t, n, le.NodeIndex(le.NodeIJK(n)))
				le.Eval(le.RefNode(n), vals, nil)
				for m := range vals {
					if m == n {
						assert.Equal(t, 1., vals[m])
					} else {
						assert.Equal(t, 0., vals[m])
					}
				}
			}
			// partition of unity, gradients sum to zero
			le.Eval([3]float64{0.3, -0.7, 0.1}, vals, grads)
			var sum float64
			var gsum [3]float64
			for n := range vals {
				sum += vals[n]
				for d := 0; d < 3; d++ {
					gsum[d] += grads[n][d]
				}
			}
			assert.InDelta(t, 1., sum, 1e-13)
			assert.InDeltaSlice(t, []float64{0, 0, 0}, gsum[:], 1e-12)
			assert.Equal(t, int(math.Pow(float64(p+1), float64(fam.Dim()-1))), len(le.FaceNodes(3)))
		}
	}
	le1, _ := NewLagrange(Quadrilateral, 2)
	le2, _ := NewLagrange(Quadrilateral, 2)
	assert.Same(t, le1, le2)
}

func TestValues(t *testing.T) {
	le, err := NewLagrange(Quadrilateral, 2)
	require.NoError(t, err)
	v := NewValues(le, NewGaussRule(2, 3))
	// rectangle [0,2]x[0,4], corners lexicographic
	corners := [][3]float64{{0, 0}, {2, 0}, {0, 4}, {2, 4}}
	require.NoError(t, v.Reinit(corners))
	var area float64
	for q := range v.JxW {
		area += v.JxW[q]
	}
	assert.InDelta(t, 8., area, 1e-13)
	// grad of sum_n x_n phi_n is (1, 0) for any affine map
	for q := range v.JxW {
		var g [3]float64
		for n := 0; n < le.NumNodes; n++ {
			x := MapPoint(2, corners, le.RefNode(n))
			for d := 0; d < 2; d++ {
				g[d] += x[0] * v.Grad[q][n][d]
			}
		}
		assert.InDelta(t, 1., g[0], 1e-12)
		assert.InDelta(t, 0., g[1], 1e-12)
	}
	assert.Equal(t, [3]float64{1, 2, 0}, MapPoint(2, corners, [3]float64{0, 0, 0}))

	degenerate := [][3]float64{{0, 0}, {1, 0}, {0, 0}, {1, 0}}
	assert.Error(t, v.Reinit(degenerate))
}
