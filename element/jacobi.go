package element

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// JacobiGQ computes the N+1 point Gauss quadrature for the Jacobi weight (1-x)^alpha (1+x)^beta on [-1,1].
// Points are the eigenvalues of the symmetric tridiagonal Jacobi matrix (Golub-Welsch), returned in
// ascending order.
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	var (
		fac        float64
		h1, d0, d1 []float64
		VVr        *mat.Dense
	)
	if N == 0 {
		X = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		W = []float64{2.}
		return
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: diag(-1/2*(alpha^2-beta^2)./(h1+2)./h1)
	d0 = make([]float64, N+1)
	fac = -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// 1st upper diagonal: 2./(h1+2).*sqrt(i.*(i+alpha+beta).*(i+alpha).*(i+beta)./(h1+1)./(h1+3))
	var ip1 float64
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}

	JJ := mat.NewSymDense(N+1, nil)
	for i := 0; i < N+1; i++ {
		JJ.SetSym(i, i, d0[i])
		if i < N {
			JJ.SetSym(i, i+1, d1[i])
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic(fmt.Errorf("eigenvalue decomposition failed for Jacobi matrix, N = %d", N))
	}
	X = eig.Values(nil)

	VVr = mat.NewDense(N+1, N+1, nil)
	eig.VectorsTo(VVr)
	W = make([]float64, N+1)
	g0 := gamma0(alpha, beta)
	for j := 0; j < N+1; j++ {
		v := VVr.At(0, j)
		W[j] = v * v * g0
	}
	if alpha == beta {
		symmetrize(X, W)
	}
	return
}

// JacobiGL computes the N+1 Gauss-Lobatto points: the zeros of (1-x^2) P'_N^{alpha,beta}(x)
func JacobiGL(alpha, beta float64, N int) (X []float64) {
	if N == 0 {
		return []float64{0.}
	}
	X = make([]float64, N+1)
	X[0], X[N] = -1, 1
	if N == 1 {
		return
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	copy(X[1:N], xint)
	if alpha == beta {
		symmetrize(X, nil)
	}
	return
}

// symmetrize removes the round-off asymmetry of a rule that is symmetric about zero, so that
// mirrored points are exact negatives of each other and the middle point is exactly zero.
func symmetrize(X, W []float64) {
	n := len(X)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		x := 0.5 * (X[j] - X[i])
		X[i], X[j] = -x, x
		if W != nil {
			w := 0.5 * (W[i] + W[j])
			W[i], W[j] = w, w
		}
	}
	if n%2 == 1 {
		X[n/2] = 0
	}
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}
