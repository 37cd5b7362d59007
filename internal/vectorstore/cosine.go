// Package vectorstore holds the shared similarity arithmetic for the vector
// index backends and the diversity selector.
package vectorstore

import "math"

// Cosine returns the cosine similarity of a and b, the normalized dot
// product in [-1, 1]. A zero-magnitude vector is a misconfigured embedding
// provider; it scores 0 rather than propagating a division fault. Vectors of
// unequal length are compared over the shorter prefix.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
