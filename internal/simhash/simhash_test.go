package simhash_test

import (
	"testing"

	"github.com/icscrawl/crawler/internal/simhash"
	"github.com/stretchr/testify/assert"
)

func identityHash(token string) uint64 {
	var h uint64
	for _, r := range token {
		h = h*131 + uint64(r)
	}
	return h
}

func TestHamming_ReflexiveForIdenticalFingerprints(t *testing.T) {
	counts := map[string]int{"alpha": 3, "beta": 1, "gamma": 5}
	fp := simhash.Compute(counts, identityHash)

	assert.Equal(t, 0, simhash.Hamming(fp, fp))
}

func TestHamming_Symmetric(t *testing.T) {
	a := simhash.Compute(map[string]int{"alpha": 3, "beta": 1}, identityHash)
	b := simhash.Compute(map[string]int{"gamma": 2, "delta": 4}, identityHash)

	assert.Equal(t, simhash.Hamming(a, b), simhash.Hamming(b, a))
}

func TestCompute_SimilarDocumentsHaveSmallDistance(t *testing.T) {
	a := simhash.Compute(map[string]int{"alpha": 10, "beta": 8, "gamma": 3}, identityHash)
	b := simhash.Compute(map[string]int{"alpha": 10, "beta": 8, "gamma": 3, "delta": 1}, identityHash)

	assert.LessOrEqual(t, simhash.Hamming(a, b), 4)
}

func TestCompute_DissimilarDocumentsHaveLargeDistance(t *testing.T) {
	a := simhash.Compute(map[string]int{"alpha": 50, "beta": 40}, identityHash)
	b := simhash.Compute(map[string]int{"zeta": 50, "omega": 40}, identityHash)

	assert.Greater(t, simhash.Hamming(a, b), 3)
}
