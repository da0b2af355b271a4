package model

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDims is the width of the food name vector column.
const EmbeddingDims = 16

// NameEmbedding hashes the character bigrams of a normalized name into a
// fixed-width unit vector, so names sharing fragments sit close together.
func NameEmbedding(text string) pgvector.Vector {
	vec := make([]float32, EmbeddingDims)
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	for _, word := range strings.Fields(b.String()) {
		runes := []rune(" " + word + " ")
		for i := 0; i+1 < len(runes); i++ {
			h := fnv.New32a()
			h.Write([]byte(string(runes[i : i+2])))
			vec[h.Sum32()%EmbeddingDims]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm == 0 {
		// keep the column non-empty for names without letters or digits
		vec[0] = 1
		return pgvector.NewVector(vec)
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return pgvector.NewVector(vec)
}
