// Package internal holds helpers shared between the LS-8 packages.
package internal

import (
	"iter"
)

// Concat2 chains pairwise iterators, yielding every pair of the first
// sequence, then the second, and so on.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
