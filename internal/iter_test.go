package internal

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcat2(t *testing.T) {
	assert := assert.New(t)

	a := slices.All([]string{"x", "y"})
	b := slices.All([]string{"z"})

	var keys []int
	var values []string
	for k, v := range Concat2(a, b) {
		keys = append(keys, k)
		values = append(values, v)
	}

	assert.Equal([]int{0, 1, 0}, keys)
	assert.Equal([]string{"x", "y", "z"}, values)
}

func TestConcat2_Stop(t *testing.T) {
	assert := assert.New(t)

	seq := Concat2(maps.All(map[string]int{"a": 1}), maps.All(map[string]int{"b": 2}))

	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestConcat2_Empty(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, len(maps.Collect(Concat2[string, string]())))
}
