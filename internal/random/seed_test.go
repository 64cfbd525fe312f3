package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithSeedIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := New(42), New(42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
}

func TestNewWithoutSeed(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, New(0))
	assert.NotPanics(t, func() { Seed() })
}
