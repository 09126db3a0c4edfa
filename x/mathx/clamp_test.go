package mathx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, uint32(10), Clamp[uint32](1, 10, 100))
	assert.Equal(t, uint32(100), Clamp[uint32](1000, 10, 100))
	assert.Equal(t, 5, Clamp(5, 10, 0))
	assert.Equal(t, "b", Clamp("z", "a", "b"))
}

func TestBetween(t *testing.T) {
	assert.True(t, Between(31, 0, 31))
	assert.False(t, Between(32, 31, 0))
}
