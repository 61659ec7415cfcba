package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint32Clamped(t *testing.T) {
	assert.Equal(t, uint32(5), IntToUint32Clamped(5, 1))
	assert.Equal(t, uint32(1), IntToUint32Clamped(0, 1))
	assert.Equal(t, uint32(1), IntToUint32Clamped(-3, 1))
	assert.Equal(t, uint32(0), IntToUint32Clamped(0, 0))
	assert.Equal(t, uint32(math.MaxUint32), IntToUint32Clamped(math.MaxInt64, 1))
}

func TestIntToInt32Clamped(t *testing.T) {
	assert.Equal(t, int32(42), IntToInt32Clamped(42))
	assert.Equal(t, int32(math.MaxInt32), IntToInt32Clamped(math.MaxInt64))
	assert.Equal(t, int32(math.MinInt32), IntToInt32Clamped(math.MinInt64))
}
