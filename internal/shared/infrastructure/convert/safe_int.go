// Package convert provides safe integer conversions for configuration values.
package convert

import "math"

// IntToUint32Clamped converts v to uint32, clamping to [floor, MaxUint32].
func IntToUint32Clamped(v int, floor uint32) uint32 {
	if v < int(floor) {
		return floor
	}
	if uint64(v) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// IntToInt32Clamped converts v to int32, clamping to its bounds.
func IntToInt32Clamped(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
