package core

import "math"

// ValidateResolution reports whether a width×height texture may be imported.
//
// The area is computed in int32 arithmetic and a negative product rejects the
// image. An image wider or taller than maxResolution is rejected only when
// its area also exceeds maxResolution². When allowNonPowerOfTwo is false both
// dimensions must be powers of two.
func ValidateResolution(width, height int, allowNonPowerOfTwo bool, maxResolution int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width > math.MaxInt32 || height > math.MaxInt32 || int32(width)*int32(height) < 0 {
		return false
	}
	if IsOversized(width, height, maxResolution) {
		limit := int64(maxResolution) * int64(maxResolution)
		if int64(width)*int64(height) > limit {
			return false
		}
	}
	if !allowNonPowerOfTwo && !(isPowerOfTwo(width) && isPowerOfTwo(height)) {
		return false
	}
	return true
}

// IsOversized reports whether either axis exceeds maxResolution. Such an
// image may still pass ValidateResolution; callers that want a confirmation
// step ask it here.
func IsOversized(width, height, maxResolution int) bool {
	return width > maxResolution || height > maxResolution
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }
