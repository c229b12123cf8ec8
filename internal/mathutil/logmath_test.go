package mathutil

import (
	"math"
	"testing"
)

func TestSafeLog(t *testing.T) {
	if got := SafeLog(math.E); math.Abs(got-1) > 1e-12 {
		t.Errorf("SafeLog(e) = %f, want 1", got)
	}
	if got := SafeLog(0); got != LogZero {
		t.Errorf("SafeLog(0) = %g, want LogZero", got)
	}
	if got := SafeLog(-1); got != LogZero {
		t.Errorf("SafeLog(-1) = %g, want LogZero", got)
	}
}
