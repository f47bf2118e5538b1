package comparer

import (
	"time"

	"github.com/google/go-cmp/cmp"
)

// TimeWithinTolerance compara time.Time com folga (relógio do Postgres, arredondamento para microssegundos).
func TimeWithinTolerance(tolerance time.Duration) cmp.Option {
	return cmp.Comparer(func(x, y time.Time) bool {
		diff := x.Sub(y)
		if diff < 0 {
			diff = -diff
		}
		return diff <= tolerance
	})
}
