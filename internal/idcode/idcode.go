// Package idcode formats sequential entity codes and provides a Redis-backed generator.
package idcode

import "fmt"

// Width is the zero padding of the numeric part; codes stay lexicographically ordered
// up to 99999 per type.
const Width = 5

func Format(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, Width, seq)
}
