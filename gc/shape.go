package gc

import (
	"fmt"
	"strconv"
)

// Shape says whether the addresses of a registry point at a single value or
// at a fixed-length array.
type Shape struct {
	array bool
	n     int
}

func Scalar() Shape { return Shape{} }

func Array(n int) Shape { return Shape{array: true, n: n} }

func (s Shape) IsArray() bool { return s.array }

// Len is the array length, or 0 for a scalar shape.
func (s Shape) Len() int { return s.n }

func (s Shape) validate() error {
	if s.array && s.n <= 0 {
		return fmt.Errorf("%w: got %d", ErrBadShape, s.n)
	}
	return nil
}

func (s Shape) String() string {
	if !s.array {
		return "scalar"
	}
	return "array[" + strconv.Itoa(s.n) + "]"
}
