package gc

import "errors"

var (
	ErrNotTracked      = errors.New("gc: address is not tracked")
	ErrForeignRegistry = errors.New("gc: pointer belongs to another registry")
	ErrReleased        = errors.New("gc: pointer already released")
	ErrBadShape        = errors.New("gc: array shape needs a positive length")
	ErrNilDeref        = errors.New("gc: dereference of empty pointer")
	ErrIterRange       = errors.New("gc: iterator out of range")
)
