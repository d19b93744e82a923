package materials

import "errors"

var (
	ErrNotFound     = errors.New("materials: not found")
	ErrNameTaken    = errors.New("materials: name already taken")
	ErrInStock      = errors.New("materials: material still has stock")
	ErrInvalidInput = errors.New("materials: invalid input")
)
