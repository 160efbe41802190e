package errors

import "errors"

var (
	ErrNotFound = errors.New("bid not found")

	ErrDuplicateID = errors.New("bid ID already exists")
)
