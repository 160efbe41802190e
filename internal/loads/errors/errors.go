package errors

import "errors"

var (
	ErrNotFound = errors.New("load not found")

	ErrDuplicateID = errors.New("load ID already exists")
)
