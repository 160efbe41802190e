package errors

import "errors"

var (
	ErrNotFound = errors.New("transporter not found")

	ErrDuplicateID = errors.New("transporter ID already exists")
)
