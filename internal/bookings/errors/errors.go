package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrDuplicateID = errors.New("booking with this ID already exists")

	ErrCorruptRecord = errors.New("stored booking record is corrupt")
)
