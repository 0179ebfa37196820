package entity

import "errors"

// ErrNotFound is returned by repositories when the record does not exist.
var ErrNotFound = errors.New("record not found")
