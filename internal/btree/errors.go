package btree

import "errors"

// ErrDuplicateKey is returned by Insert when the key already exists.
var ErrDuplicateKey = errors.New("btree: duplicate key")

// ErrKeyNotFound is returned by Delete when the key does not exist.
var ErrKeyNotFound = errors.New("btree: key not found")
