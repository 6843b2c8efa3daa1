package domain

import (
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned when the requested reference date has no
// row in the inventory snapshot table. The caller must pick a
// different reference date; there is no partial result.
var ErrNoSnapshot = errors.New("no inventory snapshot for reference date")

// MissingFileError reports an absent required input file. Only
// inventory_txn.csv is optional; every other input is fatal when
// missing.
type MissingFileError struct {
	Name string
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("required input file %s missing at %s: %v", e.Name, e.Path, e.Err)
}

func (e *MissingFileError) Unwrap() error {
	return e.Err
}
