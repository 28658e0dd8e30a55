package domain

import (
	"errors"
	"fmt"
)

// ErrYearNotFound is returned when the data host has no track file for a year.
var ErrYearNotFound = errors.New("year not found")

// StatusError is returned for any other non-success response from the data host.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}
