package service

import "errors"

var (
	// ErrMissingField is returned when an upload lacks a name, role or file.
	ErrMissingField = errors.New("please fill in all fields and upload a resume")
	// ErrUnknownRole is returned for roles outside the catalogue.
	ErrUnknownRole = errors.New("unknown role")
	// ErrResultsUnavailable is returned when results are requested before the interview is complete.
	ErrResultsUnavailable = errors.New("interview results are not available yet")
)
