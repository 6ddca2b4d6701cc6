package interview

import (
	"errors"
	"fmt"
)

// ErrValidation is the kind of every local answer validation failure.
var ErrValidation = errors.New("invalid answer")

// Sentinel kinds for interview errors.
var (
	ErrEmptyAnswer    = fmt.Errorf("%w: answer is empty", ErrValidation)
	ErrAnswerTooShort = fmt.Errorf("%w: answer is too short", ErrValidation)
	ErrNotAnswering   = errors.New("session is not accepting answers")
	ErrStaleResponse  = errors.New("response belongs to an abandoned session")
	ErrNoQuestions    = errors.New("no interview questions received")
	ErrNoProfile      = errors.New("no candidate profile")
)
