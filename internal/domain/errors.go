package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrMissingCredential = errors.New("missing credential")
	ErrProviderCall      = errors.New("provider call failed")
	ErrSynthesis         = errors.New("synthesis failed")
	ErrNoFootageFound    = errors.New("no footage found")
	ErrProbe             = errors.New("probe failed")
	ErrComposition       = errors.New("composition failed")
	ErrConcatenation     = errors.New("concatenation failed")
	ErrBatchInProgress   = errors.New("batch already running for project")
	ErrInvalidContent    = errors.New("invalid ad content")
	ErrInvalidRequest    = errors.New("invalid request")
)
