package domain

import "errors"

var (
	ErrNotFound     = errors.New("project not found")
	ErrNameRequired = errors.New("project name is required")
	ErrNoIDs        = errors.New("no project ids given")
	ErrInvalidDate  = errors.New("invalid date")
)
