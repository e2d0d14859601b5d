package models

import "errors"

var (
	// ErrNotFound reports an absent group, asset or channel config.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a rename onto an existing group.
	ErrConflict = errors.New("conflict")
	// ErrValidation reports malformed input: image bytes, group names, template data.
	ErrValidation = errors.New("validation failed")
	// ErrTransientIO reports a filesystem, database or network hiccup.
	ErrTransientIO = errors.New("transient io failure")
)
