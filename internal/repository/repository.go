package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (memory, postgres) inside this directory.

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when an insert reuses an existing id.
	ErrDuplicateID = errors.New("duplicate record id")
)
