package models

import "github.com/google/uuid"

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// ensureID assigns a new identifier when id is empty. Used by BeforeCreate hooks.
func ensureID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}
