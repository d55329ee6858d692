package models

// Actor is the user performing a mutation.
type Actor struct {
	ID    uint
	Admin bool
}
