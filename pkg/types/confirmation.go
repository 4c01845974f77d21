package types

// ConfirmationRequest represents a yes/no question asked before a destructive action
type ConfirmationRequest struct {
	// ID is a unique identifier for this confirmation within the operation
	ID string

	// Title is a brief, user-friendly title describing what needs confirmation
	Title string

	// Description provides detailed information about what will happen
	Description string

	// Items lists specific items that will be affected (paths, packages)
	Items []string

	// Default indicates the default response if user just presses enter
	// true = default to "yes", false = default to "no"
	Default bool
}

// Confirmer asks the user a single confirmation question. Implementations
// must return the request's Default for empty input and false for anything
// that is not an explicit yes.
type Confirmer interface {
	Confirm(req ConfirmationRequest) (bool, error)
}

// StaticConfirmer answers every request with the same value without asking.
type StaticConfirmer bool

// Confirm implements Confirmer
func (s StaticConfirmer) Confirm(ConfirmationRequest) (bool, error) {
	return bool(s), nil
}
