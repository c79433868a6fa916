package app

import "errors"

// User-facing failures keep the product's calm tone; handlers forward these
// messages verbatim.
var (
	// ErrEmailTaken names the one sign-up failure that gets a specific hint.
	ErrEmailTaken = errors.New("This email is already in use. Try signing in instead.")
	// ErrInvalidCredentials covers every sign-in failure; wrong email and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("That didn't work. Take a breath and try again.")

	ErrEmailRequired       = errors.New("email is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrAmountNotPositive   = errors.New("amount must be greater than zero")
	ErrNegativeBudget      = errors.New("budget cannot be negative")
	ErrUnknownMood         = errors.New("unknown mood")
	ErrNameRequired        = errors.New("name is required")
)
