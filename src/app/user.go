package app

// UserMetadata carries the free-form metadata attached to an identity at
// sign-up time.
type UserMetadata struct {
	// Username chosen at sign-up, used for display.
	Username string `json:"username,omitempty"`
}

// User is the identity provider's user record. The service never mutates it;
// GET /user-data returns it to the client as-is.
type User struct {
	// Opaque unique id issued by the provider.
	ID string `json:"id"`

	// User's email address.
	Email string `json:"email"`

	// Role assigned by the provider (e.g. "authenticated").
	Role string `json:"role,omitempty"`

	// Timestamps as reported by the provider, kept as strings since the
	// service only passes them through.
	CreatedAt      string `json:"created_at,omitempty"`
	LastSignInAt   string `json:"last_sign_in_at,omitempty"`
	EmailConfirmed string `json:"email_confirmed_at,omitempty"`

	UserMetadata UserMetadata `json:"user_metadata"`
}
