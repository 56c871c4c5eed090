package models

// AuthUser is the minimal identity snapshot cached at connect time.
// It is never authoritative; the gateway revalidates the token periodically.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
