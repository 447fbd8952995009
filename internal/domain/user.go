package domain

// SupabaseUser represents a user from Supabase Auth
type SupabaseUser struct {
	ID           string
	Email        string
	UserMetadata map[string]interface{}
	CreatedAt    string
	UpdatedAt    string
}

// GuestUserID identifies requests made without a bearer token.
const GuestUserID = "guest"

// IsGuest reports whether the user signed in as a guest.
func (u *SupabaseUser) IsGuest() bool {
	return u == nil || u.ID == GuestUserID
}
