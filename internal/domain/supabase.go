package domain

// SupabaseClient validates access tokens issued by Supabase Auth.
type SupabaseClient interface {
	Initialize() error
	ValidateToken(token string) (*SupabaseUser, error)
}
