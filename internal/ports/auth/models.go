package auth

// Claims representa la información extraída del token.
// TenantID es la organización (refugio) sobre la que opera el usuario.
type Claims struct {
	UserID   string
	Email    string
	TenantID string
}
