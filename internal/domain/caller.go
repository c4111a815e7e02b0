package domain

// Caller is the authenticated principal of a callable request, as proven by
// a verified token.
type Caller struct {
	UID    string
	Email  string
	Claims Claims
}
