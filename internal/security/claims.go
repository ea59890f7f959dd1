package security

import "time"

type TokenClaims struct {
	ContactID string
	Role      string // "member", "organizer" or "board"
	Exp       time.Time
	Issuer    string
	Subject   string
}
