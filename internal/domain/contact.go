package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is an account-level contact record: members, alumni and guests alike.
type Contact struct {
	ID          uuid.UUID
	Email       string
	FirstName   string
	LastName    string
	Nickname    string
	PhoneNumber string

	Created time.Time
	Updated time.Time
}

// DisplayName prefers the nickname, mirroring how members are addressed within
// the association.
func (c *Contact) DisplayName() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func NewContact(email, firstName, lastName, nickname, phone string, now time.Time) (*Contact, error) {
	c := &Contact{
		ID:          uuid.New(),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		Nickname:    strings.TrimSpace(nickname),
		PhoneNumber: strings.TrimSpace(phone),
		Created:     now.UTC(),
		Updated:     now.UTC(),
	}
	if c.Email == "" || !strings.Contains(c.Email, "@") {
		return nil, ErrValidation("a valid email is required")
	}
	if c.FirstName == "" || c.LastName == "" {
		return nil, ErrValidation("first and last name are required")
	}
	return c, nil
}
