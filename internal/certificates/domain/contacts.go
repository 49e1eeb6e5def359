package domain

import "slices"

// Contact is one vault-wide certificate contact.
type Contact struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Contacts is the single contact list of a vault.
type Contacts struct {
	ID       string    `json:"id"`
	Contacts []Contact `json:"contacts"`
}

// Validate rejects empty lists and contacts without any field.
func (c *Contacts) Validate() error {
	if len(c.Contacts) == 0 {
		return ErrInvalidContacts
	}
	for _, contact := range c.Contacts {
		if contact == (Contact{}) {
			return ErrInvalidContacts
		}
	}
	return nil
}

// Equal reports whether both lists hold the same contacts in the same order.
func (c *Contacts) Equal(other []Contact) bool {
	return slices.Equal(c.Contacts, other)
}
