package mail

import (
	netmail "net/mail"
)

// Email is an immutable address and display name pair.
// Two Email values are equal iff both fields match exactly, so == works.
type Email struct {
	address string
	name    string
}

// NewEmail creates an Email. No syntax or DNS validation is performed;
// use ParseEmail when the input comes from users.
func NewEmail(address, name string) Email {
	return Email{address: address, name: name}
}

// ParseEmail parses a single RFC 5322 address such as
// "John Doe <john@example.com>" or "john@example.com".
func ParseEmail(s string) (Email, error) {
	addr, err := netmail.ParseAddress(s)
	if err != nil {
		return Email{}, newError(CodeInvalidAddress, s, err)
	}
	return Email{address: addr.Address, name: addr.Name}, nil
}

// Address returns the bare address, e.g. "john@example.com".
func (e Email) Address() string {
	return e.address
}

// Name returns the display name, possibly empty.
func (e Email) Name() string {
	return e.name
}

// IsZero reports whether e has neither address nor name.
func (e Email) IsZero() bool {
	return e.address == "" && e.name == ""
}

// String renders "name <address>", or the bare address when name is empty.
func (e Email) String() string {
	if e.name == "" {
		return e.address
	}
	return e.name + " <" + e.address + ">"
}
