package mail

import "fmt"

// toEmails converts a single Email, a non-nil *Email or a slice of either
// (including []any) into a fresh slice. Any other value is rejected.
func toEmails(v any) ([]Email, error) {
	switch t := v.(type) {
	case Email:
		return []Email{t}, nil
	case *Email:
		if t == nil {
			return nil, invalidRecipient(v)
		}
		return []Email{*t}, nil
	case []Email:
		return append([]Email(nil), t...), nil
	case []*Email:
		out := make([]Email, 0, len(t))
		for _, e := range t {
			if e == nil {
				return nil, invalidRecipient(e)
			}
			out = append(out, *e)
		}
		return out, nil
	case []any:
		out := make([]Email, 0, len(t))
		for _, item := range t {
			switch e := item.(type) {
			case Email:
				out = append(out, e)
			case *Email:
				if e == nil {
					return nil, invalidRecipient(item)
				}
				out = append(out, *e)
			default:
				return nil, invalidRecipient(item)
			}
		}
		return out, nil
	default:
		return nil, invalidRecipient(v)
	}
}

func invalidRecipient(v any) error {
	return newError(CodeInvalidRecipientType, fmt.Sprintf("got %T", v), ErrInvalidRecipientType)
}

func copyEmails(list []Email) []Email {
	out := make([]Email, len(list))
	copy(out, list)
	return out
}

// SetTo replaces the To list. v is an Email, *Email, []Email, []*Email or
// []any holding those.
func (m *Message) SetTo(v any) error {
	list, err := toEmails(v)
	if err != nil {
		return err
	}
	m.to = list
	return nil
}

// AddTo appends a To recipient.
func (m *Message) AddTo(e Email) *Message {
	m.to = append(m.to, e)
	return m
}

// To returns a copy of the To list.
func (m *Message) To() []Email {
	return copyEmails(m.to)
}

// SetCc replaces the Cc list. See SetTo for accepted values.
func (m *Message) SetCc(v any) error {
	list, err := toEmails(v)
	if err != nil {
		return err
	}
	m.cc = list
	return nil
}

// AddCc appends a Cc recipient.
func (m *Message) AddCc(e Email) *Message {
	m.cc = append(m.cc, e)
	return m
}

// Cc returns a copy of the Cc list.
func (m *Message) Cc() []Email {
	return copyEmails(m.cc)
}

// SetBcc replaces the Bcc list. See SetTo for accepted values.
func (m *Message) SetBcc(v any) error {
	list, err := toEmails(v)
	if err != nil {
		return err
	}
	m.bcc = list
	return nil
}

// AddBcc appends a Bcc recipient.
func (m *Message) AddBcc(e Email) *Message {
	m.bcc = append(m.bcc, e)
	return m
}

// Bcc returns a copy of the Bcc list.
func (m *Message) Bcc() []Email {
	return copyEmails(m.bcc)
}

// SetFrom replaces the From list. The first entry is the primary author.
// See SetTo for accepted values.
func (m *Message) SetFrom(v any) error {
	list, err := toEmails(v)
	if err != nil {
		return err
	}
	m.from = list
	return nil
}

// AddFrom appends an author.
func (m *Message) AddFrom(e Email) *Message {
	m.from = append(m.from, e)
	return m
}

// From returns a copy of the From list.
func (m *Message) From() []Email {
	return copyEmails(m.from)
}

// SetSender sets the Sender, the mailbox responsible for submission when
// it differs from From.
func (m *Message) SetSender(e Email) *Message {
	m.sender = &e
	return m
}

// Sender returns the Sender and whether one was set.
func (m *Message) Sender() (Email, bool) {
	if m.sender == nil {
		return Email{}, false
	}
	return *m.sender, true
}

// SetReplyTo sets the Reply-To address.
func (m *Message) SetReplyTo(e Email) *Message {
	m.replyTo = &e
	return m
}

// ReplyTo returns the Reply-To address and whether one was set.
func (m *Message) ReplyTo() (Email, bool) {
	if m.replyTo == nil {
		return Email{}, false
	}
	return *m.replyTo, true
}
