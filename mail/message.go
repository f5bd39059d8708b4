package mail

// Message is an outgoing email: envelope, content, headers and attachments.
//
// Setters that cannot fail return the Message for chaining. Setters that
// validate their input return an error and leave the Message untouched
// when they fail.
type Message struct {
	subject     string
	sender      *Email
	from        []Email
	to          []Email
	cc          []Email
	bcc         []Email
	replyTo     *Email
	body        string
	contentType string
	bodyCharset string
	returnPath  string

	transferEncoding TransferEncoding
	headers          headerList
	attachments      []Attachment

	// transport hints
	charset       string
	maxLineLength int
	priority      int
}

// NewMessage creates an empty Message. A nil opts uses DefaultOptions.
// Zero-valued fields in opts fall back to their defaults; Priority 0
// leaves the priority unset.
func NewMessage(opts *Options) *Message {
	o := DefaultOptions()
	if opts != nil {
		if opts.CharacterSet != "" {
			o.CharacterSet = opts.CharacterSet
		}
		if opts.MaxLineLength != 0 {
			o.MaxLineLength = opts.MaxLineLength
		}
		o.Priority = opts.Priority
	}

	return &Message{
		contentType:      DefaultContentType,
		bodyCharset:      o.CharacterSet,
		transferEncoding: DefaultTransferEncoding,
		charset:          o.CharacterSet,
		maxLineLength:    o.MaxLineLength,
		priority:         o.Priority,
	}
}

// SetSubject sets the message subject.
func (m *Message) SetSubject(subject string) *Message {
	m.subject = subject
	return m
}

// Subject returns the message subject.
func (m *Message) Subject() string {
	return m.subject
}

// SetBody sets the body together with its content type and charset.
// Empty contentType or charset fall back to "text/html" and "utf-8".
func (m *Message) SetBody(content, contentType, charset string) *Message {
	if contentType == "" {
		contentType = DefaultContentType
	}
	if charset == "" {
		charset = DefaultCharset
	}
	m.body = content
	m.contentType = contentType
	m.bodyCharset = charset
	return m
}

// Body returns the message body.
func (m *Message) Body() string {
	return m.body
}

// BodyCharset returns the charset of the body.
func (m *Message) BodyCharset() string {
	return m.bodyCharset
}

// SetContentType sets the body format, usually text/plain or text/html.
func (m *Message) SetContentType(contentType string) *Message {
	m.contentType = contentType
	return m
}

// ContentType returns the body format.
func (m *Message) ContentType() string {
	return m.contentType
}

// SetReturnPath sets the bounce address. Delivery engines usually
// default it to the sender when empty.
func (m *Message) SetReturnPath(returnPath string) *Message {
	m.returnPath = returnPath
	return m
}

// ReturnPath returns the bounce address, or "" when not set.
func (m *Message) ReturnPath() string {
	return m.returnPath
}

// Charset returns the message-level character set hint.
func (m *Message) Charset() string {
	return m.charset
}

// MaxLineLength returns the maximum line length hint.
func (m *Message) MaxLineLength() int {
	return m.maxLineLength
}

// Priority returns the priority hint (1 highest, 5 lowest) and whether one
// was set.
func (m *Message) Priority() (int, bool) {
	return m.priority, m.priority != 0
}
