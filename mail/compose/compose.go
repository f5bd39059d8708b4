// Package compose renders a mail.Message into an RFC 5322 message with
// MIME body parts. It reads the message only through its getters.
package compose

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	netmail "net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/pure-golang/mailer/mail"
)

const (
	maxBase64LineLength = 76
	// RFC 5322 section 2.1.1, without the trailing CRLF.
	maxLineOctets = 998
)

var priorityLabels = map[int]string{
	1: "1 (Highest)",
	2: "2 (High)",
	3: "3 (Normal)",
	4: "4 (Low)",
	5: "5 (Lowest)",
}

// ownedHeaders describe the MIME structure and are always written by Build.
// Custom headers with these names are dropped.
var ownedHeaders = map[string]bool{
	"Mime-Version":              true,
	"Content-Type":              true,
	"Content-Transfer-Encoding": true,
}

// Options tune rendering. The zero value is ready to use.
type Options struct {
	// Now returns the Date header time. Defaults to time.Now.
	Now func() time.Time
	// MessageIDDomain is the right-hand side of generated Message-IDs.
	// Defaults to the domain of the primary From address.
	MessageIDDomain string
}

// Envelope returns the SMTP reverse-path and the forward-paths of msg:
// Return-Path, else Sender, else the primary From; then To, Cc and Bcc.
func Envelope(msg *mail.Message) (string, []string, error) {
	from := msg.ReturnPath()
	if from == "" {
		if sender, ok := msg.Sender(); ok {
			from = sender.Address()
		}
	}
	if from == "" {
		if list := msg.From(); len(list) > 0 {
			from = list[0].Address()
		}
	}
	if from == "" {
		return "", nil, errors.New("no from address specified")
	}
	if hasLineBreak(from) {
		return "", nil, errors.Errorf("invalid from address %q", from)
	}

	var rcpt []string
	for _, list := range [][]mail.Email{msg.To(), msg.Cc(), msg.Bcc()} {
		for _, e := range list {
			if hasLineBreak(e.Address()) {
				return "", nil, errors.Errorf("invalid recipient address %q", e.Address())
			}
			rcpt = append(rcpt, e.Address())
		}
	}
	if len(rcpt) == 0 {
		return "", nil, errors.New("no recipients specified")
	}

	return from, rcpt, nil
}

// Build renders msg. Bcc recipients are never written to the headers.
//
// A custom header replaces the generated header of the same name
// (compared case-insensitively), except MIME-Version, Content-Type and
// Content-Transfer-Encoding, which Build always owns. Header names must
// be RFC 5322 field names and no header value may contain CR or LF.
//
// Subject and body are transcoded from UTF-8 to the charsets they are
// labelled with; text that the charset cannot represent is an error.
//
// MaxLineLength only shortens base64 lines. Quoted-printable lines are
// wrapped at 76 characters by RFC 2045, and 7bit or 8bit bodies are
// sent as-is but rejected when a line exceeds 998 octets.
func Build(msg *mail.Message, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	custom := msg.Headers()
	overridden := make(map[string]bool, len(custom))
	for _, hdr := range custom {
		overridden[textproto.CanonicalMIMEHeaderKey(hdr.Name)] = true
	}

	subject, err := encodeText(msg.Charset(), msg.Subject())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode subject")
	}
	body, err := encodeText(msg.BodyCharset(), msg.Body())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode body")
	}

	var buf bytes.Buffer
	h := &headerWriter{w: &buf, charset: msg.Charset(), skip: overridden}

	if rp := msg.ReturnPath(); rp != "" {
		h.generated("Return-Path", "<"+rp+">")
	}
	h.generated("Message-ID", messageID(msg, opts.MessageIDDomain))
	h.generated("Date", now().Format(time.RFC1123Z))
	h.text("Subject", subject)
	h.addresses("From", msg.From())
	if sender, ok := msg.Sender(); ok {
		h.addresses("Sender", []mail.Email{sender})
	}
	if replyTo, ok := msg.ReplyTo(); ok {
		h.addresses("Reply-To", []mail.Email{replyTo})
	}
	h.addresses("To", msg.To())
	h.addresses("Cc", msg.Cc())
	h.field("MIME-Version", "1.0")
	if p, ok := msg.Priority(); ok {
		if label, known := priorityLabels[p]; known {
			h.generated("X-Priority", label)
		}
	}
	for _, hdr := range custom {
		if ownedHeaders[textproto.CanonicalMIMEHeaderKey(hdr.Name)] {
			continue
		}
		h.field(hdr.Name, hdr.FieldBody())
	}

	attachments := msg.Attachments()
	if len(attachments) == 0 {
		h.field("Content-Type", bodyContentType(msg))
		h.field("Content-Transfer-Encoding", msg.TransferEncoding().HeaderValue())
		if h.err != nil {
			return nil, h.err
		}
		buf.WriteString("\r\n")
		if err := writeEncoded(&buf, msg.TransferEncoding(), body, msg.MaxLineLength()); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	h.field("Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))
	if h.err != nil {
		return nil, h.err
	}
	buf.WriteString("\r\n")

	bodyHeader := make(textproto.MIMEHeader)
	bodyHeader.Set("Content-Type", bodyContentType(msg))
	bodyHeader.Set("Content-Transfer-Encoding", msg.TransferEncoding().HeaderValue())
	part, err := mw.CreatePart(bodyHeader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create body part")
	}
	if err := writeEncoded(part, msg.TransferEncoding(), body, msg.MaxLineLength()); err != nil {
		return nil, err
	}

	for _, a := range attachments {
		attHeader := make(textproto.MIMEHeader)
		attHeader.Set("Content-Type", a.MimeType)
		attHeader.Set("Content-Transfer-Encoding", "base64")
		disposition := "attachment"
		if a.FileName != "" {
			disposition = mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName})
		}
		attHeader.Set("Content-Disposition", disposition)

		if hasLineBreak(a.MimeType) {
			return nil, errors.Errorf("invalid mime type %q for attachment %q", a.MimeType, a.FileName)
		}
		part, err := mw.CreatePart(attHeader)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create attachment part %q", a.FileName)
		}
		if err := writeEncoded(part, mail.EncodingBase64, a.Content, maxBase64LineLength); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close multipart writer")
	}
	return buf.Bytes(), nil
}

func bodyContentType(msg *mail.Message) string {
	ct := msg.ContentType()
	if cs := msg.BodyCharset(); cs != "" {
		ct += "; charset=" + cs
	}
	return ct
}

func messageID(msg *mail.Message, domain string) string {
	if domain == "" {
		domain = "localhost"
		if list := msg.From(); len(list) > 0 {
			if i := strings.LastIndexByte(list[0].Address(), '@'); i >= 0 && i < len(list[0].Address())-1 {
				domain = list[0].Address()[i+1:]
			}
		}
	}
	return "<" + uuid.NewString() + "@" + domain + ">"
}

// encodeText converts UTF-8 text to charset. An unknown charset is only
// an error when the text is not plain ASCII.
func encodeText(charset, s string) ([]byte, error) {
	if isASCII(s) || charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		return []byte(s), nil
	}

	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().String(s)
	if err != nil {
		return nil, errors.Wrapf(err, "text cannot be represented in charset %q", charset)
	}
	return []byte(out), nil
}

// lookupCharset prefers the IANA registry, so iso-8859-1 stays Latin-1
// instead of the WHATWG windows-1252 alias.
func lookupCharset(charset string) (encoding.Encoding, error) {
	if enc, err := ianaindex.MIME.Encoding(charset); err == nil && enc != nil {
		return enc, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported charset %q", charset)
	}
	return enc, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// validFieldName reports whether name is an RFC 5322 field name:
// printable US-ASCII except colon.
func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 33 || c > 126 || c == ':' {
			return false
		}
	}
	return true
}

// writeEncoded writes body using enc. 7bit and 8bit content only gets
// its line endings normalised to CRLF.
func writeEncoded(w io.Writer, enc mail.TransferEncoding, body []byte, maxLineLength int) error {
	switch enc {
	case mail.EncodingBase64:
		lineLength := maxBase64LineLength
		if maxLineLength > 0 && maxLineLength < lineLength {
			lineLength = maxLineLength
		}
		lineLength -= lineLength % 4
		if lineLength == 0 {
			lineLength = 4
		}
		encoded := base64.StdEncoding.EncodeToString(body)
		for len(encoded) > 0 {
			n := min(lineLength, len(encoded))
			if _, err := io.WriteString(w, encoded[:n]+"\r\n"); err != nil {
				return errors.Wrap(err, "failed to write base64 body")
			}
			encoded = encoded[n:]
		}
		return nil
	case mail.EncodingQP:
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write(body); err != nil {
			return errors.Wrap(err, "failed to write quoted-printable body")
		}
		return errors.Wrap(qp.Close(), "failed to flush quoted-printable body")
	default:
		normalized := strings.ReplaceAll(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n", "\r\n")
		for i, line := range strings.Split(normalized, "\r\n") {
			if len(line) > maxLineOctets {
				return errors.Errorf("line %d is %d octets long, %s allows at most %d", i+1, len(line), enc, maxLineOctets)
			}
		}
		_, err := io.WriteString(w, normalized)
		return errors.Wrap(err, "failed to write body")
	}
}

// headerWriter writes header fields and keeps the first validation error.
type headerWriter struct {
	w       *bytes.Buffer
	charset string
	skip    map[string]bool
	err     error
}

func (h *headerWriter) field(name, value string) {
	if h.err != nil {
		return
	}
	if !validFieldName(name) {
		h.err = errors.Errorf("invalid header name %q", name)
		return
	}
	if hasLineBreak(value) {
		h.err = errors.Errorf("header %s: value must not contain CR or LF", name)
		return
	}
	fmt.Fprintf(h.w, "%s: %s\r\n", name, value)
}

// generated writes a header unless a custom header replaces it.
func (h *headerWriter) generated(name, value string) {
	if h.skip[textproto.CanonicalMIMEHeaderKey(name)] {
		return
	}
	h.field(name, value)
}

// text writes an unstructured header already encoded in h.charset,
// Q-encoding it when it is not plain ASCII.
func (h *headerWriter) text(name string, value []byte) {
	charset := h.charset
	if charset == "" {
		charset = mail.DefaultCharset
	}
	h.generated(name, mime.QEncoding.Encode(charset, string(value)))
}

func (h *headerWriter) addresses(name string, list []mail.Email) {
	if len(list) == 0 {
		return
	}
	formatted := make([]string, len(list))
	for i, e := range list {
		formatted[i] = formatAddress(e)
	}
	h.generated(name, strings.Join(formatted, ", "))
}

// formatAddress uses the Email's own rendering when the display name is
// safe as-is and falls back to net/mail quoting and encoding otherwise.
func formatAddress(e mail.Email) string {
	if e.Name() == "" || isPlainPhrase(e.Name()) {
		return e.String()
	}
	return (&netmail.Address{Name: e.Name(), Address: e.Address()}).String()
}

func isPlainPhrase(s string) bool {
	for _, r := range s {
		if r < 0x20 || r > 0x7e || strings.ContainsRune(`()<>[]:;@\,."`, r) {
			return false
		}
	}
	return true
}
