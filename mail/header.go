package mail

import (
	"sort"
	"strconv"
	"strings"
)

// Param is one named parameter of a parameterized header,
// e.g. filename="report.pdf" in Content-Disposition.
type Param struct {
	Name  string
	Value string
}

// Header is a stored header field. Params is empty for plain text headers.
type Header struct {
	Name   string
	Value  string
	Params []Param
}

// FieldBody renders the header body: the value followed by
// `; name="value"` for each parameter in order.
func (h Header) FieldBody() string {
	if len(h.Params) == 0 {
		return h.Value
	}

	var b strings.Builder
	b.WriteString(h.Value)
	for _, p := range h.Params {
		b.WriteString("; ")
		b.WriteString(p.Name)
		b.WriteString("=")
		b.WriteString(quoteParam(p.Value))
	}
	return b.String()
}

func (h Header) clone() Header {
	if len(h.Params) > 0 {
		h.Params = append([]Param(nil), h.Params...)
	}
	return h
}

// quoteParam quotes v unless it is an RFC 2045 token.
func quoteParam(v string) string {
	if v != "" && strings.IndexFunc(v, func(r rune) bool { return !isTokenChar(r) }) < 0 {
		return v
	}

	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func isTokenChar(r rune) bool {
	if r <= ' ' || r >= 0x7f {
		return false
	}
	return !strings.ContainsRune(`()<>@,;:\"/[]?=`, r)
}

// headerList keeps headers in insertion order with unique names.
type headerList struct {
	items []Header
	index map[string]int
}

func (l *headerList) set(h Header) {
	if i, ok := l.index[h.Name]; ok {
		l.items[i] = h
		return
	}
	if l.index == nil {
		l.index = make(map[string]int)
	}
	l.index[h.Name] = len(l.items)
	l.items = append(l.items, h)
}

func (l *headerList) get(name string) (Header, bool) {
	i, ok := l.index[name]
	if !ok {
		return Header{}, false
	}
	return l.items[i], true
}

// AddHeader stores a header. With params it becomes a parameterized
// header. A header with the same name is replaced in place, keeping its
// position. Names are case-sensitive.
func (m *Message) AddHeader(name, value string, params ...Param) *Message {
	h := Header{Name: name, Value: value}
	if len(params) > 0 {
		h.Params = append([]Param(nil), params...)
	}
	m.headers.set(h)
	return m
}

// SetHeaders adds every pair as a plain header, in sorted name order.
func (m *Message) SetHeaders(headers map[string]string) *Message {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m.AddHeader(name, headers[name])
	}
	return m
}

// Header returns the field body of the named header.
func (m *Message) Header(name string) (string, error) {
	h, ok := m.headers.get(name)
	if !ok {
		return "", newError(CodeHeaderNotFound, "header "+strconv.Quote(name)+" not found", nil)
	}
	return h.FieldBody(), nil
}

// Headers returns copies of the stored headers in insertion order.
func (m *Message) Headers() []Header {
	out := make([]Header, len(m.headers.items))
	for i, h := range m.headers.items {
		out[i] = h.clone()
	}
	return out
}

// HeaderMap returns header names mapped to their field bodies.
func (m *Message) HeaderMap() map[string]string {
	out := make(map[string]string, len(m.headers.items))
	for _, h := range m.headers.items {
		out[h.Name] = h.FieldBody()
	}
	return out
}
