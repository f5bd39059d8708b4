package mail

import (
	"fmt"
	"strings"
)

// TransferEncoding names the scheme used to encode body bytes for transport.
type TransferEncoding string

const (
	Encoding7Bit   TransferEncoding = "7bit"
	Encoding8Bit   TransferEncoding = "8bit"
	EncodingBase64 TransferEncoding = "base64"
	EncodingQP     TransferEncoding = "qp"

	DefaultTransferEncoding = EncodingQP
)

var transferEncodings = []TransferEncoding{Encoding7Bit, Encoding8Bit, EncodingBase64, EncodingQP}

// ParseTransferEncoding returns the TransferEncoding for name.
// Matching is exact and case-sensitive.
func ParseTransferEncoding(name string) (TransferEncoding, error) {
	for _, enc := range transferEncodings {
		if string(enc) == name {
			return enc, nil
		}
	}

	legal := make([]string, len(transferEncodings))
	for i, enc := range transferEncodings {
		legal[i] = string(enc)
	}
	msg := fmt.Sprintf("invalid encoding name %q, valid encodings are [%s]", name, strings.Join(legal, ", "))
	return "", newError(CodeInvalidEncodingName, msg, nil)
}

// String returns the short name ("7bit", "8bit", "base64", "qp").
func (e TransferEncoding) String() string {
	return string(e)
}

// HeaderValue returns the RFC 2045 Content-Transfer-Encoding token.
func (e TransferEncoding) HeaderValue() string {
	if e == EncodingQP {
		return "quoted-printable"
	}
	return string(e)
}

// SetContentTransferEncoding sets the body transfer encoding.
// On error the previously set encoding is retained.
func (m *Message) SetContentTransferEncoding(name string) error {
	enc, err := ParseTransferEncoding(name)
	if err != nil {
		return err
	}
	m.transferEncoding = enc
	return nil
}

// ContentTransferEncoding returns the active encoding name.
func (m *Message) ContentTransferEncoding() string {
	return string(m.transferEncoding)
}

// TransferEncoding returns the active encoding.
func (m *Message) TransferEncoding() TransferEncoding {
	return m.transferEncoding
}

