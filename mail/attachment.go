package mail

import (
	"context"
	"io"
	"path"

	"github.com/pure-golang/mailer/storage"
)

// Attachment is a file attached to a Message.
type Attachment struct {
	Content  []byte
	FileName string
	MimeType string
}

// AddAttachment reads file to the end and attaches its content.
// An empty mimeType defaults to "plain/text". The Message keeps no
// reference to file. On read failure nothing is stored.
func (m *Message) AddAttachment(file io.Reader, fileName, mimeType string) error {
	if file == nil {
		return newError(CodeAttachmentRead, "nil file", nil)
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return newError(CodeAttachmentRead, fileName, err)
	}

	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	m.attachments = append(m.attachments, Attachment{
		Content:  content,
		FileName: fileName,
		MimeType: mimeType,
	})
	return nil
}

// AttachObject reads the object bucket/key from src and attaches it.
// fileName defaults to the base name of key, mimeType to the object's
// content type and then to "plain/text".
func (m *Message) AttachObject(ctx context.Context, src storage.Reader, bucket, key, fileName, mimeType string) error {
	rc, info, err := src.Get(ctx, bucket, key)
	if err != nil {
		return newError(CodeAttachmentRead, key, err)
	}
	defer rc.Close()

	if fileName == "" {
		fileName = path.Base(key)
	}
	if mimeType == "" && info != nil {
		mimeType = info.ContentType
	}

	return m.AddAttachment(rc, fileName, mimeType)
}

// Attachments returns copies of the attachments in insertion order.
func (m *Message) Attachments() []Attachment {
	out := make([]Attachment, len(m.attachments))
	for i, a := range m.attachments {
		a.Content = append([]byte(nil), a.Content...)
		out[i] = a
	}
	return out
}
