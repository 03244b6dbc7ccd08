package secretbin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/secretbin/secretbin-go/internal/codec"
)

// Attachment is a named binary blob shipped alongside the secret message.
type Attachment struct {
	Name string

	// ContentType is the attachment's MIME type. When empty it is guessed
	// from the file name extension just before serialization; if the guess
	// fails it stays empty.
	ContentType string

	Data []byte
}

// Secret is a message with optional attachments, built by the caller before
// submission. Attachment order is preserved on the wire: the recipient
// reconstructs the list in exactly this order.
type Secret struct {
	Message     string
	Attachments []Attachment
}

// AddAttachment appends an attachment. An empty contentType is inferred
// from the file name extension during serialization.
func (s *Secret) AddAttachment(name, contentType string, data []byte) {
	s.Attachments = append(s.Attachments, Attachment{Name: name, ContentType: contentType, Data: data})
}

// AddFileAttachment reads the file at path and attaches it under its base
// name, guessing the content type from the extension.
func (s *Secret) AddFileAttachment(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading attachment %s: %w", path, err)
	}
	name := filepath.Base(path)
	s.AddAttachment(name, codec.ContentTypeByName(name), data)
	return nil
}
