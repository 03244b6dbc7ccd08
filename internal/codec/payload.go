package codec

import (
	"encoding/json"
	"mime"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/secretbin/secretbin-go/internal/common"
)

// Payload is the canonical serialized shape of a secret: the message first,
// then the attachments in submission order. The recipient reconstructs a
// matching list, so order is significant. Struct tags are json; fxamacker/cbor
// falls back to them, which keeps one type serving both formats.
type Payload struct {
	Message     string       `json:"message"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is one serialized attachment. Data is a native byte string in
// CBOR and a padded base64 string in JSON (encoding/json does that for
// []byte already).
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// Marshal serializes p in the negotiated format. The output is a pure
// function of p and compact: the same payload in the same format always
// yields byte-identical output. Empty content types are backfilled from the
// attachment name before encoding; nil slices are normalized so JSON emits
// [] and "" instead of null.
func Marshal(p Payload, compact bool) ([]byte, error) {
	if p.Attachments == nil {
		p.Attachments = []Attachment{}
	}
	for i := range p.Attachments {
		if p.Attachments[i].ContentType == "" {
			p.Attachments[i].ContentType = ContentTypeByName(p.Attachments[i].Name)
		}
		if p.Attachments[i].Data == nil {
			p.Attachments[i].Data = []byte{}
		}
	}

	if compact {
		b, err := cbor.Marshal(p)
		if err != nil {
			return nil, common.Errorf(common.ErrEncoding, "encoding cbor payload: %v", err)
		}
		return b, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, common.Errorf(common.ErrEncoding, "encoding json payload: %v", err)
	}
	return b, nil
}

// Unmarshal decodes data produced by Marshal. It is the test-side inverse;
// the submission path never deserializes payloads.
func Unmarshal(data []byte, compact bool, p *Payload) error {
	if compact {
		if err := cbor.Unmarshal(data, p); err != nil {
			return common.Errorf(common.ErrEncoding, "decoding cbor payload: %v", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return common.Errorf(common.ErrEncoding, "decoding json payload: %v", err)
	}
	return nil
}

// ContentTypeByName guesses a MIME type from the file name extension,
// stripping any parameters like charset. Unknown extensions yield the empty
// string; the payload stores "" rather than omitting the field.
func ContentTypeByName(name string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if t == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return ""
	}
	return mt
}

// The stdlib table covers only a handful of web types and otherwise depends
// on the host's mime.types. Register the extensions secrets commonly travel
// with so inference is identical on every platform.
func init() {
	for ext, typ := range map[string]string{
		".md":       "text/markdown",
		".markdown": "text/markdown",
		".txt":      "text/plain",
		".log":      "text/plain",
		".csv":      "text/csv",
		".yaml":     "application/yaml",
		".yml":      "application/yaml",
		".toml":     "application/toml",
		".pem":      "application/x-pem-file",
	} {
		_ = mime.AddExtensionType(ext, typ)
	}
}
