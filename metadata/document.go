package metadata

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// DocumentFile is the name of the file holding a document's fields, for
// stores that keep documents on a filesystem
const DocumentFile = "document.json"

const attachmentsField = "_attachments"

// Document is a single JSON document
type Document struct {
	Fields map[string]interface{}
}

// AttachmentStub describes an attachment without its content, as listed under
// _attachments
type AttachmentStub struct {
	ContentType string `json:"content_type,omitempty" mapstructure:"content_type"`
	Length      int64  `json:"length,omitempty" mapstructure:"length"`
	Digest      string `json:"digest,omitempty" mapstructure:"digest"`
	Stub        bool   `json:"stub,omitempty" mapstructure:"stub"`
}

// Parse parses a byte stream into a document
func Parse(r io.Reader, d *Document) error {
	fields := make(map[string]interface{})

	err := json.NewDecoder(r).Decode(&fields)
	if err != nil {
		return errors.Wrap(err, "could not decode json document")
	}
	d.Fields = fields
	return nil
}

// Serialize writes the document to json
func (d *Document) Serialize(w io.Writer) error {
	return json.NewEncoder(w).Encode(d.Fields)
}

// ID is the document's _id
func (d *Document) ID() string {
	return d.Field("_id")
}

// Type is the document's Type, e.g. Object or Model
func (d *Document) Type() string {
	return d.Field("Type")
}

// HasField tells whether the document has the given field
func (d *Document) HasField(name string) bool {
	_, ok := d.Fields[name]
	return ok
}

// Field returns a field as a string.  Strings are returned verbatim, other
// JSON values in their JSON encoding, and absent or null fields as "".
func (d *Document) Field(name string) string {
	v, ok := d.Fields[name]
	if !ok || v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Attachments lists the attachment stubs of a document, by name
func (d *Document) Attachments() map[string]AttachmentStub {
	stubs := make(map[string]AttachmentStub)

	raw, ok := d.Fields[attachmentsField].(map[string]interface{})
	if !ok {
		return stubs
	}

	for name, v := range raw {
		var stub AttachmentStub
		_ = mapstructure.WeakDecode(v, &stub) // malformed stubs still name an attachment
		stubs[name] = stub
	}

	return stubs
}

// AttachmentNames lists attachment names in lexical order
func (d *Document) AttachmentNames() []string {
	var names []string
	for name := range d.Attachments() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasAttachment tells whether the document lists the named attachment
func (d *Document) HasAttachment(name string) bool {
	_, ok := d.Attachments()[name]
	return ok
}

// AddAttachment records an attachment stub on the document
func (d *Document) AddAttachment(name string, stub AttachmentStub) {
	if d.Fields == nil {
		d.Fields = make(map[string]interface{})
	}

	raw, ok := d.Fields[attachmentsField].(map[string]interface{})
	if !ok {
		raw = make(map[string]interface{})
		d.Fields[attachmentsField] = raw
	}

	entry := map[string]interface{}{"stub": true}
	if stub.ContentType != "" {
		entry["content_type"] = stub.ContentType
	}
	if stub.Length > 0 {
		entry["length"] = float64(stub.Length)
	}
	if stub.Digest != "" {
		entry["digest"] = stub.Digest
	}
	raw[name] = entry
}
