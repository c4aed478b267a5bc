// Package mem provides an in-memory object database driver.  Documents are
// matched against views in the order they were added.
package mem

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"sync"

	"github.com/birkland/objinfo"
	"github.com/birkland/objinfo/metadata"
	"github.com/pkg/errors"
)

// Driver represents the in-memory object database driver
type Driver struct {
	sync.RWMutex
	params objinfo.Params
	docs   []*document
}

type document struct {
	*metadata.Document
	attachments map[string][]byte
}

// NewDriver initializes an empty in-memory database
func NewDriver(params objinfo.Params) *Driver {
	p := objinfo.Params{}
	for k, v := range params {
		p[k] = v
	}
	if p.Type() == objinfo.Empty {
		p[objinfo.ParamType] = objinfo.Memory.String()
	}

	return &Driver{params: p}
}

// Parameters returns the parameters the driver was created with
func (d *Driver) Parameters() objinfo.Params {
	return d.params
}

// Add a document, with optional attachment content, to the database
func (d *Driver) Add(fields map[string]interface{}, attachments map[string][]byte) error {
	doc := &document{
		Document:    &metadata.Document{Fields: make(map[string]interface{}, len(fields))},
		attachments: make(map[string][]byte, len(attachments)),
	}

	for k, v := range fields {
		doc.Fields[k] = v
	}

	for name, content := range attachments {
		doc.attachments[name] = content
		doc.AddAttachment(name, metadata.AttachmentStub{Length: int64(len(content))})
	}

	if err := doc.Validate(); err != nil {
		return errors.Wrapf(err, "could not add document")
	}

	d.Lock()
	defer d.Unlock()
	d.docs = append(d.docs, doc)
	return nil
}

// Query matches each document against the view, in insertion order
func (d *Driver) Query(ctx context.Context, v objinfo.View, f objinfo.QueryFunc) error {
	d.RLock()
	docs := make([]*document, len(d.docs))
	copy(docs, d.docs)
	d.RUnlock()

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "error querying %s for %s", v.Name, v.Key)
		}

		if !v.Matches(doc.Field) {
			continue
		}

		err := f(doc)
		if objinfo.IsStop(err) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "error querying %s for %s", v.Name, v.Key)
		}
	}

	return nil
}

func (d *document) HasAttachment(name string) bool {
	_, ok := d.attachments[name]
	return ok
}

func (d *document) Attachment(_ context.Context, name string) (io.ReadCloser, error) {
	content, ok := d.attachments[name]
	if !ok {
		return nil, errors.Errorf("no attachment %s in %s", name, d.ID())
	}
	return ioutil.NopCloser(bytes.NewReader(content)), nil
}
