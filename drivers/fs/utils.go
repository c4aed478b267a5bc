package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/birkland/objinfo/metadata"
	"github.com/pkg/errors"
)

// AttachmentsDir is the directory, within a document directory, holding attachment files
const AttachmentsDir = "attachments"

// document is a metadata.Document backed by a directory
type document struct {
	*metadata.Document
	dir string
}

// ReadDocument reads the document kept in the given document directory
func ReadDocument(dir string) (doc *metadata.Document, err error) {
	doc = &metadata.Document{}

	file, err := os.Open(filepath.Join(dir, metadata.DocumentFile))
	if err != nil {
		return nil, errors.Wrapf(err, "could not open document at %s", dir)
	}
	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = errors.Wrapf(e, "error closing file at %s", dir)
		}
	}()

	err = metadata.Parse(file, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse document at %s", dir)
	}

	err = doc.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid document at %s", dir)
	}

	return doc, nil
}

// isDocumentDir tells whether the given directory holds a document.  A missing
// directory is not an error, anything else (e.g. "permission denied") is.
func isDocumentDir(dir string) (bool, error) {
	info, err := os.Stat(filepath.Join(dir, metadata.DocumentFile))
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "error detecting document file in %s", dir)
	}

	return err == nil && info.Mode().IsRegular(), nil
}

func (d document) attachmentPath(name string) string {
	return filepath.Join(d.dir, AttachmentsDir, filepath.Base(name))
}

// HasAttachment is true when the document lists the attachment in _attachments,
// or an attachment file is present
func (d document) HasAttachment(name string) bool {
	if d.Document.HasAttachment(name) {
		return true
	}

	info, err := os.Stat(d.attachmentPath(name))
	return err == nil && info.Mode().IsRegular()
}

// Attachment opens the attachment file
func (d document) Attachment(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(d.attachmentPath(name))
	if err != nil {
		return nil, errors.Wrapf(err, "could not open attachment %s of %s", name, d.ID())
	}
	return f, nil
}
