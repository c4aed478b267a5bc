package couch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/birkland/objinfo"
	"github.com/birkland/objinfo/metadata"
	"github.com/pkg/errors"
)

type viewResponse struct {
	Rows []struct {
		ID    string          `json:"id"`
		Value json.RawMessage `json:"value"`
		Doc   json.RawMessage `json:"doc"`
	} `json:"rows"`
}

type document struct {
	*metadata.Document
	driver *Driver
}

// ViewURL is the URL of the design document view implementing the given view
func (d *Driver) ViewURL(v objinfo.View) (string, error) {
	var path string
	switch v.Name {
	case objinfo.ViewObjectInfoByObjectID:
		path = "_design/objects/_view/by_object_id"
	case objinfo.ViewModelByObjectIDAndType:
		if v.ModelType == "" {
			return "", fmt.Errorf("view %s needs a model type", v.Name)
		}
		path = "_design/models/_view/by_object_id_and_" + url.PathEscape(v.ModelType)
	default:
		return "", fmt.Errorf("unknown view %s", v.Name)
	}

	key, err := json.Marshal(v.Key)
	if err != nil {
		return "", errors.Wrapf(err, "could not encode view key %s", v.Key)
	}

	return fmt.Sprintf("%s/%s/%s?key=%s", d.cfg.Root, url.PathEscape(d.cfg.Collection), path, url.QueryEscape(string(key))), nil
}

// DocumentURL is the URL of a document, or one of its attachments when
// path elements are given
func (d *Driver) DocumentURL(id string, path ...string) string {
	u := fmt.Sprintf("%s/%s/%s", d.cfg.Root, url.PathEscape(d.cfg.Collection), url.PathEscape(id))
	for _, p := range path {
		u += "/" + url.PathEscape(p)
	}
	return u
}

// Query executes the view on the CouchDB server, and invokes the callback with
// each row's document in the order returned by the server
func (d *Driver) Query(ctx context.Context, v objinfo.View, f objinfo.QueryFunc) error {
	u, err := d.ViewURL(v)
	if err != nil {
		return err
	}

	body, err := d.get(ctx, u)
	if err != nil {
		return errors.Wrapf(err, "error querying %s for %s", v.Name, v.Key)
	}
	defer body.Close()

	var resp viewResponse
	err = json.NewDecoder(body).Decode(&resp)
	if err != nil {
		return errors.Wrapf(err, "could not decode %s response", v.Name)
	}

	for _, row := range resp.Rows {
		raw := row.Doc
		if len(raw) == 0 || string(raw) == "null" {
			raw = row.Value
		}

		doc := &metadata.Document{}
		if err := json.Unmarshal(raw, &doc.Fields); err != nil || doc.Fields == nil {
			// Not a document, e.g. a view emitting scalar values
			continue
		}
		if !doc.HasField(objinfo.FieldID) && row.ID != "" {
			doc.Fields[objinfo.FieldID] = row.ID
		}

		err = f(document{Document: doc, driver: d})
		if objinfo.IsStop(err) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "error querying %s for %s", v.Name, v.Key)
		}
	}

	return nil
}

// Attachment streams the attachment from the CouchDB server
func (doc document) Attachment(ctx context.Context, name string) (io.ReadCloser, error) {
	body, err := doc.driver.get(ctx, doc.driver.DocumentURL(doc.ID(), name))
	if err != nil {
		return nil, errors.Wrapf(err, "could not fetch attachment %s of %s", name, doc.ID())
	}
	return body, nil
}

func (d *Driver) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create request for %s", u)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s failed", u)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s returned %s: %s", u, resp.Status, msg)
	}

	return resp.Body, nil
}
