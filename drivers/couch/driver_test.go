package couch_test

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/birkland/objinfo"
	"github.com/birkland/objinfo/drivers/couch"
	"github.com/birkland/objinfo/drivers/mem"
	"github.com/birkland/objinfo/resolv"
	"github.com/stretchr/testify/require"
)

// A fake CouchDB serving the object recognition views for collection "models"
func newServer(t *testing.T) *httptest.Server {
	rows := map[string][]map[string]interface{}{
		`/models/_design/objects/_view/by_object_id?key="obj1"`: {
			{"id": "obj1", "key": "obj1", "value": map[string]interface{}{"_id": "obj1", "Type": "Object", "object_name": "mug"}},
		},
		`/models/_design/models/_view/by_object_id_and_mesh?key="obj1"`: {
			{"id": "abc123", "key": "obj1", "value": map[string]interface{}{
				"Type": "Model", "model_type": "mesh", "object_id": "obj1",
				"_attachments": map[string]interface{}{"mesh": map[string]interface{}{"stub": true}},
			}},
			{"id": "def456", "key": "obj1", "value": "not a document"},
			{"id": "ghi789", "key": "obj1", "value": map[string]interface{}{"_id": "ghi789", "Type": "Model"}},
		},
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/abc123/mesh" {
			_, _ = w.Write([]byte("solid abc"))
			return
		}

		found := rows[r.URL.Path+"?key="+r.URL.Query().Get("key")]

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"rows": found})
	}))
}

func TestOpen(t *testing.T) {
	cases := []struct {
		name      string
		params    objinfo.Params
		expectErr bool
	}{
		{"valid", objinfo.Params{"type": "CouchDB", "root": "http://localhost:5984", "collection": "models"}, false},
		{"timeout", objinfo.Params{"type": "CouchDB", "root": "https://h", "collection": "models", "timeout": "5"}, false},
		{"noRoot", objinfo.Params{"type": "CouchDB", "collection": "models"}, true},
		{"noCollection", objinfo.Params{"type": "CouchDB", "root": "http://localhost:5984"}, true},
		{"notHTTP", objinfo.Params{"type": "CouchDB", "root": "/var/db", "collection": "models"}, true},
		{"badTimeout", objinfo.Params{"type": "CouchDB", "root": "http://h", "collection": "models", "timeout": "soon"}, true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			d, err := couch.Open(c.params)
			if c.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, objinfo.CouchDB, d.Parameters().Type())
		})
	}
}

func TestOpenNormalizesRoot(t *testing.T) {
	d, err := couch.Open(objinfo.Params{"type": "couchdb", "root": "http://h/db/", "collection": "models", "timeout": "5"})
	require.NoError(t, err)

	params := d.Parameters()
	require.Equal(t, "http://h/db", params.String(objinfo.ParamRoot))
	require.Equal(t, "models", params.String(objinfo.ParamCollection))
	require.Equal(t, "5", params.String("timeout"))
	require.Equal(t, objinfo.CouchDB, params.Type())

	mesh, err := resolv.DerivedURL{}.LocateMesh(context.Background(), meshModelDB{d}, "obj1")
	require.NoError(t, err)
	require.Equal(t, "http://h/db/models/abc123/mesh.stl", mesh.URI)
}

// Serves a single mesh model, with the parameters of the wrapped driver
type meshModelDB struct {
	*couch.Driver
}

func (meshModelDB) Query(_ context.Context, _ objinfo.View, f objinfo.QueryFunc) error {
	doc := mem.NewDriver(nil)
	if err := doc.Add(map[string]interface{}{"_id": "abc123", "Type": "Model", "model_type": "mesh", "object_id": "obj1"}, nil); err != nil {
		return err
	}
	return doc.Query(context.Background(), objinfo.ModelByObjectIDAndType("mesh", "obj1"), f)
}

func TestViewURL(t *testing.T) {
	d, err := couch.NewDriver(couch.Config{Root: "http://h/db/", Collection: "models"}, nil)
	require.NoError(t, err)

	u, err := d.ViewURL(objinfo.ObjectInfoByObjectID("obj1"))
	require.NoError(t, err)
	require.Equal(t, "http://h/db/models/_design/objects/_view/by_object_id?key=%22obj1%22", u)

	u, err = d.ViewURL(objinfo.ModelByObjectIDAndType("mesh", "obj1"))
	require.NoError(t, err)
	require.Equal(t, "http://h/db/models/_design/models/_view/by_object_id_and_mesh?key=%22obj1%22", u)

	_, err = d.ViewURL(objinfo.View{Name: objinfo.ViewModelByObjectIDAndType, Key: "obj1"})
	require.Error(t, err)

	_, err = d.ViewURL(objinfo.View{Name: "nope"})
	require.Error(t, err)

	require.Equal(t, "http://h/db/models/abc123/mesh", d.DocumentURL("abc123", "mesh"))
}

func TestQuery(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	d, err := couch.NewDriver(couch.Config{Root: srv.URL, Collection: "models"}, srv.Client())
	require.NoError(t, err)

	var names []string
	err = d.Query(context.Background(), objinfo.ObjectInfoByObjectID("obj1"), func(doc objinfo.Document) error {
		names = append(names, doc.Field("object_name"))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"mug"}, names)

	var ids []string
	var mesh []byte
	err = d.Query(context.Background(), objinfo.ModelByObjectIDAndType("mesh", "obj1"), func(doc objinfo.Document) error {
		ids = append(ids, doc.Field("_id"))
		if doc.HasAttachment("mesh") {
			r, err := doc.Attachment(context.Background(), "mesh")
			require.NoError(t, err)
			defer r.Close()
			mesh, err = ioutil.ReadAll(r)
			require.NoError(t, err)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"abc123", "ghi789"}, ids, "rows without documents are skipped, missing _id filled from the row")
	require.Equal(t, "solid abc", string(mesh))
}

func TestQueryNoRows(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	d, err := couch.NewDriver(couch.Config{Root: srv.URL, Collection: "models"}, srv.Client())
	require.NoError(t, err)

	var visited int
	err = d.Query(context.Background(), objinfo.ObjectInfoByObjectID("obj9"), func(objinfo.Document) error {
		visited++
		return nil
	})
	require.NoError(t, err)
	require.Zero(t, visited)
}

func TestQueryStop(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	d, err := couch.NewDriver(couch.Config{Root: srv.URL, Collection: "models"}, srv.Client())
	require.NoError(t, err)

	var visited int
	err = d.Query(context.Background(), objinfo.ModelByObjectIDAndType("mesh", "obj1"), func(objinfo.Document) error {
		visited++
		return objinfo.StopQuery
	})
	require.NoError(t, err)
	require.Equal(t, 1, visited)
}

func TestQueryServerError(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	d, err := couch.NewDriver(couch.Config{Root: srv.URL, Collection: "missing"}, srv.Client())
	require.NoError(t, err)

	err = d.Query(context.Background(), objinfo.ModelByObjectIDAndType("mesh", "obj1"), func(objinfo.Document) error {
		return nil
	})
	require.NoError(t, err, "an unknown key is an empty result, not an error")

	srv.Close()
	err = d.Query(context.Background(), objinfo.ModelByObjectIDAndType("mesh", "obj1"), func(objinfo.Document) error {
		return nil
	})
	require.Error(t, err)
}

func TestAttachmentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/_design/models/_view/by_object_id_and_mesh" {
			_, _ = w.Write([]byte(`{"rows": [{"id": "m1", "value": {"_id": "m1"}}]}`))
			return
		}
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	d, err := couch.NewDriver(couch.Config{Root: srv.URL, Collection: "models"}, srv.Client())
	require.NoError(t, err)

	err = d.Query(context.Background(), objinfo.ModelByObjectIDAndType("mesh", "obj1"), func(doc objinfo.Document) error {
		_, err := doc.Attachment(context.Background(), "mesh")
		return err
	})
	require.Error(t, err)
}
