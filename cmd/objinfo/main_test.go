package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/birkland/objinfo"
	"github.com/birkland/objinfo/drivers/mem"
	"github.com/birkland/objinfo/resolv"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func newMemDB(t *testing.T) *mem.Driver {
	db := mem.NewDriver(objinfo.Params{objinfo.ParamType: "Memory"})

	docs := []struct {
		fields      map[string]interface{}
		attachments map[string][]byte
	}{
		{fields: map[string]interface{}{"_id": "o1", "Type": "Object", "object_name": "mug"}},
		{fields: map[string]interface{}{"_id": "o2", "Type": "Object"}},
		{fields: map[string]interface{}{"_id": "m1", "Type": "Model", "object_id": "o1", "model_type": "mesh", "mesh_uri": "http://h/mug.stl"}},
		{
			fields:      map[string]interface{}{"_id": "m2", "Type": "Model", "object_id": "o2", "model_type": "mesh"},
			attachments: map[string][]byte{"mesh": []byte("solid")},
		},
	}

	for _, d := range docs {
		if err := db.Add(d.fields, d.attachments); err != nil {
			t.Fatalf("could not add document: %+v", err)
		}
	}

	return db
}

func TestResolveAction(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer
	err := resolveAction(ctx, &out, resolv.NewResolver(), newMemDB(t), false, "o2", "o1", "o3")
	if err != nil {
		t.Fatalf("resolve failed: %+v", err)
	}

	expected := []string{
		columns("o2", "o2", "attachment:mesh"),
		columns("o1", "mug", "http://h/mug.stl"),
		columns("o3", "o3", "-"),
	}

	if diffs := deep.Equal(expected, strings.Split(strings.TrimSpace(out.String()), "\n")); len(diffs) != 0 {
		t.Error(diffs)
	}
}

func TestResolveActionJSON(t *testing.T) {
	var out bytes.Buffer
	err := resolveAction(context.Background(), &out, resolv.NewResolver(), newMemDB(t), true, "o2")
	if err != nil {
		t.Fatalf("resolve failed: %+v", err)
	}

	var info objinfo.ObjectInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("bad json %s: %s", out.String(), err)
	}

	expected := objinfo.ObjectInfo{ID: "o2", Name: "o2", MeshAttachment: []byte("solid")}
	if diffs := deep.Equal(expected, info); len(diffs) != 0 {
		t.Error(diffs)
	}
}

func TestResolveActionNotConfigured(t *testing.T) {
	var out bytes.Buffer
	err := resolveAction(context.Background(), &out, resolv.NewResolver(), objinfo.Unconfigured{}, false, "o1")
	if errors.Cause(err) != objinfo.ErrNotConfigured {
		t.Errorf("expected not configured, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed on error, got %q", out.String())
	}
}

func TestShowAction(t *testing.T) {
	var out bytes.Buffer
	if err := showAction(context.Background(), &out, newMemDB(t), "o2"); err != nil {
		t.Fatalf("show failed: %+v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected an object and a model document, got %q", lines)
	}

	var model map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &model); err != nil {
		t.Fatal(err)
	}

	if model["_id"] != "m2" || model["view"] != objinfo.ViewModelByObjectIDAndType {
		t.Errorf("unexpected model document %v", model)
	}
	if _, ok := model["_attachments"]; !ok {
		t.Errorf("mesh attachment should be shown")
	}

	if err := showAction(context.Background(), &out, objinfo.Unconfigured{}, "o2"); errors.Cause(err) != objinfo.ErrNotConfigured {
		t.Errorf("expected not configured, got %v", err)
	}
}

func TestParamsAction(t *testing.T) {
	p, err := objinfo.ParseParamsString(`{"type":"couchdb","root":"http://h","collection":"db"}`)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := paramsAction(&out, p); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(out.String(), "\n")
	if lines[0] != columns("type", "CouchDB") {
		t.Errorf("wrong type line %q", lines[0])
	}
	if lines[1] != columns("identity", p.Identity()) {
		t.Errorf("wrong identity line %q", lines[1])
	}
}

func TestDBParams(t *testing.T) {
	dir, err := ioutil.TempDir("", "objinfo")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "db.json")
	if err := ioutil.WriteFile(file, []byte(`{"type":"Filesystem","root":"/tmp"}`), 0644); err != nil {
		t.Fatal(err)
	}

	saved := mainOpts
	defer func() { mainOpts = saved }()

	cases := []struct {
		testName string
		db       string
		dbFile   string
		expected objinfo.Backend
		fail     bool
	}{
		{"none", "", "", objinfo.Empty, false},
		{"flag", `{"type":"Memory"}`, "", objinfo.Memory, false},
		{"file", "", file, objinfo.Filesystem, false},
		{"fileWins", `{"type":"Memory"}`, file, objinfo.Filesystem, false},
		{"badJSON", `{"type":`, "", objinfo.Empty, true},
		{"missingFile", "", filepath.Join(dir, "nope.json"), objinfo.Empty, true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.testName, func(t *testing.T) {
			mainOpts.db = c.db
			mainOpts.dbFile = c.dbFile

			p, err := dbParams()
			if c.fail {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("could not read params: %+v", err)
			}
			if p.Type() != c.expected {
				t.Errorf("expected %s, got %s", c.expected, p.Type())
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer

	log, err := newLogger(&out, "debug", "json")
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hello", "object_id", "o1")

	var entry map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log output, got %q", out.String())
	}
	if entry["object_id"] != "o1" {
		t.Errorf("missing attribute in %v", entry)
	}

	out.Reset()
	log, _ = newLogger(&out, "warn", "text")
	log.Info("quiet")
	if out.Len() != 0 {
		t.Errorf("info should be filtered at warn, got %q", out.String())
	}

	if _, err := newLogger(&out, "loud", "text"); err == nil {
		t.Errorf("expected bad level to fail")
	}
	if _, err := newLogger(&out, "info", "xml"); err == nil {
		t.Errorf("expected bad format to fail")
	}
}
