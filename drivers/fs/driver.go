// Package fs provides an object database driver for documents kept as JSON files
// in a directory tree.
//
// A collection is a directory under the database root.  Each document lives in
// its own directory, named by its _id through a path generator, containing
// document.json and, optionally, an attachments/ directory with one file per
// attachment:
//
//	<root>/<collection>/<path(_id)>/document.json
//	<root>/<collection>/<path(_id)>/attachments/mesh
package fs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/birkland/objinfo"
	"github.com/birkland/objinfo/fspath"
	"github.com/pkg/errors"
)

// Driver represents the filesystem object database driver
type Driver struct {
	dir    string
	params objinfo.Params
	cfg    Config
}

// Config encapsulates a filesystem driver config.
//
// The path generator is used for quick lookups of documents by _id.  Views
// keyed by anything else require a walk through the collection directory, which
// skips unreadable documents and reports them to Logger.
type Config struct {
	Root       string           `mapstructure:"root"`       // database root directory
	Collection string           `mapstructure:"collection"` // collection directory under root
	PathFunc   fspath.Generator `mapstructure:"-"`          // document directories based on _id
	Logger     *slog.Logger     `mapstructure:"-"`
}

// Open initializes a filesystem driver from database parameters, e.g.
// {"type": "Filesystem", "root": "/var/objdb", "collection": "object_recognition"}
func Open(params objinfo.Params) (*Driver, error) {
	var cfg Config
	if err := params.Decode(&cfg); err != nil {
		return nil, err
	}

	d, err := NewDriver(cfg)
	if err != nil {
		return nil, err
	}
	d.params = params
	return d, nil
}

// NewDriver initializes a new filesystem driver over the given collection
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("no database root given")
	}

	if cfg.PathFunc == nil {
		cfg.PathFunc = fspath.Escape
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dir, err := filepath.Abs(filepath.Join(cfg.Root, cfg.Collection))
	if err != nil {
		return nil, errors.Wrapf(err, "could not calculate absolute path of %s", cfg.Root)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not find collection directory")
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	return &Driver{
		dir: dir,
		cfg: cfg,
		params: objinfo.Params{
			objinfo.ParamType:       objinfo.Filesystem.String(),
			objinfo.ParamRoot:       cfg.Root,
			objinfo.ParamCollection: cfg.Collection,
		},
	}, nil
}

// Parameters returns the parameters the driver was opened with
func (d *Driver) Parameters() objinfo.Params {
	return d.params
}

// Dir is the absolute path of the collection directory
func (d *Driver) Dir() string {
	return d.dir
}

// DocumentDir is the absolute path of the directory of the document with the given _id
func (d *Driver) DocumentDir(id string) string {
	return filepath.Join(d.dir, filepath.FromSlash(d.cfg.PathFunc.Generate(id)))
}
