// Package couch provides an object database driver for CouchDB.
//
// Views are executed server side, through the design documents installed in the
// collection (database) by the object recognition tooling:
//
//	_design/objects/_view/by_object_id
//	_design/models/_view/by_object_id_and_<model type>
//
// Documents are served by CouchDB at <root>/<collection>/<_id>, so resources
// such as meshes have URLs that can be derived from their _id.
package couch

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/birkland/objinfo"
	"github.com/pkg/errors"
)

// DefaultTimeout bounds each HTTP request when no timeout is configured
const DefaultTimeout = 30 * time.Second

// Driver represents the CouchDB object database driver
type Driver struct {
	cfg    Config
	params objinfo.Params
	client *http.Client
}

// Config encapsulates a CouchDB driver config.
type Config struct {
	Root       string `mapstructure:"root"`       // server URL, e.g. http://localhost:5984
	Collection string `mapstructure:"collection"` // database name
	Timeout    int    `mapstructure:"timeout"`    // seconds
}

// Open initializes a CouchDB driver from database parameters, e.g.
// {"type": "CouchDB", "root": "http://localhost:5984", "collection": "object_recognition"}
func Open(params objinfo.Params) (*Driver, error) {
	var cfg Config
	if err := params.Decode(&cfg); err != nil {
		return nil, err
	}

	d, err := NewDriver(cfg, nil)
	if err != nil {
		return nil, err
	}

	// Keep any extra parameters, but report root and collection as normalized
	for k, v := range params {
		if _, ok := d.params[k]; !ok {
			d.params[k] = v
		}
	}
	return d, nil
}

// NewDriver initializes a new CouchDB driver.  If no http client is given, one
// bounded by the configured timeout is used.
func NewDriver(cfg Config, client *http.Client) (*Driver, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("no CouchDB root URL given")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("no CouchDB collection given")
	}

	if !strings.HasPrefix(cfg.Root, "http://") && !strings.HasPrefix(cfg.Root, "https://") {
		return nil, errors.Errorf("CouchDB root %s is not an http(s) URL", cfg.Root)
	}
	cfg.Root = strings.TrimRight(cfg.Root, "/")

	if client == nil {
		timeout := DefaultTimeout
		if cfg.Timeout > 0 {
			timeout = time.Duration(cfg.Timeout) * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Driver{
		cfg:    cfg,
		client: client,
		params: objinfo.Params{
			objinfo.ParamType:       objinfo.CouchDB.String(),
			objinfo.ParamRoot:       cfg.Root,
			objinfo.ParamCollection: cfg.Collection,
		},
	}, nil
}

// Parameters returns the parameters the driver was opened with, with the root
// URL normalized
func (d *Driver) Parameters() objinfo.Params {
	return d.params
}
