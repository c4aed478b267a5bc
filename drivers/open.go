// Package drivers opens object databases, choosing a driver by backend flavor.
package drivers

import (
	"fmt"

	"github.com/birkland/objinfo"
	"github.com/birkland/objinfo/drivers/couch"
	"github.com/birkland/objinfo/drivers/fs"
	"github.com/birkland/objinfo/drivers/mem"
	"github.com/pkg/errors"
)

// Open connects to the object database described by the given parameters.
// Empty parameters yield an unconfigured database, which can still serve
// objects a resolver has already cached.
func Open(params objinfo.Params) (objinfo.DB, error) {
	switch params.Type() {
	case objinfo.Empty:
		return objinfo.Unconfigured{}, nil
	case objinfo.CouchDB:
		d, err := couch.Open(params)
		if err != nil {
			return nil, errors.Wrapf(err, "could not open CouchDB database")
		}
		return d, nil
	case objinfo.Filesystem:
		d, err := fs.Open(params)
		if err != nil {
			return nil, errors.Wrapf(err, "could not open filesystem database")
		}
		return d, nil
	case objinfo.Memory:
		return mem.NewDriver(params), nil
	default:
		return nil, fmt.Errorf("no driver available for %s databases", params.Type())
	}
}
