package objinfo

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Well known parameter names
const (
	ParamType       = "type"
	ParamRoot       = "root"
	ParamCollection = "collection"
)

// Params is the string-keyed parameter bag describing an object database,
// e.g. {"type": "CouchDB", "root": "http://localhost:5984", "collection": "object_recognition"}
type Params map[string]interface{}

// ParseParams decodes JSON database parameters
func ParseParams(r io.Reader) (Params, error) {
	p := Params{}

	err := json.NewDecoder(r).Decode(&p)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode json db parameters")
	}
	return p, nil
}

// ParseParamsString decodes JSON database parameters from a string.  An empty
// string yields an Empty parameter bag.
func ParseParamsString(s string) (Params, error) {
	if strings.TrimSpace(s) == "" {
		return Params{}, nil
	}
	return ParseParams(strings.NewReader(s))
}

// Type returns the backend flavor named by the "type" parameter
func (p Params) Type() Backend {
	return ParseBackend(p.String(ParamType))
}

// String returns the given parameter as a string, or "" if absent.
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Decode copies the parameters into a driver specific config struct.  Fields
// are matched by their `mapstructure` tags, and values are weakly typed
// (e.g. "30" decodes into an int).
func (p Params) Decode(out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "could not create parameter decoder")
	}

	err = dec.Decode(map[string]interface{}(p))
	if err != nil {
		return errors.Wrapf(err, "could not decode %s db parameters", p.Type())
	}
	return nil
}

// Identity is a stable string naming the database these parameters point to
func (p Params) Identity() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+p.String(k))
	}
	return strings.Join(parts, ";")
}
