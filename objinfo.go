package objinfo

import (
	"strings"

	"github.com/pkg/errors"
)

// Backend names a flavor of object database
type Backend int

// Object database flavors.  Empty is the "not configured" sentinel.
const (
	Empty Backend = iota
	CouchDB
	Filesystem
	Memory
	Noncore
)

var backendNames = map[Backend]string{
	Empty:      "Empty",
	CouchDB:    "CouchDB",
	Filesystem: "Filesystem",
	Memory:     "Memory",
	Noncore:    "Noncore",
}

func (b Backend) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return "Empty"
}

// ParseBackend parses a backend name, case insensitively.  Anything
// unrecognized is Empty.
func ParseBackend(name string) Backend {
	for b, n := range backendNames {
		if strings.EqualFold(n, name) {
			return b
		}
	}
	return Empty
}

// ErrNotConfigured is returned when an object database has no backend set.
var ErrNotConfigured = errors.New("db not set")

// ObjectInfo is the resolved metadata of a single object.
//
// In practice at most one of MeshURI and MeshAttachment is populated; both describe where
// the mesh lives, under different backend conventions.
type ObjectInfo struct {
	ID             string `json:"object_id"`
	Name           string `json:"name"`
	MeshURI        string `json:"mesh_uri,omitempty"`
	MeshAttachment []byte `json:"mesh_attachment"`
}

// HasMeshURI tells whether a mesh URI was resolved
func (o ObjectInfo) HasMeshURI() bool {
	return o.MeshURI != ""
}

// HasMeshAttachment tells whether the mesh was resolved as inline data
func (o ObjectInfo) HasMeshAttachment() bool {
	return o.MeshAttachment != nil
}

// Mesh returns a short description of the mesh location, suitable for display
func (o ObjectInfo) Mesh() string {
	switch {
	case o.HasMeshURI():
		return o.MeshURI
	case o.HasMeshAttachment():
		return "attachment:mesh"
	default:
		return "-"
	}
}
