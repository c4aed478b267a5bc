package resolv

import (
	"context"
	"io/ioutil"

	"github.com/birkland/objinfo"
	"github.com/pkg/errors"
)

// MeshFile is the name under which CouchDB serves a mesh model's mesh
const MeshFile = "mesh.stl"

// Mesh is where a mesh lives:  a URI, or inline data.  Both are empty if the
// mesh could not be located.
type Mesh struct {
	URI        string
	Attachment []byte
}

// MeshLocator scans the mesh models of an object and produces a mesh location.
// Only the first usable model counts; models are never merged.
type MeshLocator interface {
	LocateMesh(ctx context.Context, db objinfo.DB, objectID string) (Mesh, error)
}

// MeshLocatorFunc is a function that can be used to satisfy the MeshLocator interface
type MeshLocatorFunc func(ctx context.Context, db objinfo.DB, objectID string) (Mesh, error)

// LocateMesh invokes the function
func (f MeshLocatorFunc) LocateMesh(ctx context.Context, db objinfo.DB, objectID string) (Mesh, error) {
	return f(ctx, db, objectID)
}

// DerivedURL locates meshes of databases that serve documents over http, like
// CouchDB.  The first mesh model with an _id yields
// <root>/<collection>/<_id>/mesh.stl
type DerivedURL struct{}

// LocateMesh derives a mesh URL from the first mesh model's _id
func (DerivedURL) LocateMesh(ctx context.Context, db objinfo.DB, objectID string) (Mesh, error) {
	var meshID string

	err := db.Query(ctx, objinfo.ModelByObjectIDAndType(objinfo.ModelTypeMesh, objectID), func(doc objinfo.Document) error {
		if !doc.HasField(objinfo.FieldID) {
			return nil
		}
		meshID = doc.Field(objinfo.FieldID)
		return objinfo.StopQuery
	})
	if err != nil {
		return Mesh{}, errors.Wrapf(err, "could not find mesh model of %s", objectID)
	}

	if meshID == "" {
		return Mesh{}, nil
	}

	params := db.Parameters()
	return Mesh{
		URI: params.String(objinfo.ParamRoot) + "/" + params.String(objinfo.ParamCollection) + "/" + meshID + "/" + MeshFile,
	}, nil
}

// FieldOrAttachment locates meshes stored with their models.  The first mesh model
// with either a mesh_uri field, or a "mesh" attachment, is used.  The field wins
// when one model has both.
//
// A mesh_uri field that is present but empty still ends the scan, and yields an
// empty Mesh.  The Resolver then keeps the object document's own mesh_uri, if
// any, rather than clearing it.
type FieldOrAttachment struct{}

// LocateMesh copies the mesh_uri field, or reads the mesh attachment, of the first
// mesh model that has either
func (FieldOrAttachment) LocateMesh(ctx context.Context, db objinfo.DB, objectID string) (Mesh, error) {
	var mesh Mesh

	err := db.Query(ctx, objinfo.ModelByObjectIDAndType(objinfo.ModelTypeMesh, objectID), func(doc objinfo.Document) error {
		if doc.HasField(objinfo.FieldMeshURI) {
			mesh.URI = doc.Field(objinfo.FieldMeshURI)
			return objinfo.StopQuery
		}

		if !doc.HasAttachment(objinfo.AttachmentMesh) {
			return nil
		}

		r, err := doc.Attachment(ctx, objinfo.AttachmentMesh)
		if err != nil {
			return err
		}
		defer r.Close()

		data, err := ioutil.ReadAll(r)
		if err != nil {
			return errors.Wrapf(err, "could not read mesh attachment")
		}
		if data == nil {
			data = []byte{}
		}

		mesh.Attachment = data
		return objinfo.StopQuery
	})
	if err != nil {
		return Mesh{}, errors.Wrapf(err, "could not find mesh model of %s", objectID)
	}

	return mesh, nil
}
