// Package metadata contains facilities for working with object database documents.
// At the moment, it is mostly a 1:1 reflection of the JSON documents stored by
// CouchDB or on the filesystem.
//
// Documents carry arbitrary fields.  A handful are meaningful to object metadata
// resolution (_id, Type, object_id, model_type, object_name, mesh_uri), and
// attachments are described by stubs under _attachments, as CouchDB does.
package metadata
