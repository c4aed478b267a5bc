// Package resolv resolves object metadata (a display name, and where the object's
// mesh lives) from an object database, and memoizes the results.
//
// Each Resolver owns a Cache.  Entries are never evicted; a cached object resolves
// without touching the database at all, even if the database handle passed in is
// no longer configured.  Give each database its own Resolver (or its own
// DatastoreCache namespace) when one process talks to several.
//
// How a mesh is located depends on the backend flavor, and is delegated to a
// MeshLocator:  CouchDB meshes are served at URLs derived from the mesh model's _id,
// while other backends store a mesh_uri field or a "mesh" attachment.
package resolv
