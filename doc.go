// Package objinfo defines an API for resolving human-facing metadata (a display
// name and the location of a mesh) for objects stored in an object database.
//
// Access to the database is provided by one or more DB implementations.  Drivers
// may talk to a CouchDB server, a directory of JSON documents, memory, etc.  See
// individual driver documentation under drivers/ for more information.  The
// resolv package builds on a DB to resolve and memoize ObjectInfo values.
package objinfo
