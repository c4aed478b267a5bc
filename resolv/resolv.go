package resolv

import (
	"context"
	"io"
	"log/slog"

	"github.com/birkland/objinfo"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// maxConcurrent bounds the number of objects ResolveAll resolves at once
const maxConcurrent = 10

// Resolver resolves object metadata, and caches the results
type Resolver struct {
	cache    Cache
	locators map[objinfo.Backend]MeshLocator
	fallback MeshLocator
	log      *slog.Logger
	inflight singleflight.Group
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache replaces the default MemoryCache
func WithCache(c Cache) Option {
	return func(r *Resolver) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithLogger sets the logger for cache and query activity.  By default, nothing
// is logged.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithLocator sets the mesh locator for a backend flavor
func WithLocator(b objinfo.Backend, l MeshLocator) Option {
	return func(r *Resolver) {
		r.locators[b] = l
	}
}

// NewResolver creates a Resolver with its own cache.  CouchDB meshes are located
// by DerivedURL, all others by FieldOrAttachment, unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		cache: NewMemoryCache(),
		locators: map[objinfo.Backend]MeshLocator{
			objinfo.CouchDB: DerivedURL{},
		},
		fallback: FieldOrAttachment{},
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the metadata of the given object, from the cache if possible.
//
// On a miss the database is queried, and fails with objinfo.ErrNotConfigured if
// it has no backend set.  Missing names and meshes are not errors:  the name falls
// back to the object ID, and meshes are simply left empty.
func (r *Resolver) Resolve(ctx context.Context, objectID string, db objinfo.DB) (objinfo.ObjectInfo, error) {
	for {
		if info, ok := r.cache.Get(ctx, objectID); ok {
			r.log.DebugContext(ctx, "object info cache hit", "object_id", objectID)
			return info, nil
		}

		if err := ctx.Err(); err != nil {
			return objinfo.ObjectInfo{}, errors.Wrapf(err, "gave up resolving %s", objectID)
		}

		// Concurrent misses on the same object share one resolution, run under
		// the context of whichever caller started it
		ch := r.inflight.DoChan(objectID, func() (interface{}, error) {
			info, err := r.load(ctx, objectID, db)
			if err != nil && ctx.Err() != nil {
				return nil, abandoned{err}
			}
			return info, err
		})

		select {
		case res := <-ch:
			if a, ok := res.Err.(abandoned); ok {
				if ctx.Err() == nil {
					r.log.DebugContext(ctx, "shared resolution abandoned, retrying", "object_id", objectID)
					continue
				}
				return objinfo.ObjectInfo{}, a.err
			}
			if res.Err != nil {
				return objinfo.ObjectInfo{}, res.Err
			}
			return clone(res.Val.(objinfo.ObjectInfo)), nil
		case <-ctx.Done():
			return objinfo.ObjectInfo{}, errors.Wrapf(ctx.Err(), "gave up resolving %s", objectID)
		}
	}
}

// abandoned is the failure of a shared resolution whose starting caller went
// away.  Callers that are still live retry instead of inheriting it.
type abandoned struct {
	err error
}

func (a abandoned) Error() string {
	return a.err.Error()
}

// ResolveAll resolves several objects concurrently.  Results are in the order of
// the given IDs.  The first error cancels the rest.
func (r *Resolver) ResolveAll(ctx context.Context, db objinfo.DB, objectIDs ...string) ([]objinfo.ObjectInfo, error) {
	results := make([]objinfo.ObjectInfo, len(objectIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, id := range objectIDs {
		i, id := i, id
		g.Go(func() error {
			info, err := r.Resolve(ctx, id, db)
			if err != nil {
				return err
			}
			results[i] = info
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Locator returns the mesh locator used for the given backend flavor
func (r *Resolver) Locator(b objinfo.Backend) MeshLocator {
	if l, ok := r.locators[b]; ok {
		return l
	}
	return r.fallback
}

func (r *Resolver) load(ctx context.Context, objectID string, db objinfo.DB) (objinfo.ObjectInfo, error) {
	if db == nil || db.Parameters().Type() == objinfo.Empty {
		return objinfo.ObjectInfo{}, errors.Wrapf(objinfo.ErrNotConfigured, "could not resolve %s", objectID)
	}

	backend := db.Parameters().Type()
	r.log.DebugContext(ctx, "resolving object info", "object_id", objectID, "backend", backend.String())

	info := objinfo.ObjectInfo{ID: objectID}

	// The view should return only one document
	err := db.Query(ctx, objinfo.ObjectInfoByObjectID(objectID), func(doc objinfo.Document) error {
		info.Name = name(doc)
		if doc.HasField(objinfo.FieldMeshURI) {
			info.MeshURI = doc.Field(objinfo.FieldMeshURI)
		}
		return objinfo.StopQuery
	})
	if err != nil {
		return objinfo.ObjectInfo{}, errors.Wrapf(err, "could not read object %s", objectID)
	}

	if info.Name == "" {
		info.Name = objectID
	}

	mesh, err := r.Locator(backend).LocateMesh(ctx, db, objectID)
	if err != nil {
		return objinfo.ObjectInfo{}, errors.Wrapf(err, "could not locate mesh of %s", objectID)
	}

	if mesh.URI != "" {
		info.MeshURI = mesh.URI
	}
	if mesh.Attachment != nil {
		info.MeshAttachment = mesh.Attachment
	}

	if err := r.cache.Put(ctx, objectID, info); err != nil {
		r.log.DebugContext(ctx, "could not cache object info", "object_id", objectID, "err", err)
	}
	r.log.DebugContext(ctx, "object info cached", "object_id", objectID, "name", info.Name, "mesh", info.Mesh())

	return info, nil
}

// object_name is the canonical name field; some documents carry a bare name
func name(doc objinfo.Document) string {
	switch {
	case doc.HasField(objinfo.FieldObjectName):
		return doc.Field(objinfo.FieldObjectName)
	case doc.HasField(objinfo.FieldName):
		return doc.Field(objinfo.FieldName)
	default:
		return ""
	}
}
