package fs

import (
	"context"
	"os"

	"github.com/birkland/objinfo"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
)

const (
	dontGoDeeper = true
	goDeeper     = false
)

// Query executes a view against the collection.
//
// Uses a two-step algorithm for finding documents:
// (a) when the view is keyed by _id, go straight to the document directory
// (b) otherwise, walk directories in lexical order until document directories are
// found, and match each document against the view.  Documents that cannot be
// read are skipped.
func (d *Driver) Query(ctx context.Context, v objinfo.View, f objinfo.QueryFunc) error {
	var err error

	if v.Name == objinfo.ViewObjectInfoByObjectID {
		err = d.lookup(ctx, v, f)
	} else {
		err = d.walk(ctx, v, f)
	}

	if objinfo.IsStop(err) {
		return nil
	}
	return errors.Wrapf(err, "error querying %s for %s", v.Name, v.Key)
}

// The easy way.  Use the path generator to find the document directory, and see
// if the document there matches.
func (d *Driver) lookup(ctx context.Context, v objinfo.View, f objinfo.QueryFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := d.DocumentDir(v.Key)

	found, err := isDocumentDir(dir)
	if err != nil || !found {
		return err
	}

	doc, err := ReadDocument(dir)
	if err != nil {
		return err
	}

	if !v.Matches(doc.Field) {
		return nil
	}

	return f(document{Document: doc, dir: dir})
}

// The "hard" way.  Brute force look for matching documents
func (d *Driver) walk(ctx context.Context, v objinfo.View, f objinfo.QueryFunc) error {
	var stopped bool

	err := fsWalk(d.dir, func(ospath string, e *godirwalk.Dirent) (bool, error) {
		if err := ctx.Err(); err != nil {
			return dontGoDeeper, err
		}

		// We don't care about regular files
		if !e.IsDir() && !e.IsSymlink() {
			return dontGoDeeper, nil
		}

		isDoc, err := isDocumentDir(ospath)
		if err != nil {
			return dontGoDeeper, err
		}

		if !isDoc {
			return goDeeper, nil
		}

		// A document?  Nothing below it but attachments
		doc, err := ReadDocument(ospath)
		if err != nil {
			d.cfg.Logger.WarnContext(ctx, "skipping unreadable document", "dir", ospath, "err", err)
			return dontGoDeeper, nil
		}

		if v.Matches(doc.Field) {
			err = f(document{Document: doc, dir: ospath})
			stopped = objinfo.IsStop(err)
			return dontGoDeeper, err
		}

		return dontGoDeeper, nil
	})

	if stopped {
		return objinfo.StopQuery
	}
	return err
}

type skip struct {
	action godirwalk.ErrorAction
}

func (skip) Error() string {
	return "node is skipped"
}

// Callback to be invoked each time a fs entry is encountered.
// Returns a Boolean indicating whether the current fs entry should be a
// considered a terminal (leaf) node.  If true, any children will not be
// walked.  Any error will terminate a walk entirely.
type fsCallback func(ospath string, e *godirwalk.Dirent) (terminal bool, err error)

func fsWalk(dir string, f fsCallback) error {

	if _, err := os.Stat(dir); err != nil {
		return errors.Wrapf(err, "error walking directory %s", dir)
	}

	return godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(ospath string, dirent *godirwalk.Dirent) error {
			terminal, err := f(ospath, dirent)
			if err != nil {
				return errors.Wrap(err, "terminating walk")
			}
			if terminal {
				return skip{godirwalk.SkipNode}
			}
			return nil
		},
		ErrorCallback: func(ospath string, err error) godirwalk.ErrorAction {
			s, skip := errors.Cause(err).(skip)
			if skip {
				return s.action
			}

			return godirwalk.Halt
		},
		FollowSymbolicLinks: true,
	},
	)
}
