package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/birkland/objinfo"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var show cli.Command = cli.Command{
	Name:  "show",
	Usage: "Show the documents an object resolves from",
	Description: `Given an object ID, print the object document and the mesh model
	documents that the database views return for it, one JSON document per
	line, in view order.  Nothing is cached.`,
	ArgsUsage: "id",

	Action: func(c *cli.Context) error {
		if len(c.Args()) != 1 {
			return fmt.Errorf("show takes exactly one argument")
		}

		db, err := openDB()
		if err != nil {
			return err
		}

		return showAction(context.Background(), os.Stdout, db, c.Args().First())
	},
}

// Fields the resolver reads, in display order
var shownFields = []string{
	objinfo.FieldID,
	objinfo.FieldType,
	objinfo.FieldObjectID,
	objinfo.FieldModelType,
	objinfo.FieldObjectName,
	objinfo.FieldName,
	objinfo.FieldMeshURI,
}

func showAction(ctx context.Context, w io.Writer, db objinfo.DB, id string) error {
	if db.Parameters().Type() == objinfo.Empty {
		return errors.Wrapf(objinfo.ErrNotConfigured, "could not show %s", id)
	}

	enc := json.NewEncoder(w)
	emit := func(view string) objinfo.QueryFunc {
		return func(doc objinfo.Document) error {
			out := map[string]interface{}{"view": view}
			for _, f := range shownFields {
				if doc.HasField(f) {
					out[f] = doc.Field(f)
				}
			}
			if doc.HasAttachment(objinfo.AttachmentMesh) {
				out["_attachments"] = []string{objinfo.AttachmentMesh}
			}
			return enc.Encode(out)
		}
	}

	for _, v := range []objinfo.View{
		objinfo.ObjectInfoByObjectID(id),
		objinfo.ModelByObjectIDAndType(objinfo.ModelTypeMesh, id),
	} {
		if err := db.Query(ctx, v, emit(v.Name)); err != nil {
			return errors.Wrapf(err, "could not query %s", v.Name)
		}
	}

	return nil
}
