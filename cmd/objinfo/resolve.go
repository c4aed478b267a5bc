package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/birkland/objinfo"
	"github.com/birkland/objinfo/resolv"
	"github.com/urfave/cli"
)

var resolveOpts = struct {
	json bool
}{}

var resolve cli.Command = cli.Command{
	Name:  "resolve",
	Usage: "Resolve the name and mesh location of objects",
	Description: `Given one or more object IDs, look up each object's name and the
	location of its mesh in the object database given by --db or --db-file.

	Objects are resolved concurrently, and printed in the order given as

	  <id>    <name>    <mesh>

	where <mesh> is a URI, "attachment:mesh" for meshes stored inline
	with their model, or "-" when no mesh was found.  With --json, each
	object is printed as a JSON document instead.`,
	ArgsUsage: "id...",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:        "json, j",
			Usage:       "Print objects as JSON",
			Destination: &resolveOpts.json,
		},
	},

	Action: func(c *cli.Context) error {
		if len(c.Args()) == 0 {
			return fmt.Errorf("no object IDs given")
		}

		db, err := openDB()
		if err != nil {
			return err
		}

		r, err := newResolver(db)
		if err != nil {
			return err
		}

		return resolveAction(context.Background(), os.Stdout, r, db, resolveOpts.json, c.Args()...)
	},
}

func resolveAction(ctx context.Context, w io.Writer, r *resolv.Resolver, db objinfo.DB, asJSON bool, ids ...string) error {
	infos, err := r.ResolveAll(ctx, db, ids...)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, info := range infos {
		if asJSON {
			if err := enc.Encode(info); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(w, columns(info.ID, info.Name, info.Mesh()))
	}

	return nil
}
