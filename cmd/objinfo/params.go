package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/birkland/objinfo"
	"github.com/urfave/cli"
)

var params cli.Command = cli.Command{
	Name:  "params",
	Usage: "Print the object database parameters",
	Description: `Print the backend flavor and parameters given by --db, --db-file,
	or the OBJINFO_DB environment variable, as they will be understood by
	the other commands.`,

	Action: func(c *cli.Context) error {
		p, err := dbParams()
		if err != nil {
			return err
		}
		return paramsAction(os.Stdout, p)
	},
}

func paramsAction(w io.Writer, p objinfo.Params) error {
	fmt.Fprintln(w, columns("type", p.Type().String()))
	fmt.Fprintln(w, columns("identity", p.Identity()))

	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	return nil
}
