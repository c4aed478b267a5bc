package main

import (
	"log"
	"os"
	"strings"

	"github.com/birkland/objinfo"
	"github.com/birkland/objinfo/drivers"
	"github.com/birkland/objinfo/resolv"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var mainOpts = struct {
	db        string
	dbFile    string
	logLevel  string
	logFormat string
}{}

func main() {
	app := cli.NewApp()
	app.Name = "objinfo"
	app.Usage = "Object metadata commandline utilities"
	app.EnableBashCompletion = true
	app.Commands = []cli.Command{
		resolve,
		show,
		params,
	}
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "db, d",
			Usage:       "Object database parameters, as JSON (e.g. {\"type\":\"CouchDB\",\"root\":\"http://localhost:5984\",\"collection\":\"models\"})",
			EnvVar:      "OBJINFO_DB",
			Destination: &mainOpts.db,
		},
		cli.StringFlag{
			Name:        "db-file",
			Usage:       "File containing object database parameters, as JSON.  Overrides --db",
			Destination: &mainOpts.dbFile,
		},
		cli.StringFlag{
			Name:        "loglevel",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "warn",
			Destination: &mainOpts.logLevel,
		},
		cli.StringFlag{
			Name:        "logformat",
			Usage:       "Log format (text, json)",
			Value:       "text",
			Destination: &mainOpts.logFormat,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func dbParams() (objinfo.Params, error) {
	if mainOpts.dbFile == "" {
		p, err := objinfo.ParseParamsString(mainOpts.db)
		return p, errors.Wrapf(err, "could not parse --db")
	}

	f, err := os.Open(mainOpts.dbFile)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open db file")
	}
	defer f.Close()

	p, err := objinfo.ParseParams(f)
	return p, errors.Wrapf(err, "could not parse db file %s", mainOpts.dbFile)
}

func openDB() (objinfo.DB, error) {
	p, err := dbParams()
	if err != nil {
		return nil, err
	}

	return drivers.Open(p)
}

// Cached entries are namespaced by the database they came from
func newResolver(db objinfo.DB) (*resolv.Resolver, error) {
	logger, err := newLogger(os.Stderr, mainOpts.logLevel, mainOpts.logFormat)
	if err != nil {
		return nil, err
	}

	return resolv.NewResolver(
		resolv.WithLogger(logger),
		resolv.WithCache(resolv.NewDatastoreCache(nil, db.Parameters().Identity())),
	), nil
}

func columns(vals ...string) string {
	return strings.Join(vals, "    ")
}
