package main

import (
	"flag"
	"fmt"
	"io"
)

const defaultAddr = "localhost:8088"

type commandParams struct {
	command     string
	handlerPath string
	fixturePath string
	requestJSON string
	addr        string
	artifactDir string
	debug       bool
}

// Read parses args (including the program name). It reports false after printing
// usage to errOut when the arguments are unusable.
func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "usage: fnmock <run|serve> -handler <file> [flags]")
		return false
	}
	c.command = args[1]

	fs := flag.NewFlagSet(c.command, flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.handlerPath, "handler", "", "path of the event handler to load")
	fs.StringVar(&c.fixturePath, "fixture", "", "JSON or YAML fixture seeding storage, counters, secrets and the request")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")
	fs.StringVar(&c.artifactDir, "artifacts", "", "directory receiving transformed handler source")

	switch c.command {
	case "run":
		fs.StringVar(&c.requestJSON, "request", "", "request object as JSON, overriding the fixture request")
	case "serve":
		fs.StringVar(&c.addr, "addr", defaultAddr, "address to listen on")
	default:
		fmt.Fprintf(errOut, "unknown command %q, expected run or serve\n", c.command)
		return false
	}

	if err := fs.Parse(args[2:]); err != nil {
		return false
	}
	if c.handlerPath == "" {
		fmt.Fprintln(errOut, "-handler is required")
		fs.Usage()
		return false
	}
	return true
}
