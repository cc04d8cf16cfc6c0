// Command fnmock loads an event handler against the mock runtime and either invokes
// it once or serves it over HTTP.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/fnmock/fnmock"
	"github.com/fnmock/fnmock/fixture"
	"github.com/fnmock/fnmock/internal/jsval"
	"github.com/fnmock/fnmock/internal/server"
)

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	infoColor = color.New(color.Faint)
)

// errExpectation reports a run whose result differs from the fixture expectation.
var errExpectation = errors.New("result did not match expectation")

func main() {
	var params commandParams
	if !params.Read(os.Args, os.Stderr) {
		os.Exit(2)
	}

	logger, err := newLogger(params.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	switch params.command {
	case "run":
		err = run(params, logger, os.Stdout)
	case "serve":
		err = serve(params, logger)
	}
	if err != nil {
		failColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// prepare loads the handler and applies the fixture, if any.
func prepare(params commandParams, logger *zap.Logger) (*fnmock.Instance, *fixture.Fixture, error) {
	f := &fixture.Fixture{}
	if params.fixturePath != "" {
		var err error
		if f, err = fixture.Load(params.fixturePath); err != nil {
			return nil, nil, err
		}
	}

	loader, err := fnmock.New(fnmock.Config{
		Logger:      logger,
		Secrets:     f.Secrets,
		ArtifactDir: params.artifactDir,
	})
	if err != nil {
		return nil, nil, err
	}

	inst, err := loader.Load(params.handlerPath, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := inst.ApplyFixture(f); err != nil {
		return nil, nil, err
	}
	return inst, f, nil
}

func run(params commandParams, logger *zap.Logger, out io.Writer) error {
	inst, f, err := prepare(params, logger)
	if err != nil {
		return err
	}

	req := fnmock.Request(f.Request)
	if params.requestJSON != "" {
		if err := json.Unmarshal([]byte(params.requestJSON), &req); err != nil {
			return fmt.Errorf("parsing -request: %w", err)
		}
	}

	resp := &fnmock.Response{Status: f.Response.Status, Headers: f.Response.Headers}
	res, err := inst.Call(req, resp)
	if err != nil {
		return err
	}

	body, err := json.Marshal(res.Body)
	if err != nil {
		body = []byte(jsval.String(res.Body))
	}
	infoColor.Fprintf(out, "%s\n", inst.Path())
	fmt.Fprintf(out, "status: %d\nbody: %s\n", res.Status, body)

	if f.Expect == nil {
		return nil
	}
	if f.Expect.Status != nil && *f.Expect.Status != res.Status {
		failColor.Fprintf(out, "FAIL expected status %d\n", *f.Expect.Status)
		return errExpectation
	}
	if f.Expect.Body != nil && !sameJSON(f.Expect.Body, res.Body) {
		failColor.Fprintf(out, "FAIL expected body %v\n", f.Expect.Body)
		return errExpectation
	}
	passColor.Fprintln(out, "PASS")
	return nil
}

// sameJSON compares two values after normalizing both through JSON.
func sameJSON(a, b any) bool {
	var na, nb any
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	if json.Unmarshal(ja, &na) != nil || json.Unmarshal(jb, &nb) != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

func serve(params commandParams, logger *zap.Logger) error {
	inst, _, err := prepare(params, logger)
	if err != nil {
		return err
	}

	s, err := server.New(server.Config{Handler: inst, Logger: logger})
	if err != nil {
		return err
	}

	passColor.Fprintf(os.Stdout, "serving %s on http://%s\n", inst.Path(), params.addr)
	return http.ListenAndServe(params.addr, s) // #nosec G114 -- local development server
}
