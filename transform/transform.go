package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrSyntax indicates the source could not be parsed.
var ErrSyntax = errors.New("syntax error")

// Transformer converts handler source into CommonJS.
type Transformer interface {
	Transform(path string, src []byte) ([]byte, error)
}

// Func adapts an ordinary function into a Transformer.
type Func func(path string, src []byte) ([]byte, error)

// Transform calls f.
func (f Func) Transform(path string, src []byte) ([]byte, error) {
	return f(path, src)
}

// Identity returns the source unchanged. It suits handlers already written as CommonJS.
var Identity = Func(func(_ string, src []byte) ([]byte, error) {
	return src, nil
})

// Config controls the esbuild transform.
type Config struct {
	// Target is the language level to lower to. Defaults to api.ES2017.
	Target api.Target

	// Minify strips whitespace and shortens identifiers.
	Minify bool
}

// ESBuild is the default Transformer.
type ESBuild struct {
	opts api.TransformOptions
}

// New creates an ESBuild transformer.
func New(cfg Config) *ESBuild {
	target := cfg.Target
	if target == api.DefaultTarget {
		target = api.ES2017
	}

	return &ESBuild{opts: api.TransformOptions{
		Loader:            api.LoaderJS,
		Format:            api.FormatCommonJS,
		Target:            target,
		Platform:          api.PlatformNeutral,
		MinifyWhitespace:  cfg.Minify,
		MinifyIdentifiers: cfg.Minify,
		MinifySyntax:      cfg.Minify,
	}}
}

// Transform converts src, reporting every esbuild error as one ErrSyntax.
func (e *ESBuild) Transform(path string, src []byte) ([]byte, error) {
	opts := e.opts
	opts.Sourcefile = path

	result := api.Transform(string(src), opts)
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, m := range result.Errors {
			msgs = append(msgs, formatMessage(m))
		}
		return nil, fmt.Errorf("%w: %s", ErrSyntax, strings.Join(msgs, "; "))
	}

	return result.Code, nil
}

func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text)
}
