package fnmock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/fnmock/fnmock/kvstore"
	"github.com/fnmock/fnmock/logging"
	"github.com/fnmock/fnmock/pubnub"
	"github.com/fnmock/fnmock/transform"
	"github.com/fnmock/fnmock/vault"
	"github.com/fnmock/fnmock/xhr"
)

// Config provides configuration options for a Loader. The zero value is usable.
type Config struct {
	// Transformer rewrites handler source before compilation. Defaults to an esbuild
	// ES module to CommonJS transform.
	Transformer transform.Transformer

	// Logger receives loader events and handler console output. Defaults to a no-op
	// logger.
	Logger *zap.Logger

	// XHR configures the default fetch client.
	XHR xhr.Config

	// Fetcher replaces the fetch client behind the xhr module entirely.
	Fetcher xhr.Client

	// Clock supplies timetokens for the pubnub module. Defaults to time.Now.
	Clock func() time.Time

	// Secrets seeds the vault module of every instance.
	Secrets map[string]string

	// ArtifactDir, when set, receives a copy of each transformed handler.
	ArtifactDir string
}

// Loader loads handler files into Instances.
type Loader struct {
	cfg   Config
	log   *zap.Logger
	fetch xhr.Client
}

// New creates a Loader, filling in defaults for unset Config fields.
func New(cfg Config) (*Loader, error) {
	l := &Loader{cfg: cfg, log: cfg.Logger, fetch: cfg.Fetcher}

	if l.log == nil {
		l.log = zap.NewNop()
	}

	if l.cfg.Transformer == nil {
		l.cfg.Transformer = transform.New(transform.Config{})
	}

	if l.fetch == nil {
		c, err := xhr.New(cfg.XHR)
		if err != nil {
			return nil, fmt.Errorf("creating fetch client: %w", err)
		}
		l.fetch = c
	}

	return l, nil
}

// Load loads the handler at path with a default Loader.
func Load(path string, overrides Modules) (*Instance, error) {
	l, err := New(Config{})
	if err != nil {
		return nil, err
	}
	return l.Load(path, overrides)
}

// Load reads, transforms and binds the handler at path. overrides replace default
// modules before any handler code runs.
func (l *Loader) Load(path string, overrides Modules) (*Instance, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: handler path cannot be empty", ErrInvalidArgument)
	}
	if err := overrides.validate(); err != nil {
		return nil, err
	}

	log := l.log.With(zap.String("handler", path))

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}

	code, err := l.cfg.Transformer.Transform(path, src)
	if err != nil {
		return nil, errors.Join(ErrTransform, err)
	}
	log.Debug("transformed handler", zap.Int("source_bytes", len(src)), zap.Int("output_bytes", len(code)))

	artifact, err := l.writeArtifact(path, code)
	if err != nil {
		return nil, err
	}

	prg, err := goja.Compile(path, wrap(code), false)
	if err != nil {
		return nil, errors.Join(ErrTransform, err)
	}

	inst, err := l.bind(path, prg, overrides, log)
	if err != nil {
		return nil, err
	}
	inst.artifact = artifact

	log.Debug("loaded handler", zap.Strings("modules", inst.registry.Names()))
	return inst, nil
}

// wrap turns CommonJS source into a function expression receiving its module scope.
func wrap(code []byte) string {
	var b strings.Builder
	b.WriteString("(function (exports, require, module, __filename, __dirname) {\n")
	b.Write(code)
	b.WriteString("\n})")
	return b.String()
}

func (l *Loader) writeArtifact(path string, code []byte) (string, error) {
	if l.cfg.ArtifactDir == "" {
		return "", nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	f, err := os.CreateTemp(l.cfg.ArtifactDir, base+"-*.js")
	if err != nil {
		return "", fmt.Errorf("creating artifact: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(code); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return f.Name(), nil
}

// bind creates the runtime and mock state for one Instance and evaluates the module.
func (l *Loader) bind(path string, prg *goja.Program, overrides Modules, log *zap.Logger) (*Instance, error) {
	vm := goja.New()

	env := &Env{
		vm:     vm,
		log:    log,
		store:  kvstore.New(kvstore.Config{}),
		pubnub: pubnub.New(pubnub.Config{Clock: l.cfg.Clock}),
		vault:  vault.New(vault.Config{Secrets: l.cfg.Secrets}),
		fetch:  l.fetch,
	}
	env.registry = newRegistry(env, DefaultModules())
	for name, m := range overrides {
		env.registry.Set(name, m)
		log.Debug("module overridden at load", zap.String("module", name))
	}

	console, err := logging.New(logging.Config{Logger: l.log, Handler: path})
	if err != nil {
		return nil, err
	}
	if err := installConsole(env, console); err != nil {
		return nil, err
	}

	fnVal, err := vm.RunProgram(prg)
	if err != nil {
		return nil, errors.Join(ErrTransform, err)
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("%w: module wrapper is not a function", ErrTransform)
	}

	exports := vm.NewObject()
	module := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if _, err := fn(goja.Undefined(),
		exports,
		vm.ToValue(env.require),
		module,
		vm.ToValue(abs),
		vm.ToValue(filepath.Dir(abs)),
	); err != nil {
		return nil, errors.Join(ErrInvalidHandler, env.failure(err))
	}

	handler, err := handlerExport(module.Get("exports"))
	if err != nil {
		return nil, err
	}

	return &Instance{
		path:     path,
		env:      env,
		registry: env.registry,
		handler:  handler,
		log:      log,
	}, nil
}

// handlerExport picks the handler function out of module.exports.
func handlerExport(exports goja.Value) (goja.Callable, error) {
	if fn, ok := goja.AssertFunction(exports); ok {
		return fn, nil
	}

	if obj, ok := exports.(*goja.Object); ok {
		if fn, ok := goja.AssertFunction(obj.Get("default")); ok {
			return fn, nil
		}
	}

	return nil, ErrInvalidHandler
}
