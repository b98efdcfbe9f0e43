package backend

import (
	"io"
	"log"
	"sort"

	"github.com/pkg/errors"

	"github.com/lixenwraith/rawterm/terminal"
)

// Init failure causes, reduced to the engine's numeric codes by codeFor
var (
	errUnsupported = errors.New("terminal not supported")
	errOpenTty     = errors.New("failed to open tty")
	errPipeTrap    = errors.New("failed to create wake pipe")
)

// ErrUnknownBackend is returned by New for an unregistered engine name
var ErrUnknownBackend = errors.New("backend: unknown engine")

// Option configures an engine
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger used for init and I/O diagnostics. Default discards output
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var constructors = map[string]func(...Option) terminal.Engine{
	"tcell": func(opts ...Option) terminal.Engine { return NewTcell(opts...) },
	"ansi":  func(opts ...Option) terminal.Engine { return NewANSI(opts...) },
}

// New creates the engine registered under name
func New(name string, opts ...Option) (terminal.Engine, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", name)
	}
	return ctor(opts...), nil
}

// Names lists the registered engine names in sorted order
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// codeFor maps an init error to its engine result code
func codeFor(err error) int {
	switch {
	case err == nil:
		return terminal.CodeOK
	case errors.Is(err, errUnsupported):
		return terminal.CodeUnsupportedTerminal
	case errors.Is(err, errOpenTty):
		return terminal.CodeFailedToOpenTty
	case errors.Is(err, errPipeTrap):
		return terminal.CodePipeTrapError
	}
	return terminal.CodeUnknown
}
