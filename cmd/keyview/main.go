// Command keyview shows decoded terminal events as they arrive.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/lixenwraith/rawterm/backend"
	"github.com/lixenwraith/rawterm/bell"
	"github.com/lixenwraith/rawterm/config"
	"github.com/lixenwraith/rawterm/terminal"
)

// options holds parsed flags; set records which were given explicitly
type options struct {
	configPath string
	engine     string
	timeout    time.Duration
	debug      bool
	bell       bool
	set        map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("keyview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	fs.StringVar(&o.engine, "engine", "", fmt.Sprintf("Terminal engine: %v", backend.Names()))
	fs.DurationVar(&o.timeout, "timeout", 0, "Event wait before a tick; 0 blocks")
	fs.BoolVar(&o.debug, "debug", false, "Write a debug log under the log dir")
	fs.BoolVar(&o.bell, "bell", false, "Ring on unmapped input")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// applyFlags overrides config values with explicitly given flags
func applyFlags(cfg *config.Config, o *options) {
	if o.set["engine"] {
		cfg.Engine = o.engine
	}
	if o.set["timeout"] {
		cfg.PollTimeoutMs = int(o.timeout / time.Millisecond)
	}
	if o.set["debug"] {
		cfg.Log.Debug = o.debug
	}
	if o.set["bell"] {
		cfg.Bell.Enabled = o.bell
	}
}

func newViewer(cfg *config.Config, b *bell.Bell) *viewer {
	v := &viewer{engine: cfg.Engine, bell: b}
	v.apply(cfg)
	return v
}

func run(args []string) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	applyFlags(cfg, o)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	logDir = cfg.Log.Dir
	maxLogSize = cfg.Log.MaxSize
	if logFile := setupLogging(cfg.Log.Debug); logFile != nil {
		defer logFile.Close()
	}
	log.Printf("keyview start: engine=%s timeout=%v config=%s", cfg.Engine, cfg.PollTimeout(), path)

	b, err := bell.New(bell.Config{
		Enabled:   cfg.Bell.Enabled,
		Frequency: cfg.Bell.Frequency,
		Duration:  cfg.BellDuration(),
		Volume:    cfg.Bell.Volume,
	})
	if err != nil {
		// Non-fatal, continue without sound
		log.Printf("%v", err)
	}
	defer b.Close()

	engine, err := backend.New(cfg.Engine, backend.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	v := newViewer(cfg, b)
	if w, err := config.Watch(path); err != nil {
		// Non-fatal, no live reload
		log.Printf("config watch: %v", err)
	} else {
		defer w.Close()
		v.reloads, v.reloadErrs = w.Updates(), w.Errors()
		v.overrides = func(c *config.Config) { applyFlags(c, o) }
	}

	if err := terminal.Run(engine, v.run); err != nil {
		return fmt.Errorf("%s engine: %w", cfg.Engine, err)
	}
	log.Printf("keyview exit")
	return nil
}

func main() {
	// Panic recovery: the session is already closed by Run, restore anything left over
	defer func() {
		if r := recover(); r != nil {
			backend.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\n\x1b[31mKEYVIEW CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "keyview: %v\n", err)
		os.Exit(1)
	}
}
