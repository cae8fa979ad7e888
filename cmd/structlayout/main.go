// Command structlayout generates accessors for explicit struct layouts.
//
// Declarations live in files built only with the layoutgen tag:
//
//	//go:build layoutgen
//
//	package regs
//
//	// @layout size=32 align=4 derive=debug
//	type Regs struct {
//		Status  uint32  `layout:"@0"`
//		Packed  uint32  `layout:"@21,get,set"`
//	}
//
// and a go:generate directive runs the generator for the package:
//
//	//go:generate go run github.com/alexhholmes/structlayout/cmd/structlayout gen
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alexhholmes/structlayout/internal/config"
	"github.com/alexhholmes/structlayout/internal/generate"
)

const usage = `Usage: structlayout <command> [flags] [packages]

Commands:
  gen     generate <file>_layout.go for every declaration file
  check   validate declarations without writing files
  dump    print the validated layouts
  init    write a default ` + config.FileName + `

Run 'structlayout <command> -h' for flags.
`

// errDiagnostics reports that diagnostics were already printed.
var errDiagnostics = errors.New("layout errors")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "gen":
		err = runGenerate(ctx, args, false)
	case "check":
		err = runGenerate(ctx, args, true)
	case "dump":
		err = runDump(ctx, args)
	case "init":
		err = runInit(args)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	case errors.Is(err, errDiagnostics):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the flags shared by every command that loads packages.
type options struct {
	configPath  string
	goarch      string
	tags        string
	suffix      string
	concurrency int
	verbose     bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Config file (default: nearest "+config.FileName+")")
	fs.StringVar(&o.goarch, "goarch", "", "Target architecture for sizes and alignments")
	fs.StringVar(&o.tags, "tags", "", "Extra build tags (comma-separated)")
	fs.StringVar(&o.suffix, "suffix", "", "Output file suffix (default _layout)")
	fs.IntVar(&o.concurrency, "j", 0, "Packages generated in parallel (default GOMAXPROCS)")
	fs.BoolVar(&o.verbose, "v", false, "Verbose logging")
}

// load returns the config file settings with flags applied on top.
func (o *options) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, _, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	if o.goarch != "" {
		cfg.GOARCH = o.goarch
	}
	if o.tags != "" {
		cfg.Tags = append(cfg.Tags, strings.Split(o.tags, ",")...)
	}
	if o.suffix != "" {
		cfg.Suffix = o.suffix
	}
	if o.concurrency > 0 {
		cfg.Concurrency = o.concurrency
	}
	if o.verbose {
		cfg.Verbose = true
	}
	return cfg, cfg.Validate()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.TimeKey = ""
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zcfg.DisableStacktrace = true
	zcfg.DisableCaller = true
	return zcfg.Build()
}

func runGenerate(ctx context.Context, args []string, check bool) error {
	name := "gen"
	if check {
		name = "check"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var opts options
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := opts.load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	generate.SetLogger(log)

	res, err := generate.Run(ctx, generate.Options{
		Config:   cfg,
		Patterns: fs.Args(),
		Check:    check,
	})
	if err != nil {
		return err
	}

	r := newRenderer(os.Stderr)
	for _, d := range res.Diagnostics.Errors {
		r.diagnostic(d)
	}
	if check || res.Diagnostics.HasErrors() {
		r.summary(res)
	}
	if res.Diagnostics.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	force := fs.Bool("f", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(config.FileName); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -f to overwrite)", config.FileName)
	}
	if err := config.WriteFile(config.Default(), config.FileName); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", config.FileName)
	return nil
}
