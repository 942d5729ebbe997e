package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"golang.org/x/xerrors"

	"github.com/ceph/releasedocs/config"
	"github.com/ceph/releasedocs/directive"
	"github.com/ceph/releasedocs/docbuild"
	"github.com/ceph/releasedocs/export"
	"github.com/ceph/releasedocs/fetch"
	"github.com/ceph/releasedocs/releases"
	"github.com/ceph/releasedocs/table"
	"github.com/ceph/releasedocs/watch"
)

var (
	target     = flag.StringP("target", "t", "", "target (render, build, watch, export, lint, fetch)")
	configFile = flag.StringP("config", "c", config.FileName, "config file")
	product    = flag.String("product", "", "product name used in version labels")
	name       = flag.String("directive", directive.SummaryName, "directive to render (render only)")
	format     = flag.StringP("format", "f", string(table.FormatTerminal), "output format of render (rst, list, md, html, term)")
	srcDir     = flag.String("src", "", "documentation source directory")
	outDir     = flag.StringP("out", "o", "", "output directory")
	html       = flag.Bool("html", false, "also convert Markdown documents to HTML (build and watch)")
	gz         = flag.Bool("gzip", false, "also write releases.json.gz (export only)")
	progress   = flag.Bool("progress", false, "show a progress bar while building")
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	args := flag.Args()
	switch *target {
	case "render":
		if err = render(os.Stdout, afero.NewOsFs(), cfg, *name, table.Format(*format), args); err != nil {
			return xerrors.Errorf("render error: %w", err)
		}
	case "build":
		b, err := newBuilder(cfg)
		if err != nil {
			return err
		}
		if _, err = b.Build(ctx); err != nil {
			return xerrors.Errorf("build error: %w", err)
		}
	case "watch":
		b, err := newBuilder(cfg)
		if err != nil {
			return err
		}
		log.Printf("Watching %s", cfg.SrcDir)
		if err = watch.New(b).Run(ctx); err != nil {
			return xerrors.Errorf("watch error: %w", err)
		}
	case "export":
		if len(args) != 1 {
			return xerrors.New("export expects the releases file")
		}
		ec := export.NewConfig(cfg.OutDir, export.WithGzip(cfg.Gzip))
		written, err := ec.Export(args[0])
		if err != nil {
			return xerrors.Errorf("export error: %w", err)
		}
		for _, path := range written {
			log.Printf("Wrote %s", path)
		}
	case "lint":
		if len(args) != 1 {
			return xerrors.New("lint expects the releases file")
		}
		if err = lint(os.Stdout, afero.NewOsFs(), args[0]); err != nil {
			return xerrors.Errorf("lint error: %w", err)
		}
	case "fetch":
		if len(args) != 2 {
			return xerrors.New("fetch expects a source and a destination")
		}
		if _, err = fetch.NewConfig(args[0], args[1]).Fetch(ctx); err != nil {
			return xerrors.Errorf("fetch error: %w", err)
		}
	default:
		return xerrors.Errorf("unknown target %q", *target)
	}

	return nil
}

// loadConfig layers the config file, the environment and then any flags
// given on the command line.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(afero.NewOsFs(), *configFile, flag.CommandLine.Changed("config"))
	if err != nil {
		return config.Config{}, xerrors.Errorf("config error: %w", err)
	}

	if flag.CommandLine.Changed("product") {
		cfg.Product = *product
	}
	if flag.CommandLine.Changed("src") {
		cfg.SrcDir = *srcDir
	}
	if flag.CommandLine.Changed("out") {
		cfg.OutDir = *outDir
	}
	if flag.CommandLine.Changed("html") {
		cfg.HTML = *html
	}
	if flag.CommandLine.Changed("gzip") {
		cfg.Gzip = *gz
	}
	if err = cfg.Validate(); err != nil {
		return config.Config{}, xerrors.Errorf("config error: %w", err)
	}
	return cfg, nil
}

func newRegistry(fs afero.Fs, cfg config.Config) (*directive.Registry, error) {
	reg := directive.NewRegistry()
	rd := directive.NewRenderer(directive.WithFs(fs), directive.WithProduct(cfg.Product))
	if err := directive.Register(reg, rd, cfg.Names()); err != nil {
		return nil, xerrors.Errorf("unable to register directives: %w", err)
	}
	return reg, nil
}

func newBuilder(cfg config.Config) (*docbuild.Builder, error) {
	reg, err := newRegistry(afero.NewOsFs(), cfg)
	if err != nil {
		return nil, err
	}
	return docbuild.NewBuilder(reg, cfg.SrcDir, cfg.OutDir,
		docbuild.WithPatterns(cfg.Patterns),
		docbuild.WithHTML(cfg.HTML),
		docbuild.WithProgress(*progress),
	), nil
}

// render runs a single directive with args and writes the result to out.
// A warning result is written too, and then returned as an error.
func render(out io.Writer, fs afero.Fs, cfg config.Config, name string, format table.Format, args []string) error {
	w, err := table.NewWriter(format)
	if err != nil {
		return err
	}
	reg, err := newRegistry(fs, cfg)
	if err != nil {
		return err
	}

	// Paths on the command line are relative to the working directory.
	env := directive.Env{SrcDir: "."}
	if len(args) > 0 && filepath.IsAbs(args[0]) {
		env.SrcDir = string(filepath.Separator)
	}
	res, err := reg.Run(env, directive.Invocation{
		Name:     name,
		Args:     args,
		Location: table.Location{File: "<command line>"},
	})
	if err != nil {
		return err
	}

	rendered, err := table.Render(w, res)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprint(out, rendered); err != nil {
		return err
	}
	if res.Warning != nil {
		return xerrors.New(res.Warning.Message)
	}
	return nil
}

// lint writes one line per finding and fails when there is any.
func lint(out io.Writer, fs afero.Fs, path string) error {
	rels, err := releases.NewLoader(releases.WithFs(fs)).Load(path)
	if err != nil {
		return err
	}
	findings := releases.Lint(rels)
	for _, f := range findings {
		fmt.Fprintln(out, f)
	}
	log.Printf("%d release lines, %d point releases, %d findings",
		len(rels.Lines), rels.PointReleaseCount(), len(findings))
	if len(findings) > 0 {
		return xerrors.Errorf("%d findings in %s", len(findings), path)
	}
	return nil
}
