// Package cmd implements the osmdoc commands.
package cmd

import (
	"context"
	"flag"
	"fmt"
	golog "log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/omniscale/osmdoc"
	"github.com/omniscale/osmdoc/config"
	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/stats"
	"github.com/omniscale/osmdoc/tracing"
)

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Available commands:")
	fmt.Fprintln(os.Stderr, "\taudit")
	fmt.Fprintln(os.Stderr, "\tpropose")
	fmt.Fprintln(os.Stderr, "\tconvert")
	fmt.Fprintln(os.Stderr, "\tvalidate")
	fmt.Fprintln(os.Stderr, "\tversion")
}

type command func(ctx context.Context, opts *config.Options) error

var commands = map[string]command{
	config.Audit:    Audit,
	config.Propose:  Propose,
	config.Convert:  Convert,
	config.Validate: Validate,
}

func Main(usage func()) {
	golog.SetFlags(0)

	if len(os.Args) <= 1 {
		usage()
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "version" {
		fmt.Printf("%s %s(%s-%s)\n", osmdoc.Version, runtime.Version(), runtime.GOARCH, runtime.GOOS)
		os.Exit(0)
	}
	run, ok := commands[name]
	if !ok {
		usage()
		log.Fatalf("[fatal] invalid command: '%s'", name)
	}

	opts, err := config.Parse(name, os.Args[2:])
	if err == flag.ErrHelp {
		os.Exit(2)
	}
	if err != nil {
		if errs, ok := err.(config.Errors); ok {
			fmt.Fprintln(os.Stderr, "errors in config/options:")
			for _, err := range errs {
				fmt.Fprintf(os.Stderr, "\t%s\n", err)
			}
			fmt.Fprintf(os.Stderr, "\nUsage: %s %s [args]\n\n", os.Args[0], name)
			if flags, err := config.NewFlagSet(name, &config.Options{}); err == nil {
				flags.PrintDefaults()
			}
			os.Exit(1)
		}
		log.Fatalf("[fatal] %s", err)
	}
	log.Configure(opts.Quiet, opts.Debug)

	if opts.Httpprofile != "" {
		stats.StartHttpPProf(opts.Httpprofile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	shutdown, err := tracing.Init(ctx, osmdoc.Version)
	if err != nil {
		log.Fatalf("[fatal] %s", err)
	}

	err = run(ctx, opts)
	stop()
	if serr := shutdown(context.Background()); serr != nil {
		log.Printf("[warn] flushing traces: %s", serr)
	}
	if err != nil {
		log.Fatalf("[fatal] %s", err)
	}
	os.Exit(0)
}
