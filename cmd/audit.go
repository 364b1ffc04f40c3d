package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/omniscale/osmdoc/config"
	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/pipeline"
	"github.com/omniscale/osmdoc/report"
	"github.com/omniscale/osmdoc/stats"
)

// runAudit audits the input of opts. An interrupted run still returns
// the report of all elements read so far.
func runAudit(ctx context.Context, opts *config.Options) (*pipeline.AuditReport, error) {
	src, err := pipeline.Open(ctx, opts.Input)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	defer log.Step("Auditing " + opts.Input)()
	progress := stats.StatsReporter(time.Second)
	r, err := pipeline.Audit(ctx, src, pipeline.AuditOptions{
		PhoneKeys:    opts.PhoneAudit,
		PhonePattern: opts.PhonePattern,
		Progress:     progress,
	})
	progress.Stop()
	if err != nil && r != nil && errors.Cause(err) == ctx.Err() {
		log.Printf("[warn] audit interrupted after %d elements, report is incomplete", r.Elements)
	}
	return r, err
}

// Audit writes the audit report of the input.
func Audit(ctx context.Context, opts *config.Options) error {
	r, err := runAudit(ctx, opts)
	if r == nil {
		return err
	}

	var out io.Writer = os.Stdout
	if opts.Output != "" && opts.Output != "-" {
		f, ferr := os.Create(opts.Output)
		if ferr != nil {
			return errors.Wrap(ferr, "creating report")
		}
		defer f.Close()
		out = f
	}
	if werr := report.WriteAudit(out, r, opts.Report); werr != nil {
		return werr
	}
	return err
}
