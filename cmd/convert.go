package cmd

import (
	"context"
	"os"
	"time"

	"github.com/omniscale/osmdoc/config"
	"github.com/omniscale/osmdoc/correction"
	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/phone"
	"github.com/omniscale/osmdoc/pipeline"
	"github.com/omniscale/osmdoc/report"
	"github.com/omniscale/osmdoc/stats"
	"github.com/omniscale/osmdoc/street"
	"github.com/omniscale/osmdoc/writer"
)

func openSinks(ctx context.Context, opts *config.Options) (writer.Multi, error) {
	var sinks writer.Multi
	jl, err := writer.CreateJSONLines(opts.Output, opts.Pretty)
	if err != nil {
		return nil, err
	}
	sinks = append(sinks, jl)

	if opts.Postgres != "" {
		pg, err := writer.OpenPostgres(opts.Postgres, opts.PostgresSchema, opts.PostgresTable)
		if err != nil {
			sinks.Abort()
			return nil, err
		}
		sinks = append(sinks, pg)
	}
	if opts.Mongo != "" {
		m, err := writer.OpenMongo(ctx, opts.Mongo, opts.MongoDatabase, opts.MongoCollection)
		if err != nil {
			sinks.Abort()
			return nil, err
		}
		sinks = append(sinks, m)
	}
	return sinks, nil
}

// Convert writes the normalized and corrected documents of all nodes and
// ways of the input.
func Convert(ctx context.Context, opts *config.Options) error {
	var corrections street.Corrections
	if opts.Corrections != "" {
		m, err := correction.Load(opts.Corrections)
		if err != nil {
			return err
		}
		log.Printf("[info] Loaded %d approved corrections from %s", len(m), opts.Corrections)
		corrections = m
	}

	phones, err := phone.NewNormalizer(phone.Options{
		Region:    opts.PhoneRegion,
		Keys:      opts.PhoneKeys,
		Sentinels: opts.PhoneSentinels,
		Policy:    opts.PhonePolicy,
	})
	if err != nil {
		return err
	}

	src, err := pipeline.Open(ctx, opts.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	sinks, err := openSinks(ctx, opts)
	if err != nil {
		return err
	}

	step := log.Step("Converting " + opts.Input)
	progress := stats.StatsReporter(time.Second)
	st, err := pipeline.Convert(ctx, src, sinks, pipeline.ConvertOptions{
		Corrections: corrections,
		Phones:      phones,
		Progress:    progress,
	})
	progress.Stop()
	if err != nil {
		sinks.Abort()
		return err
	}
	if err := sinks.Close(); err != nil {
		return err
	}
	step()

	if opts.Output != "-" {
		return report.WriteConvert(os.Stdout, st, report.Text)
	}
	return nil
}
