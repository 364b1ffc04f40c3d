package cmd

import (
	"context"

	"github.com/omniscale/osmdoc/config"
	"github.com/omniscale/osmdoc/correction"
	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/reference"
)

// Propose writes correction proposals for all street names of the input
// that differ from their closest reference street name.
func Propose(ctx context.Context, opts *config.Options) error {
	r, err := runAudit(ctx, opts)
	if err != nil {
		return err
	}
	log.Printf("[info] Found %d distinct street names", len(r.Streets))

	store, err := reference.OpenStore(opts.CacheDir)
	if err != nil {
		return err
	}
	defer store.Close()

	fetcher := reference.NewFetcher(opts.ReferenceURL, opts.ReferenceTimeout)
	refs, err := reference.Load(ctx, store, fetcher, opts.Refresh)
	if err != nil {
		return err
	}

	proposals := correction.NewMatcher(refs).Propose(r.Streets)
	for _, p := range proposals {
		log.Printf("[debug] %q -> %q (%.2f)", p.Name, p.Match, p.Score)
	}
	if err := correction.SaveProposals(opts.Proposals, opts.ReferenceSource, proposals); err != nil {
		return err
	}
	log.Printf("[info] Wrote %d proposals to %s", len(proposals), opts.Proposals)
	return nil
}
