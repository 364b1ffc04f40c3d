// Package reference provides the official street names the audited OSM
// street names are compared against.
//
// The names are scraped from the <option> entries of a city street
// directory page and cached in a local badger database, so that repeated
// audits do not hit the remote site.
package reference

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/stats"
	"github.com/omniscale/osmdoc/tracing"
)

const (
	// DefaultURL is the street directory of the city of Göttingen.
	DefaultURL = "http://www.stadtplan.goettingen.de/start/querywin.php4?str=&alph=1"
	// DefaultSource is the name of the reference in correction files.
	DefaultSource    = "Gottingen"
	DefaultUserAgent = "osmdoc/0.1"
	DefaultTimeout   = 30 * time.Second
)

// Fetcher downloads the street names from a street directory page.
type Fetcher struct {
	URL       string
	UserAgent string
	Client    *http.Client
	Limiter   *rate.Limiter
}

// NewFetcher returns a Fetcher for url with a single request per second.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		URL:       url,
		UserAgent: DefaultUserAgent,
		Client:    &http.Client{Timeout: timeout},
		Limiter:   rate.NewLimiter(rate.Limit(1), 1),
	}
}

// Fetch returns the sorted, unique street names of the page.
func (f *Fetcher) Fetch(ctx context.Context) (names []string, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "reference.fetch")
	span.SetAttributes(attribute.String("http.url", f.URL))
	defer func() {
		if err != nil {
			stats.ReferenceFetches.WithLabelValues("error").Inc()
		} else {
			span.SetAttributes(attribute.Int("streets", len(names)))
			stats.ReferenceFetches.WithLabelValues("ok").Inc()
		}
		tracing.End(span, err)
	}()

	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "waiting for rate limit")
		}
	}
	req, err := http.NewRequest("GET", f.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", f.UserAgent)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	log.Printf("[info] Fetching reference street names from %s", f.URL)
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", f.URL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching %s: unexpected status %s", f.URL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parsing street directory")
	}
	return optionValues(doc), nil
}

func optionValues(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var names []string
	doc.Find("option").Each(func(_ int, s *goquery.Selection) {
		v, ok := s.Attr("value")
		if !ok {
			return
		}
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		names = append(names, v)
	})
	sort.Strings(names)
	return names
}
