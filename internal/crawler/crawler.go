// Package crawler performs one full crawl of the funding database and
// produces the batch of fingerprinted records for the merge engine. All
// records of a run are buffered into one batch: absence from the batch
// is the deletion signal downstream, so a partial crawl must fail the
// run rather than merge.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	colly "github.com/gocolly/colly/v2"

	"github.com/foerderdata/fundwatch/internal/config"
	"github.com/foerderdata/fundwatch/internal/domain"
	"github.com/foerderdata/fundwatch/internal/extract"
	"github.com/foerderdata/fundwatch/internal/fingerprint"
	"github.com/foerderdata/fundwatch/internal/identity"
	"github.com/foerderdata/fundwatch/internal/logger"
)

// Source page selectors.
const (
	selectorProgramLink = "div.card--fundingprogram > p.card--title > a[href]"
	selectorNextPage    = "div.pagination a.forward.button[href]"
)

// RandomDelayDivisor derives the collector's random delay from the rate limit.
const RandomDelayDivisor = 2

// Crawler crawls listing pages, follows program detail links and
// extracts one record per program. The link collector discovers detail
// URLs and pagination; a cloned detail collector fetches program pages
// (multi-collector pattern).
type Crawler struct {
	cfg       config.CrawlerConfig
	extractor *extract.Extractor
	log       logger.Interface

	mu        sync.Mutex
	batch     []domain.Program
	seen      map[string]struct{}
	listPages int
	fatalErr  error
}

// New creates a crawler for the configured source.
func New(cfg config.CrawlerConfig, log logger.Interface) *Crawler {
	return &Crawler{
		cfg:       cfg,
		extractor: extract.NewExtractor(),
		log:       log.WithComponent("crawler"),
	}
}

// Run performs one full crawl and returns the deduplicated batch of
// fingerprinted records. Unknown field categories on any page abort the
// run; per-record problems (thin content, degenerate identity) are
// counted on stats and the crawl continues.
func (c *Crawler) Run(ctx context.Context, stats *domain.RunStats) ([]domain.Program, error) {
	c.mu.Lock()
	c.batch = nil
	c.seen = make(map[string]struct{})
	c.listPages = 0
	c.fatalErr = nil
	c.mu.Unlock()

	listCollector, err := c.newCollector()
	if err != nil {
		return nil, err
	}
	// Clone copies configuration but not callbacks or limit rules.
	detailCollector := listCollector.Clone()
	if limitErr := detailCollector.Limit(c.limitRule()); limitErr != nil {
		return nil, fmt.Errorf("crawl: set limit rule: %w", limitErr)
	}

	c.setupAborts(ctx, listCollector)
	c.setupAborts(ctx, detailCollector)

	listCollector.OnResponse(func(r *colly.Response) {
		stats.IncrListPages()
	})

	listCollector.OnHTML(selectorProgramLink, func(e *colly.HTMLElement) {
		c.handleProgramLink(e, detailCollector, stats)
	})

	listCollector.OnHTML(selectorNextPage, func(e *colly.HTMLElement) {
		c.handleNextPage(e)
	})

	detailCollector.OnResponse(func(r *colly.Response) {
		stats.IncrDetailPages()
		c.handleDetailPage(r, stats)
	})

	onError := func(r *colly.Response, visitErr error) {
		stats.IncrFetchErrors()
		c.log.Warn("request failed",
			"url", r.Request.URL.String(),
			"status", r.StatusCode,
			"error", visitErr,
		)
	}
	listCollector.OnError(onError)
	detailCollector.OnError(onError)

	c.log.Info("starting crawl", "base_url", c.cfg.BaseURL)

	if visitErr := listCollector.Visit(c.cfg.BaseURL); visitErr != nil {
		return nil, fmt.Errorf("crawl: visit base url: %w", visitErr)
	}

	listCollector.Wait()
	detailCollector.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fatalErr != nil {
		return nil, c.fatalErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("crawl: %w", ctxErr)
	}

	c.log.Info("crawl finished", "records", len(c.batch))

	return c.batch, nil
}

// newCollector configures the link collector with the source settings.
func (c *Crawler) newCollector() (*colly.Collector, error) {
	opts := []colly.CollectorOption{
		colly.UserAgent(c.cfg.UserAgent),
		colly.Async(true),
		colly.IgnoreRobotsTxt(),
	}
	if c.cfg.AllowedDomain != "" {
		opts = append(opts, colly.AllowedDomains(c.cfg.AllowedDomain))
	}

	collector := colly.NewCollector(opts...)
	collector.SetRequestTimeout(c.cfg.RequestTimeout)

	if err := collector.Limit(c.limitRule()); err != nil {
		return nil, fmt.Errorf("crawl: set limit rule: %w", err)
	}

	return collector, nil
}

// limitRule builds the politeness rule applied to both collectors.
func (c *Crawler) limitRule() *colly.LimitRule {
	return &colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: c.cfg.Parallelism,
		Delay:       c.cfg.RateLimit,
		RandomDelay: c.cfg.RateLimit / RandomDelayDivisor,
	}
}

// setupAborts cancels outstanding requests once the context is done or
// a fatal extraction error was recorded.
func (c *Crawler) setupAborts(ctx context.Context, collector *colly.Collector) {
	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil || c.fatal() != nil {
			r.Abort()
		}
	})
}

// handleProgramLink deduplicates a discovered detail link by its derived
// identity and schedules the fetch. A program reachable from two listing
// pages yields one record.
func (c *Crawler) handleProgramLink(e *colly.HTMLElement, detailCollector *colly.Collector, stats *domain.RunStats) {
	detailURL := e.Request.AbsoluteURL(e.Attr("href"))
	if detailURL == "" {
		return
	}

	id, _ := identity.Resolve(detailURL)

	c.mu.Lock()
	if _, dup := c.seen[id.IDHash]; dup {
		c.mu.Unlock()
		stats.IncrDuplicates()
		return
	}
	c.seen[id.IDHash] = struct{}{}
	c.mu.Unlock()

	if visitErr := detailCollector.Visit(detailURL); visitErr != nil && !isAlreadyVisited(visitErr) {
		c.log.Warn("failed to schedule detail page", "url", detailURL, "error", visitErr)
	}
}

// handleNextPage follows pagination until the configured page cap.
func (c *Crawler) handleNextPage(e *colly.HTMLElement) {
	c.mu.Lock()
	c.listPages++
	capped := c.cfg.MaxListPages > 0 && c.listPages >= c.cfg.MaxListPages
	c.mu.Unlock()

	if capped {
		return
	}

	nextURL := e.Request.AbsoluteURL(e.Attr("href"))
	if nextURL == "" {
		return
	}

	if visitErr := e.Request.Visit(nextURL); visitErr != nil && !isAlreadyVisited(visitErr) {
		c.log.Warn("failed to follow pagination", "url", nextURL, "error", visitErr)
	}
}

// handleDetailPage extracts, identifies, validates and fingerprints one
// program record.
func (c *Crawler) handleDetailPage(r *colly.Response, stats *domain.RunStats) {
	pageURL := r.Request.URL.String()

	program, err := c.extractor.Extract(pageURL, r.Body)
	if err != nil {
		if errors.Is(err, extract.ErrUnknownCategory) {
			// Schema drift on the source. Silently dropping the field
			// would corrupt checksum comparisons, so the run dies.
			c.setFatal(fmt.Errorf("crawl: %s: %w", pageURL, err))
			return
		}
		stats.IncrFetchErrors()
		c.log.Warn("extraction failed", "url", pageURL, "error", err)
		return
	}

	id, idErr := identity.Resolve(pageURL)
	if errors.Is(idErr, identity.ErrNoMarker) {
		stats.IncrDegenerateIDs()
		c.log.Warn("locator has no identity marker", "url", pageURL)
	}
	program.IDHash = id.IDHash
	program.IDURL = id.IDURL

	if !program.HasMinimalContent() {
		stats.IncrRejected()
		c.log.Warn("record rejected by minimal-content rule", "url", pageURL)
		return
	}

	checksum, sumErr := fingerprint.ComputeAll(program.WatchedFields())
	if sumErr != nil {
		c.setFatal(fmt.Errorf("crawl: fingerprint %s: %w", pageURL, sumErr))
		return
	}
	program.Checksum = checksum
	program.LicenseInfo = licenseInfo(program.Title, time.Now(), pageURL)

	c.mu.Lock()
	c.batch = append(c.batch, *program)
	c.mu.Unlock()
}

// licenseInfo builds the attribution statement the source's data
// license (dl-de/by-2-0) requires for redistributed records.
func licenseInfo(title string, retrieved time.Time, pageURL string) string {
	return fmt.Sprintf(
		"%q, Förderdatenbank des Bundes, Datenlizenz Deutschland, Namensnennung, Version 2.0 (dl-de/by-2-0), abgerufen am %s, %s",
		title, retrieved.Format("2006-01-02"), pageURL,
	)
}

// isAlreadyVisited reports whether a visit failed only because the URL
// was fetched before. Colly reports this with a typed error, not a
// sentinel.
func isAlreadyVisited(err error) bool {
	var visited *colly.AlreadyVisitedError
	return errors.As(err, &visited)
}

func (c *Crawler) fatal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatalErr
}

func (c *Crawler) setFatal(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fatalErr == nil {
		c.fatalErr = err
	}
}
