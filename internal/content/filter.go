// Package content implements the scrape pipeline: response validation,
// visible-text extraction, tokenization, exact/near-duplicate rejection,
// report aggregation, and outbound link extraction.
package content

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/icscrawl/crawler/internal/fetcher"
	"github.com/icscrawl/crawler/internal/normalize"
	"github.com/icscrawl/crawler/internal/report"
	"github.com/icscrawl/crawler/internal/robots"
	"github.com/icscrawl/crawler/internal/simhash"
	"github.com/icscrawl/crawler/internal/trap"
	"github.com/icscrawl/crawler/pkg/hashutil"
	"github.com/icscrawl/crawler/pkg/stopword"
)

const (
	MinChars          = 75
	MinTokens         = 25
	SimhashThreshold  = 3
	simhashRecentK    = 1000
	checksumCacheCap  = 200000
	simhashCacheCap   = 200000
	binarySniffWindow = 8 * 1024
)

var allowedContentTypes = map[string]struct{}{
	"text/html":             {},
	"application/xhtml+xml": {},
	"text/plain":            {},
}

var stripTags = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "iframe": {}, "object": {},
	"embed": {}, "svg": {}, "canvas": {}, "meta": {}, "link": {},
}

var contentDivPattern = regexp.MustCompile(`(?i)content|main|body|post|article`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Outcome classifies why scrape returned no links, for logging/metrics.
type Outcome string

const (
	OutcomeScraped          Outcome = "scraped"
	OutcomeRobotsDisallowed Outcome = "robots_disallowed"
	OutcomeBadResponse      Outcome = "bad_response"
	OutcomeUnsupportedType  Outcome = "unsupported_type"
	OutcomeBinary           Outcome = "binary"
	OutcomeTooShort         Outcome = "too_short"
	OutcomeTooFewTokens     Outcome = "too_few_tokens"
	OutcomeDuplicate        Outcome = "duplicate"
)

// Filter runs the full per-page scrape pipeline. It holds the process-wide
// dedup caches, so one Filter must be shared by all workers.
type Filter struct {
	allowedHosts map[string]struct{}
	stopwords    stopword.Set
	aggregator   *report.Aggregator
	trapDetector *trap.Detector
	robotsCache  *robots.Cache

	// dedupMu guards checksums and simhashes together: the duplicate check
	// and the subsequent inserts must happen under a single lock, or two
	// workers racing on identical content both see "not a duplicate" and
	// both insert, double-counting the page in the aggregator.
	dedupMu   sync.Mutex
	checksums *fifoSet
	simhashes *simhashFIFO
}

func NewFilter(allowedHosts map[string]struct{}, stopwords stopword.Set, aggregator *report.Aggregator, trapDetector *trap.Detector, robotsCache *robots.Cache) *Filter {
	return &Filter{
		allowedHosts: allowedHosts,
		stopwords:    stopwords,
		aggregator:   aggregator,
		trapDetector: trapDetector,
		robotsCache:  robotsCache,
		checksums:    newFIFOSet(checksumCacheCap),
		simhashes:    newSimhashFIFO(simhashCacheCap, simhashRecentK),
	}
}

// Scrape validates and extracts resp, feeds the report aggregator, and
// returns the canonical, validated, non-trap outbound links.
func (f *Filter) Scrape(pageURL string, resp fetcher.Response) ([]string, Outcome) {
	if !f.robotsCache.Allowed(pageURL) {
		return nil, OutcomeRobotsDisallowed
	}
	if resp.Status != 200 || resp.Body == nil {
		return nil, OutcomeBadResponse
	}
	if !contentTypeAllowed(resp.Headers.Get("Content-Type")) {
		return nil, OutcomeUnsupportedType
	}
	if looksBinary(resp.Body) {
		return nil, OutcomeBinary
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, OutcomeBadResponse
	}

	text := extractVisibleText(doc)
	if len(text) < MinChars {
		return nil, OutcomeTooShort
	}

	tokens := report.Tokenize(text, f.stopwords)
	if len(tokens) < MinTokens {
		return nil, OutcomeTooFewTokens
	}

	checksum := hashutil.ContentChecksum(normalizeForChecksum(text))
	tokenCounts := countTokens(tokens)
	fingerprint := simhash.Compute(tokenCounts, hashutil.TokenHash64)

	if f.checkAndRecord(checksum, fingerprint) {
		return nil, OutcomeDuplicate
	}

	f.aggregator.ProcessPageTokens(pageURL, tokens)

	links := ExtractLinks(resp.URL, doc)
	survivors := make([]string, 0, len(links))
	for _, link := range links {
		canonical, err := normalize.Canonicalize(link)
		if err != nil {
			continue
		}
		if !normalize.IsValid(canonical, f.allowedHosts) {
			continue
		}
		if f.trapDetector.IsTrap(canonical) {
			continue
		}
		survivors = append(survivors, canonical)
	}

	return survivors, OutcomeScraped
}

// checkAndRecord reports whether (checksum, fingerprint) is a duplicate of
// an already-seen page. If it isn't, it records both under the same lock
// so the check and the insert are atomic.
func (f *Filter) checkAndRecord(checksum string, fingerprint uint64) bool {
	f.dedupMu.Lock()
	defer f.dedupMu.Unlock()

	if f.checksums.contains(checksum) {
		return true
	}
	if f.simhashes.nearDuplicate(fingerprint, SimhashThreshold, simhash.Hamming) {
		return true
	}

	f.checksums.insert(checksum)
	f.simhashes.insert(fingerprint)
	return false
}

func contentTypeAllowed(header string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return true
	}
	token := strings.TrimSpace(strings.SplitN(header, ";", 2)[0])
	_, ok := allowedContentTypes[strings.ToLower(token)]
	return ok
}

func looksBinary(body []byte) bool {
	window := body
	if len(window) > binarySniffWindow {
		window = window[:binarySniffWindow]
	}
	return bytes.IndexByte(window, 0) >= 0
}

// extractVisibleText strips non-content tags and prefers <main>, then
// <article>, then the first content-like <div>, then <body>.
func extractVisibleText(doc *goquery.Document) string {
	for tag := range stripTags {
		doc.Find(tag).Remove()
	}

	var selection *goquery.Selection
	if s := doc.Find("main").First(); s.Length() > 0 {
		selection = s
	} else if s := doc.Find("article").First(); s.Length() > 0 {
		selection = s
	} else if s := findContentDiv(doc); s != nil {
		selection = s
	} else {
		selection = doc.Find("body").First()
	}

	if selection == nil || selection.Length() == 0 {
		selection = doc.Selection
	}

	text := selection.Text()
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

func findContentDiv(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if contentDivPattern.MatchString(class) {
			found = s
			return false
		}
		return true
	})
	return found
}

func normalizeForChecksum(text string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " "))
}

func countTokens(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// ExtractLinks parses hrefs out of doc, skipping javascript:/mailto:/tel:/
// data:/fragment-only links, and resolves relative URLs against baseURL.
func ExtractLinks(baseURL string, doc *goquery.Document) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") ||
			strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "data:") {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		resolved.Fragment = ""
		resolved.RawFragment = ""
		links = append(links, resolved.String())
	})
	return links
}
