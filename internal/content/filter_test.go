package content

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/icscrawl/crawler/internal/fetcher"
	"github.com/icscrawl/crawler/internal/report"
	"github.com/icscrawl/crawler/internal/robots"
	"github.com/icscrawl/crawler/internal/trap"
	"github.com/icscrawl/crawler/pkg/stopword"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilter() *Filter {
	allowedHosts := map[string]struct{}{"ics.uci.edu": {}}
	stopwords := stopword.Default()
	aggregator := report.NewAggregator(stopwords)
	trapDetector := trap.NewDetector()
	robotsCache := robots.NewCache("test-agent", 2*time.Second)
	return NewFilter(allowedHosts, stopwords, aggregator, trapDetector, robotsCache)
}

func longEnoughHTML(paragraph string) string {
	var b strings.Builder
	b.WriteString("<html><body><main>")
	for i := 0; i < 10; i++ {
		b.WriteString("<p>")
		b.WriteString(paragraph)
		b.WriteString("</p>")
	}
	b.WriteString("<a href=\"/other-page/\">next</a>")
	b.WriteString("</main></body></html>")
	return b.String()
}

func htmlResponse(pageURL, body string) fetcher.Response {
	return fetcher.Response{
		Status:  200,
		URL:     pageURL,
		Body:    []byte(body),
		Headers: http.Header{"Content-Type": []string{"text/html"}},
	}
}

func TestScrape_DuplicateContentIsRejectedOnSecondFetch(t *testing.T) {
	f := newTestFilter()
	body := longEnoughHTML("algorithms networks databases compilers operating systems distributed web crawling indexing ranking retrieval")

	links1, outcome1 := f.Scrape("https://ics.uci.edu/page-one/", htmlResponse("https://ics.uci.edu/page-one/", body))
	require.Equal(t, OutcomeScraped, outcome1)
	require.NotEmpty(t, links1)

	links2, outcome2 := f.Scrape("https://ics.uci.edu/page-two/", htmlResponse("https://ics.uci.edu/page-two/", body))
	assert.Equal(t, OutcomeDuplicate, outcome2)
	assert.Empty(t, links2)
}

func TestScrape_ConcurrentIdenticalContentIsCountedOnce(t *testing.T) {
	allowedHosts := map[string]struct{}{"ics.uci.edu": {}}
	stopwords := stopword.Default()
	aggregator := report.NewAggregator(stopwords)
	trapDetector := trap.NewDetector()
	robotsCache := robots.NewCache("test-agent", 2*time.Second)
	f := NewFilter(allowedHosts, stopwords, aggregator, trapDetector, robotsCache)

	body := longEnoughHTML("algorithms networks databases compilers operating systems distributed web crawling indexing ranking retrieval")

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pageURL := fmt.Sprintf("https://ics.uci.edu/concurrent-%d/", i)
			f.Scrape(pageURL, htmlResponse(pageURL, body))
		}(i)
	}
	wg.Wait()

	// Every worker fetches identical content under a distinct URL: the
	// cache lock must serialize the duplicate check against the inserts
	// so exactly one of them wins and gets aggregated.
	assert.Equal(t, 1, aggregator.UniqueCount())
}

func TestScrape_TooShortContentIsRejected(t *testing.T) {
	f := newTestFilter()
	body := "<html><body><main><p>too short</p></main></body></html>"

	links, outcome := f.Scrape("https://ics.uci.edu/short/", htmlResponse("https://ics.uci.edu/short/", body))
	assert.Equal(t, OutcomeTooShort, outcome)
	assert.Empty(t, links)
}

func TestScrape_BadResponseYieldsNoLinks(t *testing.T) {
	f := newTestFilter()
	resp := fetcher.Response{Status: 500}

	links, outcome := f.Scrape("https://ics.uci.edu/broken/", resp)
	assert.Equal(t, OutcomeBadResponse, outcome)
	assert.Empty(t, links)
}

func TestScrape_UnsupportedContentTypeIsRejected(t *testing.T) {
	f := newTestFilter()
	resp := fetcher.Response{
		Status:  200,
		URL:     "https://ics.uci.edu/file.bin",
		Body:    []byte{1, 2, 3},
		Headers: http.Header{"Content-Type": []string{"application/octet-stream"}},
	}

	links, outcome := f.Scrape("https://ics.uci.edu/file.bin", resp)
	assert.Equal(t, OutcomeUnsupportedType, outcome)
	assert.Empty(t, links)
}

func TestExtractLinks_ResolvesRelativeURLsAndSkipsNonHTTP(t *testing.T) {
	body := `<html><body>
		<a href="/relative/page/">relative</a>
		<a href="https://ics.uci.edu/absolute/">absolute</a>
		<a href="mailto:test@ics.uci.edu">mail</a>
		<a href="javascript:void(0)">js</a>
		<a href="#frag">fragment only</a>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)

	links := ExtractLinks("https://ics.uci.edu/base/", doc)
	assert.Contains(t, links, "https://ics.uci.edu/relative/page/")
	assert.Contains(t, links, "https://ics.uci.edu/absolute/")
	assert.Len(t, links, 2)
}
