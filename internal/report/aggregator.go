// Package report accumulates the process-wide crawl statistics: unique
// pages, the longest page, a capped global word counter, and UCI subdomain
// counts, all guarded by a single mutex as explicit state passed to every
// worker rather than a process singleton.
package report

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/icscrawl/crawler/internal/logging"
	"github.com/icscrawl/crawler/pkg/stopword"
	"go.uber.org/zap"
)

const MaxWordPerPage = 50

var tokenPattern = regexp.MustCompile(`[a-zA-Z]+`)

type longestPage struct {
	url       string
	wordCount int
}

// Aggregator holds the global mutable aggregates. Constructed once by the
// supervisor and shared by reference across all workers.
type Aggregator struct {
	stopwords stopword.Set

	mu           sync.Mutex
	uniqueURLs   map[string]struct{}
	longest      longestPage
	wordCounter  map[string]int
	wordOrder    []string
	subdomains   map[string]int
}

func NewAggregator(stopwords stopword.Set) *Aggregator {
	return &Aggregator{
		stopwords:   stopwords,
		uniqueURLs:  make(map[string]struct{}),
		wordCounter: make(map[string]int),
		subdomains:  make(map[string]int),
	}
}

// Tokenize extracts [a-zA-Z]+ runs, lowercases, and drops stopwords.
// Shared by ProcessPageText and the content filter's own tokenization so
// both sides agree on what counts as a token.
func Tokenize(text string, stopwords stopword.Set) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if stopwords != nil && stopwords.Contains(t) {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// ProcessPageTokens records a page whose tokens were already computed by
// the content filter, avoiding a second tokenization pass.
func (a *Aggregator) ProcessPageTokens(pageURL string, tokens []string) {
	a.process(pageURL, tokens)
}

// ProcessPageText tokenizes text itself before recording. Kept distinct
// from ProcessPageTokens so callers that already have tokens never pay for
// a redundant retokenization.
func (a *Aggregator) ProcessPageText(pageURL, text string) {
	a.process(pageURL, Tokenize(text, a.stopwords))
}

func (a *Aggregator) process(pageURL string, tokens []string) {
	stripped := stripFragment(pageURL)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.uniqueURLs[stripped] = struct{}{}

	if len(tokens) > a.longest.wordCount {
		a.longest = longestPage{url: stripped, wordCount: len(tokens)}
	}

	freq := make(map[string]int)
	var pageOrder []string
	for _, t := range tokens {
		if !isValidWord(t) {
			continue
		}
		if _, seen := freq[t]; !seen {
			pageOrder = append(pageOrder, t)
		}
		freq[t]++
	}
	for _, word := range pageOrder {
		count := freq[word]
		if count > MaxWordPerPage {
			count = MaxWordPerPage
		}
		if _, seen := a.wordCounter[word]; !seen {
			a.wordOrder = append(a.wordOrder, word)
		}
		a.wordCounter[word] += count
	}

	a.trackSubdomain(stripped)
}

// isValidWord filters out tokens that are likely rendering artifacts.
func isValidWord(word string) bool {
	if len(word) > 20 {
		return false
	}
	if len(word) >= 3 && distinctChars(word) <= 2 {
		return false
	}
	if len(word) >= 6 {
		half := len(word) / 2
		if word[:half] == word[half:2*half] {
			return false
		}
	}
	return true
}

func distinctChars(word string) int {
	seen := make(map[rune]struct{})
	for _, r := range word {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func (a *Aggregator) trackSubdomain(pageURL string) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return
	}
	host := strings.ToLower(u.Hostname())
	if !strings.HasSuffix(host, "uci.edu") {
		return
	}
	var sub string
	if host == "uci.edu" {
		sub = "(root)"
	} else {
		sub = strings.TrimSuffix(host, ".uci.edu")
	}
	a.subdomains[sub]++
}

func stripFragment(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// UniqueCount returns the number of distinct fragment-stripped URLs seen.
func (a *Aggregator) UniqueCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.uniqueURLs)
}

// LongestPage returns the longest page seen so far.
func (a *Aggregator) LongestPage() (string, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.longest.url, a.longest.wordCount
}

type WordCount struct {
	Word  string
	Count int
}

// TopWords returns up to k (word, count) pairs sorted by count descending,
// ties broken by first-insertion order.
func (a *Aggregator) TopWords(k int) []WordCount {
	a.mu.Lock()
	defer a.mu.Unlock()

	insertionIndex := make(map[string]int, len(a.wordOrder))
	for i, w := range a.wordOrder {
		insertionIndex[w] = i
	}

	words := make([]WordCount, 0, len(a.wordCounter))
	for w, c := range a.wordCounter {
		words = append(words, WordCount{Word: w, Count: c})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return insertionIndex[words[i].Word] < insertionIndex[words[j].Word]
	})
	if k < len(words) {
		words = words[:k]
	}
	return words
}

type SubdomainCount struct {
	Subdomain string
	Count     int
}

// Subdomains returns subdomain counts sorted by key ascending.
func (a *Aggregator) Subdomains() []SubdomainCount {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]SubdomainCount, 0, len(a.subdomains))
	for sub, count := range a.subdomains {
		out = append(out, SubdomainCount{Subdomain: sub, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subdomain < out[j].Subdomain })
	return out
}

// GenerateReport writes the aggregate to logger in the human-readable
// shutdown format.
func (a *Aggregator) GenerateReport(logger logging.Logger) {
	longestURL, longestCount := a.LongestPage()

	logger.Info("====")
	logger.Info("CRAWLER REPORT")
	logger.Info("====")
	logger.Info(fmt.Sprintf("Total unique pages: %d", a.UniqueCount()))
	logger.Info(fmt.Sprintf("Longest page: %s (%d words)", longestURL, longestCount))

	logger.Info("Top 50 words:")
	for _, wc := range a.TopWords(50) {
		logger.Info(fmt.Sprintf("  %s: %d", wc.Word, wc.Count), zap.Int("count", wc.Count))
	}

	logger.Info("UCI subdomains:")
	for _, sc := range a.Subdomains() {
		logger.Info(fmt.Sprintf("  %s.uci.edu: %d pages", sc.Subdomain, sc.Count))
	}
	logger.Info("====")
}
