// Package trap implements the crawler-trap predicate: a short-circuit OR
// over static URL shape checks and per-host counters that escalate once a
// pattern repeats too often.
package trap

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const (
	MaxURLLength               = 2000
	MaxPathDepth                = 40
	MaxRepetitionAllowed         = 12
	MaxCalendarPagesPerDomain   = 250
	MaxPathQueries              = 50
	MaxQueryParams              = 25
)

var calendarPattern = regexp.MustCompile(`/\d{4}(/\d{1,2}(/\d{1,2})?)?/?$`)

var adminPrefixes = []string{"/admin/", "/login/", "/logout/", "/.git/", "/.env", "/cgi-bin/"}
var adminKeywords = map[string]struct{}{
	"wp-admin": {}, "phpmyadmin": {}, "administrator": {}, "backend": {},
}

var suspiciousQueryKeys = map[string]struct{}{
	"sessionid": {}, "sid": {}, "token": {}, "auth": {}, "key": {}, "print": {}, "email": {},
}
var dokuKeys = map[string]struct{}{
	"do": {}, "tab_files": {}, "tab_details": {}, "image": {}, "ns": {}, "rev": {}, "search": {},
}
var trapActions = map[string]struct{}{
	"edit": {}, "history": {}, "diff": {}, "revisions": {}, "admin": {}, "login": {}, "register": {}, "delete": {},
}
var actionKeys = map[string]struct{}{"action": {}, "do": {}, "cmd": {}}
var pageKeys = map[string]struct{}{"page": {}, "p": {}, "offset": {}, "start": {}}

// Detector tracks the per-host counters that feed the repetition, calendar,
// and path-overuse predicates. All reads and increments happen under one
// lock, per the shared-state discipline of a single-process crawl.
type Detector struct {
	mu                sync.Mutex
	repetitionCounter map[string]int
	calendarCounter   map[string]int
	pathQueryCounter  map[string]map[string]int
}

func NewDetector() *Detector {
	return &Detector{
		repetitionCounter: make(map[string]int),
		calendarCounter:   make(map[string]int),
		pathQueryCounter:  make(map[string]map[string]int),
	}
}

// IsTrap evaluates canonical against every predicate. A parse failure is
// treated as a trap, matching the fail-closed discipline used elsewhere.
func (d *Detector) IsTrap(canonical string) bool {
	u, err := url.Parse(canonical)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	path := u.Path
	if path == "" {
		path = "/"
	}
	query := u.RawQuery

	if len(canonical) > MaxURLLength {
		return true
	}
	if hasExcessiveDepth(path) {
		return true
	}
	if hasAdminSegments(path) {
		return true
	}
	if d.hasRepetitivePattern(path, host) {
		return true
	}
	if d.isCalendarPage(path, host) {
		return true
	}
	if d.isPathOverused(host, path) {
		return true
	}
	if hasSuspiciousQueryParams(path, query) {
		return true
	}
	return false
}

func hasExcessiveDepth(path string) bool {
	return len(segmentsOf(path)) > MaxPathDepth
}

func segmentsOf(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasAdminSegments(path string) bool {
	lower := strings.ToLower(path)
	for _, prefix := range adminPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	segments := segmentsOf(lower)
	limit := 3
	if len(segments) < limit {
		limit = len(segments)
	}
	for i := 0; i < limit; i++ {
		if _, ok := adminKeywords[segments[i]]; ok {
			return true
		}
	}
	return false
}

func (d *Detector) hasRepetitivePattern(path, host string) bool {
	segments := segmentsOf(path)
	if len(segments) < 4 {
		return false
	}
	found := false
	for i := 0; i <= len(segments)-4; i++ {
		if segments[i] == segments[i+2] && segments[i+1] == segments[i+3] {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.repetitionCounter[host]++
	return d.repetitionCounter[host] > MaxRepetitionAllowed
}

func (d *Detector) isCalendarPage(path, host string) bool {
	if !calendarPattern.MatchString(path) {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calendarCounter[host]++
	return d.calendarCounter[host] > MaxCalendarPagesPerDomain
}

func (d *Detector) isPathOverused(host, path string) bool {
	key := strings.ToLower(path)
	d.mu.Lock()
	defer d.mu.Unlock()
	byHost, ok := d.pathQueryCounter[host]
	if !ok {
		byHost = make(map[string]int)
		d.pathQueryCounter[host] = byHost
	}
	byHost[key]++
	return byHost[key] > MaxPathQueries
}

func hasSuspiciousQueryParams(path, query string) bool {
	if query == "" {
		return false
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return true
	}

	for key := range values {
		if _, ok := suspiciousQueryKeys[strings.ToLower(key)]; ok {
			return true
		}
	}

	if strings.Contains(strings.ToLower(path), "doku.php") {
		matches := 0
		for key := range values {
			if _, ok := dokuKeys[strings.ToLower(key)]; ok {
				matches++
			}
		}
		if matches >= 2 {
			return true
		}
	}

	for key, vals := range values {
		if _, ok := actionKeys[strings.ToLower(key)]; !ok {
			continue
		}
		for _, v := range vals {
			if _, ok := trapActions[strings.ToLower(v)]; ok {
				return true
			}
		}
	}

	for key, vals := range values {
		if _, ok := pageKeys[strings.ToLower(key)]; !ok {
			continue
		}
		for _, v := range vals {
			if n, err := strconv.Atoi(v); err == nil && n > 500 {
				return true
			}
		}
	}

	if len(values) > MaxQueryParams {
		return true
	}
	for _, vals := range values {
		for _, v := range vals {
			if len(v) > 20 {
				return true
			}
		}
	}

	return false
}
