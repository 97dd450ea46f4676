package frontier_test

import (
	"path/filepath"
	"testing"

	"github.com/icscrawl/crawler/internal/frontier"
	"github.com/icscrawl/crawler/internal/logging"
	"github.com/stretchr/testify/require"
)

func newTestFrontier(t *testing.T) *frontier.Frontier {
	t.Helper()
	saveFile := filepath.Join(t.TempDir(), "crawl")
	allowedHosts := map[string]struct{}{"ics.uci.edu": {}}
	return frontier.New(saveFile, allowedHosts, logging.NewNop())
}

func TestAddURL_IsIdempotent(t *testing.T) {
	f := newTestFrontier(t)
	require.NoError(t, f.Startup(nil, false))

	for i := 0; i < 5; i++ {
		f.AddURL("https://ics.uci.edu/page/")
	}

	stats, err := f.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)

	seen := 0
	for {
		if _, ok := f.GetTBDURL(); !ok {
			break
		}
		seen++
	}
	require.Equal(t, 1, seen)
}

func TestMarkURLComplete_IncrementsCompletedByOne(t *testing.T) {
	f := newTestFrontier(t)
	require.NoError(t, f.Startup([]string{"https://ics.uci.edu/a/", "https://ics.uci.edu/b/"}, false))

	url, ok := f.GetTBDURL()
	require.True(t, ok)

	f.MarkURLComplete(url)

	stats, err := f.Stats()
	require.NoError(t, err)
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.Completed)

	f.MarkURLComplete(url)
	stats, err = f.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Completed)
}

func TestStartup_SeedsOnFreshStore(t *testing.T) {
	f := newTestFrontier(t)
	require.NoError(t, f.Startup([]string{"https://ics.uci.edu/seed/"}, false))

	stats, err := f.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)
	require.Equal(t, 1, stats.InQueue)
}

func TestStartup_RestartClearsExistingStore(t *testing.T) {
	f := newTestFrontier(t)
	require.NoError(t, f.Startup([]string{"https://ics.uci.edu/seed/"}, false))
	f.AddURL("https://ics.uci.edu/second/")

	require.NoError(t, f.Startup([]string{"https://ics.uci.edu/fresh/"}, true))

	stats, err := f.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Total)
}
