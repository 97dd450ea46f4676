package trap_test

import (
	"fmt"
	"testing"

	"github.com/icscrawl/crawler/internal/trap"
	"github.com/stretchr/testify/assert"
)

func TestIsTrap_CalendarPagesBecomeTrapAfterThreshold(t *testing.T) {
	d := trap.NewDetector()

	for i := 1; i <= trap.MaxCalendarPagesPerDomain; i++ {
		url := fmt.Sprintf("https://ics.uci.edu/events/2020/%d/", i%12+1)
		assert.False(t, d.IsTrap(url), "page %d should not yet be a trap", i)
	}

	url := fmt.Sprintf("https://ics.uci.edu/events/2020/%d/", trap.MaxCalendarPagesPerDomain%12+1)
	assert.True(t, d.IsTrap(url), "page beyond the threshold must be flagged as a trap")
}

func TestIsTrap_AdminPathIsAlwaysATrap(t *testing.T) {
	d := trap.NewDetector()
	assert.True(t, d.IsTrap("https://ics.uci.edu/admin/users"))
	assert.True(t, d.IsTrap("https://ics.uci.edu/wp-admin/index.php"))
}

func TestIsTrap_ExcessiveDepthIsATrap(t *testing.T) {
	d := trap.NewDetector()
	deep := "https://ics.uci.edu"
	for i := 0; i < trap.MaxPathDepth+1; i++ {
		deep += "/seg"
	}
	assert.True(t, d.IsTrap(deep))
}

func TestIsTrap_OrdinaryPageIsNotATrap(t *testing.T) {
	d := trap.NewDetector()
	assert.False(t, d.IsTrap("https://ics.uci.edu/people/faculty/"))
}

func TestIsTrap_SuspiciousQueryParamIsATrap(t *testing.T) {
	d := trap.NewDetector()
	assert.True(t, d.IsTrap("https://ics.uci.edu/page?sessionid=abc123"))
}

func TestIsTrap_RepetitivePathSegmentsEscalateToTrap(t *testing.T) {
	d := trap.NewDetector()
	url := "https://ics.uci.edu/a/b/a/b/"

	for i := 0; i < trap.MaxRepetitionAllowed; i++ {
		assert.False(t, d.IsTrap(url), "repetition %d should not yet be a trap", i)
	}
	assert.True(t, d.IsTrap(url))
}
