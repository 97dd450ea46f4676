package stopword_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/icscrawl/crawler/pkg/stopword"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadString_LowercasesAndSkipsCommentsAndBlankLines(t *testing.T) {
	set := stopword.LoadString("The\n# comment\n\nAND\n")

	assert.True(t, set.Contains("the"))
	assert.True(t, set.Contains("and"))
	assert.False(t, set.Contains("# comment"))
	assert.Len(t, set, 2)
}

func TestLoadFile_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopwords.txt")
	require.NoError(t, os.WriteFile(path, []byte("the\na\nan\n"), 0o644))

	set, err := stopword.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, set.Contains("a"))
	assert.True(t, set.Contains("an"))
}

func TestDefault_ContainsCommonEnglishStopwords(t *testing.T) {
	set := stopword.Default()
	assert.True(t, set.Contains("the"))
	assert.True(t, set.Contains("and"))
	assert.False(t, set.Contains("crawler"))
}
