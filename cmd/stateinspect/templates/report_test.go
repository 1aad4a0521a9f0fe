package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	out := Report("state.db", "persistent", []Entry{
		{Key: "theme", Size: "7 B", Value: `"dark"`},
		{Key: "<b>", Size: "1 B", Value: "1"},
	})
	assert.Contains(t, out, "2 keys")
	assert.Contains(t, out, "<td>theme</td>")
	assert.Contains(t, out, "&lt;b&gt;")
	assert.NotContains(t, out, "<td><b></td>")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	long := strings.Repeat("é", 12)
	assert.Equal(t, strings.Repeat("é", 10)+"…", preview(long, 10))
}
