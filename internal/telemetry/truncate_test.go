package telemetry

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"longer", "abcdef", 5, "abcde"},
		{"multibyte kept whole", "åäöåäö", 4, "åäöå"},
		{"disabled", "abcdef", 0, "abcdef"},
		{"empty", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.limit))
		})
	}
}

func TestTruncate_ContentLimit(t *testing.T) {
	content := strings.Repeat("x", 5000001)
	got := Truncate(content, 5000000)
	assert.Equal(t, 5000000, utf8.RuneCountInString(got))
}

func TestParseStorage(t *testing.T) {
	long := strings.Repeat("k", 150)
	raw := `{"` + long + `":"` + strings.Repeat("v", 120) + `","short":"1"}`

	snapshot, err := parseStorage(raw, 100)
	assert.NoError(t, err)
	assert.Len(t, snapshot, 2)
	assert.Equal(t, strings.Repeat("v", 100), snapshot[strings.Repeat("k", 100)])
	assert.Equal(t, "1", snapshot["short"])

	empty, err := parseStorage("", 100)
	assert.NoError(t, err)
	assert.Empty(t, empty)

	_, err = parseStorage("not json", 100)
	assert.Error(t, err)
}

func TestBuildStorageScript(t *testing.T) {
	script := buildStorageScript(100)
	assert.Contains(t, script, "const limit = 100;")
	assert.Contains(t, script, "JSON.stringify(out)")
}
