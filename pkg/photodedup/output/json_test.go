package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_Format(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	require.NoError(t, formatter.Format(&buf, fixtureResult(t, Options{Limit: 1})))

	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Groups, 3, "machine formats ignore the display limit")
	assert.Equal(t, "bbbb", doc.Groups[0].Digest)
	assert.Equal(t, int64(1000), doc.Groups[0].WastedSpace)
	assert.Len(t, doc.Groups[1].Files, 3)

	assert.Equal(t, "/p", doc.Meta.Source)
	assert.Equal(t, "prefilter", doc.Meta.Policy)
	assert.Equal(t, "exact", doc.Meta.Method)

	assert.Equal(t, 3, doc.Stats.Groups)
	assert.Equal(t, 4, doc.Stats.ExtraFiles)
	assert.Equal(t, int64(1210), doc.Stats.WastedSpace)
	assert.Equal(t, "120ms", doc.Stats.ScanDuration)

	require.Len(t, doc.Errors, 2)
	assert.Equal(t, "permission", doc.Errors[0].Kind)
	assert.Equal(t, []string{"/p/.cache"}, doc.SkippedDirs)
	assert.Nil(t, doc.Images)
}

func TestJSONFormatter_Format_EmptyArrays(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	require.NoError(t, formatter.Format(&buf, NewResult(nil, nil, Options{})))
	output := buf.String()

	assert.Contains(t, output, `"groups": []`)
	assert.Contains(t, output, `"errors": []`)
	assert.Contains(t, output, `"skipped_dirs": []`)
	assert.Contains(t, output, `"skipped_files": []`)
	assert.NotContains(t, output, `"images"`)
}

func TestJSONFormatter_Format_Images(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	require.NoError(t, formatter.Format(&buf, fixtureResult(t, Options{ShowImages: true})))

	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Len(t, doc.Images, 8)
}

func TestJSONLFormatter_Format(t *testing.T) {
	formatter := &JSONLFormatter{}
	var buf bytes.Buffer

	require.NoError(t, formatter.Format(&buf, fixtureResult(t, Options{Limit: 1})))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	for i, line := range lines {
		var g Group
		require.NoError(t, json.Unmarshal([]byte(line), &g), "line %d", i)
		assert.Equal(t, i+1, g.Index)
		assert.GreaterOrEqual(t, len(g.Files), 2)
	}
}

func TestJSONLFormatter_Format_Empty(t *testing.T) {
	formatter := &JSONLFormatter{}
	var buf bytes.Buffer

	require.NoError(t, formatter.Format(&buf, NewResult(nil, nil, Options{})))
	assert.Empty(t, buf.String())
}
