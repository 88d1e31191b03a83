package output

import (
	"bytes"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/jamesainslie/photodedup/pkg/photodedup/dedup"
	"github.com/jamesainslie/photodedup/pkg/photodedup/filter"
	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func files(size int64, paths ...string) []types.FileInfo {
	out := make([]types.FileInfo, len(paths))
	for i, p := range paths {
		out[i] = types.FileInfo{Path: p, Size: size, ModTime: testTime}
	}
	return out
}

func mustGroup(t *testing.T, digest string, method dedup.Method, members []types.FileInfo) dedup.DuplicateGroup {
	t.Helper()
	g, err := dedup.NewDuplicateGroup(digest, members, method)
	require.NoError(t, err)
	return g
}

// fixture returns a scan and detection pair with three groups:
// b (1000 B wasted), a (200 B wasted) and c (10 B wasted).
func fixture(t *testing.T) (*types.ScanResult, *dedup.Result) {
	t.Helper()

	a := files(100, "/p/a1.jpg", "/p/a2.jpg", "/p/a3.jpg")
	b := files(1000, "/p/b1.png", "/p/b2.png")
	c := files(10, "/p/c1.gif", "/p/c2.gif")

	var all []types.FileInfo
	all = append(all, a...)
	all = append(all, b...)
	all = append(all, c...)
	all = append(all, types.FileInfo{Path: "/p/unique.jpg", Size: 42, ModTime: testTime})

	scan := &types.ScanResult{
		Root:         "/p",
		Files:        all,
		DirsScanned:  3,
		FilesScanned: 10,
		SkippedDirs:  []string{"/p/.cache"},
		SkippedFiles: []string{"/p/link.jpg"},
		Errors: []types.ScanError{
			{Path: "/p/locked", Kind: types.ErrorPermission, Error: "permission denied"},
		},
		Elapsed: 120 * time.Millisecond,
	}

	det := &dedup.Result{
		Groups: []dedup.DuplicateGroup{
			mustGroup(t, "aaaa", dedup.MethodExact, a),
			mustGroup(t, "bbbb", dedup.MethodExact, b),
			mustGroup(t, "cccc", dedup.MethodExact, c),
		},
		Errors: []dedup.HashError{
			{Path: "/p/gone.jpg", Err: fmt.Errorf("open: %w", fs.ErrNotExist)},
		},
		Method:      dedup.MethodExact,
		Candidates:  7,
		FilesHashed: 7,
		Elapsed:     30 * time.Millisecond,
	}
	return scan, det
}

func fixtureResult(t *testing.T, opts Options) *Result {
	t.Helper()
	scan, det := fixture(t)
	if opts.Policy == "" {
		opts.Policy = "prefilter"
	}
	return NewResult(scan, det, opts)
}

func groupDigests(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Digest
	}
	return out
}

func TestNewResult(t *testing.T) {
	r := fixtureResult(t, Options{Limit: 5})

	assert.Equal(t, "/p", r.Source)
	assert.Equal(t, "prefilter", r.Policy)
	assert.Equal(t, "exact", r.Method)
	assert.Equal(t, 5, r.Limit)

	assert.Equal(t, int64(3), r.Stats.DirsScanned)
	assert.Equal(t, int64(10), r.Stats.FilesScanned)
	assert.Equal(t, 8, r.Stats.Images)
	assert.Equal(t, 7, r.Stats.Candidates)
	assert.Equal(t, 3, r.Stats.Groups)
	assert.Equal(t, 4, r.Stats.ExtraFiles)
	assert.Equal(t, int64(1210), r.Stats.WastedSpace)
	assert.Equal(t, 120*time.Millisecond, r.Stats.ScanDuration)
	assert.Equal(t, 30*time.Millisecond, r.Stats.HashDuration)

	require.Len(t, r.Groups, 3)
	assert.Equal(t, []string{"bbbb", "aaaa", "cccc"}, groupDigests(r.Groups))

	first := r.Groups[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, 1, first.ExtraFiles)
	assert.Equal(t, int64(1000), first.Size)
	assert.Equal(t, int64(1000), first.WastedSpace)
	assert.Equal(t, "1000 B", first.WastedHuman)
	assert.Equal(t, "exact", first.Method)
	assert.Equal(t, "/p/b1.png", first.Files[0].Path)

	assert.Equal(t, []string{"/p/.cache"}, r.SkippedDirs)
	assert.Equal(t, []string{"/p/link.jpg"}, r.SkippedFiles)
	assert.Nil(t, r.Images, "images are only collected on request")
	assert.Empty(t, r.Warnings)
}

func TestNewResult_Errors(t *testing.T) {
	r := fixtureResult(t, Options{})

	require.Len(t, r.Errors, 2)
	assert.Equal(t, ErrorEntry{Stage: "scan", Path: "/p/locked", Kind: "permission", Message: "permission denied"}, r.Errors[0])
	assert.Equal(t, "hash", r.Errors[1].Stage)
	assert.Equal(t, "/p/gone.jpg", r.Errors[1].Path)
	assert.Equal(t, "not_found", r.Errors[1].Kind)
}

func TestNewResult_HashErrorWithoutCause(t *testing.T) {
	det := &dedup.Result{Errors: []dedup.HashError{{Path: "/x.jpg"}}}
	r := NewResult(nil, det, Options{})

	require.Len(t, r.Errors, 1)
	assert.Equal(t, "io", r.Errors[0].Kind)
	assert.NotEmpty(t, r.Errors[0].Message)
}

func TestNewResult_Sorting(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{name: "wasted space descending", opts: Options{SortBy: filter.SortSize}, want: []string{"bbbb", "aaaa", "cccc"}},
		{name: "wasted space ascending", opts: Options{SortBy: filter.SortSize, Ascending: true}, want: []string{"cccc", "aaaa", "bbbb"}},
		{name: "count descending", opts: Options{SortBy: filter.SortCount}, want: []string{"aaaa", "bbbb", "cccc"}},
		{name: "path ascending", opts: Options{SortBy: filter.SortPath, Ascending: true}, want: []string{"aaaa", "bbbb", "cccc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fixtureResult(t, tt.opts)
			assert.Equal(t, tt.want, groupDigests(r.Groups))
			for i, g := range r.Groups {
				assert.Equal(t, i+1, g.Index)
			}
		})
	}
}

func TestNewResult_ShowImages(t *testing.T) {
	r := fixtureResult(t, Options{ShowImages: true})

	require.Len(t, r.Images, 8)
	assert.Equal(t, "/p/a1.jpg", r.Images[0].Path)
	assert.Equal(t, "100 B", r.Images[0].SizeHuman)
	assert.Equal(t, testTime, r.Images[0].ModTime)
}

func TestNewResult_PartialWarning(t *testing.T) {
	scan, det := fixture(t)
	det.Method = dedup.MethodPartial

	r := NewResult(scan, det, Options{Policy: "partial"})
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "partial hash")
}

func TestNewResult_Empty(t *testing.T) {
	r := NewResult(nil, nil, Options{Limit: -3})

	assert.NotNil(t, r.Groups)
	assert.Empty(t, r.Groups)
	assert.Equal(t, 0, r.Limit)
	assert.Empty(t, r.Errors)
}

func TestVisibleGroups(t *testing.T) {
	tests := []struct {
		limit       int
		wantVisible int
		wantHidden  int
	}{
		{limit: 0, wantVisible: 3, wantHidden: 0},
		{limit: 1, wantVisible: 1, wantHidden: 2},
		{limit: 2, wantVisible: 2, wantHidden: 1},
		{limit: 3, wantVisible: 3, wantHidden: 0},
		{limit: 10, wantVisible: 3, wantHidden: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit=%d", tt.limit), func(t *testing.T) {
			r := fixtureResult(t, Options{Limit: tt.limit})
			assert.Len(t, r.VisibleGroups(), tt.wantVisible)
			assert.Equal(t, tt.wantHidden, r.HiddenGroups())
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{10, 10},
		{19, 19},
		{20, 10},
		{250, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.n), "Truncate(%d)", tt.n)
	}
}

func TestMoreGroupsLine(t *testing.T) {
	assert.Equal(t, "... 1 more group", moreGroupsLine(1))
	assert.Equal(t, "... 4 more groups", moreGroupsLine(4))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("x", func() Formatter { return &PathsFormatter{} })

	f, err := reg.Get("x")
	require.NoError(t, err)
	assert.IsType(t, &PathsFormatter{}, f)

	_, err = reg.Get("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown formatter")

	assert.Equal(t, []string{"x"}, reg.Available())
}

func TestDefaultRegistry(t *testing.T) {
	want := []string{"csv", "json", "jsonl", "markdown", "null", "paths", "plain", "pretty", "template", "tsv", "yaml"}
	assert.Equal(t, want, Available())

	for _, name := range want {
		f, err := Get(name)
		require.NoError(t, err, name)

		var buf bytes.Buffer
		require.NoError(t, f.Format(&buf, fixtureResult(t, Options{Limit: 5})), name)
	}
}

func TestFormatters_EmptyResult(t *testing.T) {
	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			f, err := Get(name)
			require.NoError(t, err)

			var buf bytes.Buffer
			assert.NoError(t, f.Format(&buf, NewResult(nil, nil, Options{})))
		})
	}
}
