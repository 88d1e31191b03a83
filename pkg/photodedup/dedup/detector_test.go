package dedup

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    Policy
		wantErr bool
	}{
		{input: "prefilter", want: PolicyPrefilter},
		{input: "exact", want: PolicyExact},
		{input: "full", want: PolicyExact},
		{input: "Partial", want: PolicyPartial},
		{input: " legacy ", want: PolicyLegacy},
		{input: "", wantErr: true},
		{input: "fuzzy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, []string{"prefilter", "exact", "partial", "legacy"}, PolicyNames())
	assert.Equal(t, "policy(12)", Policy(12).String())
}

// prefixCollision holds two same-size files that agree on their first four
// bytes but differ afterwards, plus a true duplicate pair.
func prefixCollision() map[string]string {
	return map[string]string{
		"/head1": "JPEGaaaa",
		"/head2": "JPEGbbbb",
		"/dup1":  "PNG!same",
		"/dup2":  "PNG!same",
		"/lone":  "0123456789",
	}
}

var collisionOrder = []string{"/head1", "/dup1", "/head2", "/dup2", "/lone"}

func TestDetector_Prefilter(t *testing.T) {
	content := prefixCollision()
	fake := newFakeHasher(content)
	d := NewDetector(fake.grouper(), PolicyPrefilter)
	assert.Equal(t, PolicyPrefilter, d.Policy())

	result, err := d.Detect(context.Background(), filesFor(content, collisionOrder...))
	require.NoError(t, err)

	assert.Equal(t, MethodExact, result.Method)
	assert.Equal(t, [][]string{{"/dup1", "/dup2"}}, groupPaths(result.Groups))
	assert.Equal(t, 4, result.Candidates)
	// Four partial hashes, then four full hashes over the two prefix groups.
	assert.Equal(t, int64(8), fake.calls.Load())
	assert.Equal(t, int64(8), result.FilesHashed)
	assertGroupInvariants(t, result)
}

func TestDetector_PrefilterSkipsExactWhenPrefixesDiffer(t *testing.T) {
	content := map[string]string{"/a": "AAAAtail", "/b": "BBBBtail"}
	fake := newFakeHasher(content)

	result, err := NewDetector(fake.grouper(), PolicyPrefilter).Detect(context.Background(), filesFor(content, "/a", "/b"))
	require.NoError(t, err)

	assert.Empty(t, result.Groups)
	assert.Equal(t, int64(2), fake.calls.Load(), "no full hash without a prefix match")
}

func TestDetector_Exact(t *testing.T) {
	content := prefixCollision()
	fake := newFakeHasher(content)

	result, err := NewDetector(fake.grouper(), PolicyExact).Detect(context.Background(), filesFor(content, collisionOrder...))
	require.NoError(t, err)

	assert.Equal(t, MethodExact, result.Method)
	assert.Equal(t, [][]string{{"/dup1", "/dup2"}}, groupPaths(result.Groups))
	assert.Equal(t, int64(4), fake.calls.Load())
}

func TestDetector_Partial(t *testing.T) {
	content := prefixCollision()
	fake := newFakeHasher(content)

	result, err := NewDetector(fake.grouper(), PolicyPartial).Detect(context.Background(), filesFor(content, collisionOrder...))
	require.NoError(t, err)

	assert.Equal(t, MethodPartial, result.Method)
	assert.Equal(t, [][]string{{"/dup1", "/dup2"}, {"/head1", "/head2"}}, groupPaths(result.Groups))
}

func TestDetector_LegacyReportsPartialGroups(t *testing.T) {
	content := prefixCollision()
	fake := newFakeHasher(content)

	result, err := NewDetector(fake.grouper(), PolicyLegacy).Detect(context.Background(), filesFor(content, collisionOrder...))
	require.NoError(t, err)

	assert.Equal(t, MethodPartial, result.Method)
	assert.Len(t, result.Groups, 2)
	assert.Equal(t, int64(8), result.FilesHashed)
}

func TestDetector_ErrorsReportedOnce(t *testing.T) {
	content := prefixCollision()
	fake := newFakeHasher(content)
	fake.failures["/dup2"] = os.ErrPermission

	for _, policy := range []Policy{PolicyPrefilter, PolicyExact, PolicyPartial, PolicyLegacy} {
		t.Run(policy.String(), func(t *testing.T) {
			result, err := NewDetector(fake.grouper(), policy).Detect(context.Background(), filesFor(content, collisionOrder...))
			require.NoError(t, err)

			require.Len(t, result.Errors, 1)
			assert.Equal(t, "/dup2", result.Errors[0].Path)
			for _, g := range result.Groups {
				assert.NotContains(t, g.Paths(), "/dup2")
			}
		})
	}
}

func TestDetector_Cancelled(t *testing.T) {
	content := prefixCollision()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, policy := range []Policy{PolicyPrefilter, PolicyExact, PolicyPartial, PolicyLegacy} {
		_, err := NewDetector(newFakeHasher(content).grouper(), policy).Detect(ctx, filesFor(content, collisionOrder...))
		assert.ErrorIs(t, err, context.Canceled, policy.String())
	}
}

func TestDetector_InvalidPolicy(t *testing.T) {
	_, err := NewDetector(newFakeHasher(nil).grouper(), Policy(42)).Detect(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestMergeErrors(t *testing.T) {
	first := []HashError{{Path: "/a", Err: os.ErrPermission}, {Path: "/b", Err: os.ErrNotExist}}
	second := []HashError{{Path: "/b", Err: errors.New("later")}, {Path: "/c", Err: os.ErrNotExist}}

	merged := mergeErrors(first, second)
	require.Len(t, merged, 3)
	assert.Equal(t, "/a", merged[0].Path)
	assert.ErrorIs(t, merged[1], os.ErrNotExist)
	assert.Equal(t, "/c", merged[2].Path)
	assert.Empty(t, mergeErrors())
}
