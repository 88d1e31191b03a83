package dedup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

// Policy decides how the partial and exact strategies are combined.
type Policy int

const (
	// PolicyPrefilter hashes prefixes first and fully hashes only files that
	// share both size and partial digest. The exact pass is authoritative.
	PolicyPrefilter Policy = iota

	// PolicyExact fully hashes every file that shares a size.
	PolicyExact

	// PolicyPartial reports partial-digest groups only. Members may differ
	// beyond the hashed prefix.
	PolicyPartial

	// PolicyLegacy runs an exact pass and then a partial pass over the whole
	// input and reports the partial groups, mirroring the historical tool.
	PolicyLegacy
)

var policyNames = map[Policy]string{
	PolicyPrefilter: "prefilter",
	PolicyExact:     "exact",
	PolicyPartial:   "partial",
	PolicyLegacy:    "legacy",
}

// ErrInvalidPolicy indicates that a policy name could not be parsed.
var ErrInvalidPolicy = errors.New("invalid detection policy")

// String returns the policy name.
func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy parses a policy name (case-insensitive). "full" is accepted as
// an alias for "exact".
func ParsePolicy(s string) (Policy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "full" {
		return PolicyExact, nil
	}
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}
	return PolicyPrefilter, fmt.Errorf("%w: %q (want prefilter, exact, partial or legacy)", ErrInvalidPolicy, s)
}

// PolicyNames lists the accepted policy names in declaration order.
func PolicyNames() []string {
	return []string{
		PolicyPrefilter.String(),
		PolicyExact.String(),
		PolicyPartial.String(),
		PolicyLegacy.String(),
	}
}

// Detector runs one or more grouping passes according to a Policy.
type Detector struct {
	grouper *Grouper
	policy  Policy
}

// NewDetector creates a Detector.
func NewDetector(grouper *Grouper, policy Policy) *Detector {
	return &Detector{grouper: grouper, policy: policy}
}

// Policy returns the configured policy.
func (d *Detector) Policy() Policy {
	return d.policy
}

// Detect finds duplicate groups in files. Hash failures from every pass are
// merged into Result.Errors with each path reported once.
func (d *Detector) Detect(ctx context.Context, files []types.FileInfo) (*Result, error) {
	start := time.Now()

	var (
		result *Result
		err    error
	)
	switch d.policy {
	case PolicyPrefilter:
		result, err = d.prefilter(ctx, files)
	case PolicyExact:
		result, err = d.grouper.Group(ctx, files, MethodExact)
	case PolicyPartial:
		result, err = d.grouper.Group(ctx, files, MethodPartial)
	case PolicyLegacy:
		result, err = d.legacy(ctx, files)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPolicy, d.policy)
	}
	if err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

func (d *Detector) prefilter(ctx context.Context, files []types.FileInfo) (*Result, error) {
	partial, err := d.grouper.Group(ctx, files, MethodPartial)
	if err != nil {
		return nil, err
	}

	var candidates []types.FileInfo
	for _, g := range partial.Groups {
		candidates = append(candidates, g.Files...)
	}

	logger.Debug("prefilter narrowed candidates",
		"files", len(files),
		"size_candidates", partial.Candidates,
		"partial_candidates", len(candidates))

	exact, err := d.grouper.Group(ctx, candidates, MethodExact)
	if err != nil {
		return nil, err
	}

	exact.Candidates = partial.Candidates
	exact.FilesHashed += partial.FilesHashed
	exact.Errors = mergeErrors(partial.Errors, exact.Errors)
	return exact, nil
}

func (d *Detector) legacy(ctx context.Context, files []types.FileInfo) (*Result, error) {
	exact, err := d.grouper.Group(ctx, files, MethodExact)
	if err != nil {
		return nil, err
	}
	partial, err := d.grouper.Group(ctx, files, MethodPartial)
	if err != nil {
		return nil, err
	}

	if len(exact.Groups) != len(partial.Groups) {
		logger.Warn("partial pass disagrees with exact pass; reporting partial groups",
			"exact_groups", len(exact.Groups),
			"partial_groups", len(partial.Groups))
	}

	partial.FilesHashed += exact.FilesHashed
	partial.Errors = mergeErrors(exact.Errors, partial.Errors)
	return partial, nil
}

// mergeErrors concatenates error lists, keeping the first error per path.
func mergeErrors(lists ...[]HashError) []HashError {
	var out []HashError
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, e := range list {
			if _, dup := seen[e.Path]; dup {
				continue
			}
			seen[e.Path] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
