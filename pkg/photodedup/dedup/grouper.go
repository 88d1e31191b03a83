package dedup

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/jamesainslie/photodedup/pkg/photodedup/hasher"
	"github.com/jamesainslie/photodedup/pkg/photodedup/logging"
	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
	"golang.org/x/sync/errgroup"
)

var logger = logging.Get("dedup")

// Result is the outcome of a grouping pass.
type Result struct {
	// Groups holds one entry per set of files sharing size and digest.
	// It is empty, never nil, when no duplicates exist.
	Groups []DuplicateGroup `json:"groups"`

	// Errors lists files that could not be hashed and were left out.
	Errors []HashError `json:"errors,omitempty"`

	// Method is the strategy of the reported groups.
	Method Method `json:"method"`

	// Candidates is the number of files that shared a size with another file.
	Candidates int `json:"candidates"`

	// FilesHashed counts successful hash operations.
	FilesHashed int64 `json:"files_hashed"`

	// Elapsed is the wall time of the pass.
	Elapsed time.Duration `json:"elapsed"`
}

// ExtraFiles sums ExtraFiles over all groups.
func (r *Result) ExtraFiles() int {
	n := 0
	for _, g := range r.Groups {
		n += g.ExtraFiles()
	}
	return n
}

// WastedSpace sums WastedSpace over all groups.
func (r *Result) WastedSpace() int64 {
	var n int64
	for _, g := range r.Groups {
		n += g.WastedSpace()
	}
	return n
}

// Progress is a snapshot of a running grouping pass.
type Progress struct {
	Method Method
	Hashed int64
	Failed int64
	Total  int64
}

// Option configures a Grouper.
type Option func(*Grouper)

// WithWorkers bounds the number of concurrent hash operations.
// Values below one select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(g *Grouper) {
		g.workers = n
	}
}

// WithProgress installs a callback invoked as files are hashed. It is called
// from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(Progress)) Option {
	return func(g *Grouper) {
		g.onProgress = fn
	}
}

// Grouper turns file descriptors into duplicate groups using pluggable hash
// functions, one per Method.
type Grouper struct {
	partial    hasher.Func
	exact      hasher.Func
	workers    int
	onProgress func(Progress)

	lastProgress atomic.Int64
}

// NewGrouper creates a Grouper from a partial and a full hash function.
func NewGrouper(partial, exact hasher.Func, opts ...Option) *Grouper {
	g := &Grouper{
		partial: partial,
		exact:   exact,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.workers < 1 {
		g.workers = runtime.NumCPU()
	}
	return g
}

// NewGrouperFromHasher wires both strategies of h into a Grouper.
func NewGrouperFromHasher(h *hasher.Hasher, opts ...Option) *Grouper {
	return NewGrouper(h.Partial, h.Full, opts...)
}

// Workers returns the hash concurrency limit.
func (g *Grouper) Workers() int {
	return g.workers
}

func (g *Grouper) hashFunc(method Method) (hasher.Func, error) {
	switch method {
	case MethodPartial:
		if g.partial != nil {
			return g.partial, nil
		}
	case MethodExact:
		if g.exact != nil {
			return g.exact, nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidMethod, method)
	}
	return nil, fmt.Errorf("no hash function configured for %s", method)
}

// hashJob locates one member of one size bucket.
type hashJob struct {
	bucket int
	member int
	path   string
}

// Group finds duplicate groups among files using the given method.
//
// Files with a unique size are never hashed, and when no size is shared the
// hasher is not invoked at all. Files that fail to hash are reported in
// Result.Errors and excluded; they never make Group fail. The returned error
// is non-nil only when ctx is cancelled, in which case no new hashes are
// started, in-flight hashes complete, and the partial result is discarded.
func (g *Grouper) Group(ctx context.Context, files []types.FileInfo, method Method) (*Result, error) {
	start := time.Now()

	fn, err := g.hashFunc(method)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Groups: []DuplicateGroup{},
		Method: method,
	}

	buckets := BucketBySize(files)
	if len(buckets) == 0 {
		logger.Debug("no shared sizes, skipping hashing", "files", len(files), "method", method)
		result.Elapsed = time.Since(start)
		return result, nil
	}

	sizes := buckets.Sizes()
	members := make([][]types.FileInfo, len(sizes))
	digests := make([][]string, len(sizes))
	var jobs []hashJob
	for i, size := range sizes {
		members[i] = buckets[size]
		digests[i] = make([]string, len(members[i]))
		for j, f := range members[i] {
			jobs = append(jobs, hashJob{bucket: i, member: j, path: f.Path})
		}
	}
	result.Candidates = len(jobs)

	logger.Debug("hashing candidates",
		"method", method,
		"files", len(files),
		"candidates", len(jobs),
		"buckets", len(sizes),
		"workers", g.workers)

	failures := make([]error, len(jobs))
	var hashed, failed atomic.Int64
	total := int64(len(jobs))

	var eg errgroup.Group
	eg.SetLimit(g.workers)

dispatch:
	for n, job := range jobs {
		select {
		case <-ctx.Done():
			break dispatch
		default:
		}

		eg.Go(func() error {
			digest, err := fn(job.path)
			if err != nil {
				failures[n] = err
				failed.Add(1)
			} else {
				digests[job.bucket][job.member] = digest
				hashed.Add(1)
			}
			g.reportProgress(Progress{Method: method, Hashed: hashed.Load(), Failed: failed.Load(), Total: total}, false)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warn("grouping cancelled", "method", method, "hashed", hashed.Load(), "total", total)
		return nil, fmt.Errorf("grouping by %s hash: %w", method, err)
	}

	g.reportProgress(Progress{Method: method, Hashed: hashed.Load(), Failed: failed.Load(), Total: total}, true)

	for n, err := range failures {
		if err == nil {
			continue
		}
		logger.Warn("skipping unreadable file", "path", jobs[n].path, "err", err)
		result.Errors = append(result.Errors, HashError{Path: jobs[n].path, Err: err})
	}

	for i := range sizes {
		order, byDigest := groupByDigest(members[i], digests[i])
		for _, digest := range order {
			group, err := NewDuplicateGroup(digest, byDigest[digest], method)
			if err != nil {
				// Unreachable: members share a bucket and a digest group has two or more files.
				return nil, err
			}
			result.Groups = append(result.Groups, group)
		}
	}

	result.FilesHashed = hashed.Load()
	result.Elapsed = time.Since(start)

	logger.Info("grouping complete",
		"method", method,
		"groups", len(result.Groups),
		"hashed", result.FilesHashed,
		"errors", len(result.Errors),
		"elapsed", result.Elapsed)

	return result, nil
}

// reportProgress throttles callbacks to one per 10ms unless forced.
func (g *Grouper) reportProgress(p Progress, force bool) {
	if g.onProgress == nil {
		return
	}

	now := time.Now().UnixMilli()
	if !force {
		last := g.lastProgress.Load()
		if now-last < 10 || !g.lastProgress.CompareAndSwap(last, now) {
			return
		}
	} else {
		g.lastProgress.Store(now)
	}

	g.onProgress(p)
}
