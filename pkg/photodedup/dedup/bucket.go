package dedup

import (
	"sort"

	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

// SizeBuckets maps a byte size to the files of that size, in input order.
// Buckets returned by BucketBySize always hold at least two files.
type SizeBuckets map[int64][]types.FileInfo

// BucketBySize partitions files by exact size and drops sizes held by a
// single file, since such a file cannot have a duplicate. Zero-length files
// form an ordinary bucket. Duplicate paths in the input are not collapsed.
func BucketBySize(files []types.FileInfo) SizeBuckets {
	all := make(map[int64][]types.FileInfo)
	for _, f := range files {
		all[f.Size] = append(all[f.Size], f)
	}

	buckets := make(SizeBuckets)
	for size, members := range all {
		if len(members) > 1 {
			buckets[size] = members
		}
	}
	return buckets
}

// Sizes returns the bucket sizes in ascending order.
func (b SizeBuckets) Sizes() []int64 {
	sizes := make([]int64, 0, len(b))
	for size := range b {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	return sizes
}

// Files returns the number of files across all buckets.
func (b SizeBuckets) Files() int {
	n := 0
	for _, members := range b {
		n += len(members)
	}
	return n
}

// groupByDigest splits one size bucket by digest, keeping digest groups in
// first-seen order and dropping singletons. Members whose digest is empty
// failed to hash and are skipped.
func groupByDigest(members []types.FileInfo, digests []string) ([]string, map[string][]types.FileInfo) {
	byDigest := make(map[string][]types.FileInfo)
	var order []string
	for i, f := range members {
		d := digests[i]
		if d == "" {
			continue
		}
		if _, seen := byDigest[d]; !seen {
			order = append(order, d)
		}
		byDigest[d] = append(byDigest[d], f)
	}

	kept := order[:0]
	for _, d := range order {
		if len(byDigest[d]) > 1 {
			kept = append(kept, d)
		} else {
			delete(byDigest, d)
		}
	}
	return kept, byDigest
}
