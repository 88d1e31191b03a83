// Package hasher computes SHA-256 content digests of files for the duplicate
// detection engine. Two strategies are provided: a partial digest over a
// leading prefix of the file, and a full digest over the entire content read
// in bounded chunks.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// Default read sizes.
const (
	// DefaultPartialSize is the number of leading bytes digested by Partial.
	DefaultPartialSize = 4096

	// DefaultChunkSize is the read buffer size used by Full.
	DefaultChunkSize = 8192
)

// DigestLen is the length of a hex-encoded SHA-256 digest.
const DigestLen = sha256.Size * 2

// Func digests the file at path. Implementations must be safe for concurrent
// use and must open their own file handle on every call.
type Func func(path string) (string, error)

// Options configures the read sizes of a Hasher.
type Options struct {
	// PartialSize is the prefix length in bytes read by Partial.
	PartialSize int

	// ChunkSize is the buffer size in bytes used to stream content in Full.
	ChunkSize int
}

// DefaultOptions returns the reference read sizes.
func DefaultOptions() Options {
	return Options{
		PartialSize: DefaultPartialSize,
		ChunkSize:   DefaultChunkSize,
	}
}

// Validate replaces non-positive sizes with their defaults.
func (o *Options) Validate() {
	if o.PartialSize < 1 {
		o.PartialSize = DefaultPartialSize
	}
	if o.ChunkSize < 1 {
		o.ChunkSize = DefaultChunkSize
	}
}

// Error reports a failure to read a file while hashing it.
// It is always recoverable: callers skip the file and continue.
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("hash %s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsPermission reports whether the failure was a permission error.
func (e *Error) IsPermission() bool {
	return errors.Is(e.Err, os.ErrPermission)
}

// IsNotExist reports whether the file vanished before it could be hashed.
func (e *Error) IsNotExist() bool {
	return errors.Is(e.Err, os.ErrNotExist)
}

// Hasher produces hex SHA-256 digests. The zero value is not usable; build one
// with New.
type Hasher struct {
	opts Options
}

// New creates a Hasher. Invalid sizes fall back to the defaults.
func New(opts Options) *Hasher {
	opts.Validate()
	return &Hasher{opts: opts}
}

// Options returns the effective read sizes.
func (h *Hasher) Options() Options {
	return h.opts
}

// Partial digests at most the first PartialSize bytes of the file. Files
// shorter than the prefix are digested over their whole content. Equal
// partial digests only make two files candidates for being duplicates.
func (h *Hasher) Partial(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Path: path, Op: "partial", Err: err}
	}
	defer f.Close()

	sum := sha256.New()
	if _, err := io.CopyN(sum, f, int64(h.opts.PartialSize)); err != nil && !errors.Is(err, io.EOF) {
		return "", &Error{Path: path, Op: "partial", Err: err}
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// Full digests the entire file, streaming it in ChunkSize reads.
func (h *Hasher) Full(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Path: path, Op: "full", Err: err}
	}
	defer f.Close()

	sum := sha256.New()
	buf := make([]byte, h.opts.ChunkSize)
	if _, err := io.CopyBuffer(onlyWriter{sum}, onlyReader{f}, buf); err != nil {
		return "", &Error{Path: path, Op: "full", Err: err}
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// onlyReader and onlyWriter hide ReaderFrom/WriterTo so io.CopyBuffer
// honours the configured chunk size.
type onlyReader struct{ io.Reader }

type onlyWriter struct{ io.Writer }
