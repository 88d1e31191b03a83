package scanner

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/photodedup/pkg/photodedup/logging"
	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

var logger = logging.Get("scanner")

// Fatal root validation failures.
var (
	ErrRootNotFound = errors.New("root does not exist")
	ErrRootNotDir   = errors.New("root is not a directory")
	ErrRootIgnored  = errors.New("root directory matches an ignore rule")
)

// ValidationError reports a root that cannot be scanned at all. Unlike
// per-path errors collected in ScanResult.Errors, it aborts the run.
type ValidationError struct {
	Root string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Root, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Scanner performs parallel directory scanning using fastwalk.
type Scanner struct {
	opts Options

	dirsScanned  atomic.Int64
	filesScanned atomic.Int64
	images       atomic.Int64

	currentPath atomic.Value

	mu           sync.Mutex
	results      []types.FileInfo
	skippedDirs  []string
	skippedFiles []string
	errors       []types.ScanError

	lastProgress atomic.Int64
	walkComplete atomic.Bool

	root string
}

// New creates a new Scanner with the given options.
// Options are validated and defaults are applied.
func New(opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Scanner{opts: opts}
	s.currentPath.Store("")
	return s, nil
}

// Scan walks the root and returns the image files found.
//
// A root that is missing, not a directory, or ignored by the filter yields a
// *ValidationError and no result. Unreadable directories and files below the
// root are recorded in ScanResult.Errors and the walk continues. If ctx is
// cancelled the walk stops and ctx's error is returned.
func (s *Scanner) Scan(ctx context.Context) (*types.ScanResult, error) {
	startTime := time.Now()

	root, err := s.validateRoot()
	if err != nil {
		logger.Error("invalid scan root", "root", s.opts.Root, "err", err)
		return nil, err
	}
	s.root = root

	logger.Info("scan started", "root", root, "workers", s.opts.Workers)

	s.dirsScanned.Add(1)
	s.currentPath.Store(root)
	s.reportProgressForce()

	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: s.opts.Workers,
	}

	walkErr := fastwalk.Walk(&conf, root, s.walkCallback(ctx))
	if err := ctx.Err(); err != nil {
		logger.Warn("scan cancelled", "root", root, "dirs", s.dirsScanned.Load())
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if walkErr != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, walkErr)
	}

	s.walkComplete.Store(true)
	s.reportProgressForce()

	result := s.buildResult(startTime)

	logger.Info("scan complete",
		"root", root,
		"dirs", result.DirsScanned,
		"files", result.FilesScanned,
		"images", len(result.Files),
		"skipped_dirs", len(result.SkippedDirs),
		"errors", len(result.Errors),
		"elapsed", result.Elapsed)

	return result, nil
}

// buildResult assembles the result in path order. fastwalk visits
// directories concurrently, so the collected slices arrive unordered.
func (s *Scanner) buildResult(startTime time.Time) *types.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	slices.SortFunc(s.results, func(a, b types.FileInfo) int {
		return cmp.Compare(a.Path, b.Path)
	})
	slices.Sort(s.skippedDirs)
	slices.Sort(s.skippedFiles)
	slices.SortFunc(s.errors, func(a, b types.ScanError) int {
		return cmp.Compare(a.Path, b.Path)
	})

	var total int64
	for _, f := range s.results {
		total += f.Size
	}

	files := s.results
	if files == nil {
		files = []types.FileInfo{}
	}

	return &types.ScanResult{
		Root:         s.root,
		Files:        files,
		DirsScanned:  s.dirsScanned.Load(),
		FilesScanned: s.filesScanned.Load(),
		TotalSize:    total,
		SkippedDirs:  s.skippedDirs,
		SkippedFiles: s.skippedFiles,
		Elapsed:      time.Since(startTime),
		Errors:       s.errors,
	}
}

// validateRoot resolves the root path to absolute and verifies that it is a
// directory the filter allows.
func (s *Scanner) validateRoot() (string, error) {
	given := filepath.Clean(s.opts.Root)

	root, err := filepath.Abs(given)
	if err != nil {
		return "", &ValidationError{Root: s.opts.Root, Err: err}
	}

	name := filepath.Base(given)
	if name != "." && name != ".." && name != string(filepath.Separator) && s.opts.Filter.IsIgnoredDir(name) {
		return "", &ValidationError{Root: root, Err: ErrRootIgnored}
	}

	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", &ValidationError{Root: root, Err: ErrRootNotFound}
	case err != nil:
		return "", &ValidationError{Root: root, Err: err}
	case !info.IsDir():
		return "", &ValidationError{Root: root, Err: ErrRootNotDir}
	}

	return root, nil
}

// walkCallback returns the callback function for fastwalk.Walk. It is
// invoked concurrently from fastwalk's workers.
func (s *Scanner) walkCallback(ctx context.Context) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			s.addError(path, err)
			if d != nil && d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return s.handleDirectory(path, d)
		}

		if d.Type().IsRegular() {
			s.processFile(path, d)
			return nil
		}

		// Symlinks, sockets and devices are never followed or hashed.
		s.filesScanned.Add(1)
		s.skipFile(path)
		return nil
	}
}

// handleDirectory counts a directory or prunes it when the filter ignores
// its name. The root is counted by Scan and never pruned.
func (s *Scanner) handleDirectory(path string, d fs.DirEntry) error {
	if path == s.root {
		return nil
	}
	if s.opts.Filter.IsIgnoredDir(d.Name()) {
		s.mu.Lock()
		s.skippedDirs = append(s.skippedDirs, path)
		s.mu.Unlock()
		logger.Debug("skipping ignored directory", "path", path)
		return fastwalk.SkipDir
	}

	s.dirsScanned.Add(1)
	s.currentPath.Store(path)
	s.reportProgress()
	return nil
}

// processFile handles a regular file entry.
func (s *Scanner) processFile(path string, d fs.DirEntry) {
	s.filesScanned.Add(1)

	if !s.opts.Filter.MatchFile(path) {
		s.skipFile(path)
		return
	}

	info, err := d.Info()
	if err != nil {
		s.addError(path, err)
		return
	}

	if !s.opts.Filter.MatchSize(info.Size()) {
		s.skipFile(path)
		return
	}

	s.images.Add(1)

	s.mu.Lock()
	s.results = append(s.results, types.FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
	s.mu.Unlock()
}

func (s *Scanner) skipFile(path string) {
	s.mu.Lock()
	s.skippedFiles = append(s.skippedFiles, path)
	s.mu.Unlock()
}

// addError records a recoverable per-path error.
func (s *Scanner) addError(path string, err error) {
	kind := ClassifyError(err)
	logger.Warn("scan error", "path", path, "kind", kind, "err", err)

	s.mu.Lock()
	s.errors = append(s.errors, types.ScanError{
		Path:  path,
		Kind:  kind,
		Error: err.Error(),
	})
	s.mu.Unlock()
}

// ClassifyError maps a filesystem error to an ErrorKind.
func ClassifyError(err error) types.ErrorKind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return types.ErrorPermission
	case errors.Is(err, fs.ErrNotExist):
		return types.ErrorNotFound
	case errors.Is(err, syscall.ENOTDIR):
		return types.ErrorNotDir
	default:
		return types.ErrorIO
	}
}

// reportProgress calls the progress callback if configured.
// Throttles calls to avoid excessive overhead.
func (s *Scanner) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return
	}

	s.sendProgress()
}

// reportProgressForce calls the progress callback immediately, bypassing throttle.
func (s *Scanner) reportProgressForce() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.sendProgress()
}

func (s *Scanner) sendProgress() {
	currentPath, _ := s.currentPath.Load().(string)

	s.opts.OnProgress(types.ScanProgress{
		DirsScanned:  s.dirsScanned.Load(),
		FilesScanned: s.filesScanned.Load(),
		Images:       s.images.Load(),
		CurrentPath:  currentPath,
		WalkComplete: s.walkComplete.Load(),
	})
}
