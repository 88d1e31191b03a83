package tuner

// Worker limits.
const (
	// maxScanWorkers caps directory walking goroutines.
	maxScanWorkers = 64

	// minScanWorkers keeps traversal parallel on small systems; directory
	// reads are metadata-bound rather than CPU-bound.
	minScanWorkers = 4

	// maxHashWorkers caps concurrent hash operations.
	maxHashWorkers = 32

	// minHashWorkers is the floor for concurrent hash operations.
	minHashWorkers = 2
)

// Memory-based hash sizing constants.
const (
	// bytesPerHashWorker estimates memory held per in-flight hash: read
	// buffers plus page cache pressure from the file being read.
	bytesPerHashWorker = 16 * 1024 * 1024

	// hashMemoryFraction is the fraction of available RAM hashing may claim.
	hashMemoryFraction = 0.05
)

// OptimalConfig contains tuned worker counts for the detected system.
type OptimalConfig struct {
	// ScanWorkers is the number of directory walking workers.
	ScanWorkers int

	// HashWorkers bounds concurrent hash operations.
	HashWorkers int
}

// Calculate returns optimal configuration based on system resources.
//
// The calculation logic:
//   - ScanWorkers: max(NumCPU, 4), capped at 64
//   - HashWorkers: NumCPU * 2 for I/O bound reads, bounded by a share of
//     available RAM and capped at 32
func Calculate(resources SystemResources) OptimalConfig {
	scanWorkers := max(resources.CPUCores, minScanWorkers)
	scanWorkers = min(scanWorkers, maxScanWorkers)

	hashWorkers := resources.CPUCores * 2
	hashWorkers = min(hashWorkers, memoryBoundWorkers(resources.AvailableRAM))
	hashWorkers = max(hashWorkers, minHashWorkers)
	hashWorkers = min(hashWorkers, maxHashWorkers)

	return OptimalConfig{
		ScanWorkers: scanWorkers,
		HashWorkers: hashWorkers,
	}
}

// CalculateWithOverrides applies user overrides to the optimal config.
// An override greater than 0 replaces the calculated value for its stage,
// still respecting that stage's cap. Zero or negative keeps the calculation.
func CalculateWithOverrides(resources SystemResources, scanOverride, hashOverride int) OptimalConfig {
	config := Calculate(resources)

	if scanOverride > 0 {
		config.ScanWorkers = min(scanOverride, maxScanWorkers)
	}
	if hashOverride > 0 {
		config.HashWorkers = min(hashOverride, maxHashWorkers)
	}

	return config
}

// memoryBoundWorkers returns how many hash workers fit in the RAM share.
func memoryBoundWorkers(availableRAM int64) int {
	budget := float64(availableRAM) * hashMemoryFraction
	return int(budget / bytesPerHashWorker)
}
