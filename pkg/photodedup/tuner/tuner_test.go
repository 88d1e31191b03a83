package tuner

import (
	"runtime"
	"testing"
)

const gib = 1024 * 1024 * 1024

func TestDetect(t *testing.T) {
	resources, err := Detect()
	if err != nil {
		t.Fatalf("Detect() returned error: %v", err)
	}

	if resources.CPUCores != runtime.NumCPU() {
		t.Errorf("CPUCores = %d, want %d (runtime.NumCPU())", resources.CPUCores, runtime.NumCPU())
	}

	if resources.TotalRAM <= 0 {
		t.Errorf("TotalRAM = %d, want > 0", resources.TotalRAM)
	}

	if resources.AvailableRAM <= 0 {
		t.Errorf("AvailableRAM = %d, want > 0", resources.AvailableRAM)
	}

	if resources.AvailableRAM > resources.TotalRAM {
		t.Errorf("AvailableRAM (%d) > TotalRAM (%d), available should be <= total",
			resources.AvailableRAM, resources.TotalRAM)
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		resources SystemResources
		want      OptimalConfig
	}{
		{
			name:      "small system (2 cores, 2GB available)",
			resources: SystemResources{CPUCores: 2, TotalRAM: 4 * gib, AvailableRAM: 2 * gib},
			want:      OptimalConfig{ScanWorkers: 4, HashWorkers: 4},
		},
		{
			name:      "medium system (8 cores, 8GB available)",
			resources: SystemResources{CPUCores: 8, TotalRAM: 16 * gib, AvailableRAM: 8 * gib},
			want:      OptimalConfig{ScanWorkers: 8, HashWorkers: 16},
		},
		{
			name:      "large system (32 cores, 32GB available)",
			resources: SystemResources{CPUCores: 32, TotalRAM: 64 * gib, AvailableRAM: 32 * gib},
			want:      OptimalConfig{ScanWorkers: 32, HashWorkers: 32},
		},
		{
			name:      "many cores, little memory",
			resources: SystemResources{CPUCores: 16, TotalRAM: 2 * gib, AvailableRAM: 1 * gib},
			want:      OptimalConfig{ScanWorkers: 16, HashWorkers: 3},
		},
		{
			name:      "single core, no memory information",
			resources: SystemResources{CPUCores: 1},
			want:      OptimalConfig{ScanWorkers: 4, HashWorkers: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.resources)
			if got != tt.want {
				t.Errorf("Calculate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCalculate_WorkerCaps(t *testing.T) {
	resources := SystemResources{
		CPUCores:     128,
		TotalRAM:     256 * gib,
		AvailableRAM: 128 * gib,
	}

	config := Calculate(resources)

	if config.ScanWorkers != maxScanWorkers {
		t.Errorf("ScanWorkers = %d, want %d (capped)", config.ScanWorkers, maxScanWorkers)
	}
	if config.HashWorkers != maxHashWorkers {
		t.Errorf("HashWorkers = %d, want %d (capped)", config.HashWorkers, maxHashWorkers)
	}
}

func TestCalculateWithOverrides(t *testing.T) {
	resources := SystemResources{
		CPUCores:     8,
		TotalRAM:     16 * gib,
		AvailableRAM: 8 * gib,
	}

	tests := []struct {
		name     string
		scan     int
		hash     int
		wantScan int
		wantHash int
	}{
		{name: "no overrides", scan: 0, hash: 0, wantScan: 8, wantHash: 16},
		{name: "scan only", scan: 12, hash: 0, wantScan: 12, wantHash: 16},
		{name: "hash only", scan: -1, hash: 3, wantScan: 8, wantHash: 3},
		{name: "both capped", scan: 100, hash: 100, wantScan: 64, wantHash: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateWithOverrides(resources, tt.scan, tt.hash)
			if got.ScanWorkers != tt.wantScan {
				t.Errorf("ScanWorkers = %d, want %d", got.ScanWorkers, tt.wantScan)
			}
			if got.HashWorkers != tt.wantHash {
				t.Errorf("HashWorkers = %d, want %d", got.HashWorkers, tt.wantHash)
			}
		})
	}
}

func TestCalculate_Integration(t *testing.T) {
	resources, err := Detect()
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}

	config := Calculate(resources)

	if config.ScanWorkers < minScanWorkers || config.ScanWorkers > maxScanWorkers {
		t.Errorf("ScanWorkers = %d, want in [%d, %d]", config.ScanWorkers, minScanWorkers, maxScanWorkers)
	}
	if config.HashWorkers < minHashWorkers || config.HashWorkers > maxHashWorkers {
		t.Errorf("HashWorkers = %d, want in [%d, %d]", config.HashWorkers, minHashWorkers, maxHashWorkers)
	}
}
