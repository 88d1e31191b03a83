//go:build linux

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect detects available system resources (CPU and RAM).
// On linux it uses runtime.NumCPU() for CPU cores and unix.Sysinfo for
// memory; available memory counts free RAM plus buffers.
func Detect() (SystemResources, error) {
	resources := SystemResources{
		CPUCores: runtime.NumCPU(),
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return resources, fmt.Errorf("sysinfo: %w", err)
	}

	unit := int64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	resources.TotalRAM = int64(info.Totalram) * unit

	available := (int64(info.Freeram) + int64(info.Bufferram)) * unit
	if available <= 0 || available > resources.TotalRAM {
		available = resources.TotalRAM / 2
	}
	resources.AvailableRAM = available

	return resources, nil
}
