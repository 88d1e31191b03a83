//go:build darwin

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect detects available system resources (CPU and RAM).
// On darwin it uses sysctl: hw.memsize for total memory and
// vm.page_free_count for free pages.
func Detect() (SystemResources, error) {
	resources := SystemResources{
		CPUCores: runtime.NumCPU(),
	}

	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return resources, fmt.Errorf("sysctl hw.memsize: %w", err)
	}
	resources.TotalRAM = int64(memsize)
	resources.AvailableRAM = availableRAM(resources.TotalRAM)

	return resources, nil
}

// availableRAM reports free memory, falling back to half of total when the
// free page count is unavailable. macOS keeps free pages low by caching
// aggressively, so the fallback also applies when the count looks too small.
func availableRAM(totalRAM int64) int64 {
	fallback := totalRAM / 2

	pages, err := unix.SysctlUint32("vm.page_free_count")
	if err != nil {
		return fallback
	}

	free := int64(pages) * int64(unix.Getpagesize())
	if free < fallback/4 || free > totalRAM {
		return fallback
	}
	return free
}
