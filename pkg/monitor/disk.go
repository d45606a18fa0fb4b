// pkg/monitor/disk.go - free-space check backing the disk monitor component.

package monitor

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// DiskStatus reports the observed state of one volume.
type DiskStatus struct {
	Path        string
	FreePercent float64
	FreeBytes   uint64
	TotalBytes  uint64
}

// Describe renders the status for the result line.
func (d DiskStatus) Describe() string {
	return fmt.Sprintf("%.1f%% free on %s (%.1f GB of %.1f GB)",
		d.FreePercent, d.Path,
		float64(d.FreeBytes)/(1<<30), float64(d.TotalBytes)/(1<<30))
}

// CheckDisk returns the volume status and whether free space meets the
// minimum percentage threshold.
func CheckDisk(path string, minFreePercent float64) (DiskStatus, bool, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return DiskStatus{}, false, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}

	status := DiskStatus{
		Path:        path,
		FreePercent: 100 - usage.UsedPercent,
		FreeBytes:   usage.Free,
		TotalBytes:  usage.Total,
	}
	return status, status.FreePercent >= minFreePercent, nil
}
