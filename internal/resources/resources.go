// Package resources takes resource snapshots of the host guestbookd runs on.
//
// Snapshots are attached to the daemon health response so an operator can
// see memory pressure and load next to queue depth when batches slow down.
// System figures come from gopsutil; Go runtime figures from the runtime
// package.
package resources

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/concave-dev/guestbook/internal/logging"
)

// Snapshot is a point-in-time view of host and process resources.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	CPUCores int `json:"cpu_cores"`

	// System memory in bytes, not Go runtime memory
	MemoryTotal     uint64  `json:"memory_total"`
	MemoryUsed      uint64  `json:"memory_used"`
	MemoryAvailable uint64  `json:"memory_available"`
	MemoryUsage     float64 `json:"memory_usage"` // percent, 0-100

	GoRoutines int    `json:"goroutines"`
	GoMemAlloc uint64 `json:"go_mem_alloc"`
	GoMemSys   uint64 `json:"go_mem_sys"`
	GoGCCycles uint32 `json:"go_gc_cycles"`

	// Load averages are zero where the platform does not report them
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// Gather collects a snapshot. It never fails: when gopsutil cannot read
// system memory the Go runtime figures stand in for it.
func Gather() *Snapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	virtualMem, err := mem.VirtualMemory()
	if err != nil {
		logging.Warn("Failed to read system memory: %v", err)
		virtualMem = &mem.VirtualMemoryStat{
			Total:     memStats.Sys,
			Used:      memStats.Alloc,
			Available: memStats.Sys - memStats.Alloc,
		}
	}

	snap := &Snapshot{
		Timestamp:       time.Now(),
		CPUCores:        runtime.NumCPU(),
		MemoryTotal:     virtualMem.Total,
		MemoryUsed:      virtualMem.Used,
		MemoryAvailable: virtualMem.Available,
		MemoryUsage:     virtualMem.UsedPercent,
		GoRoutines:      runtime.NumGoroutine(),
		GoMemAlloc:      memStats.Alloc,
		GoMemSys:        memStats.Sys,
		GoGCCycles:      memStats.NumGC,
	}

	if avg, err := load.Avg(); err == nil {
		snap.Load1, snap.Load5, snap.Load15 = avg.Load1, avg.Load5, avg.Load15
	} else {
		logging.Debug("Load average unavailable: %v", err)
	}

	logging.Debug("Gathered resources: CPU=%d, Memory=%dMB, Goroutines=%d",
		snap.CPUCores, snap.MemoryTotal/(1024*1024), snap.GoRoutines)

	return snap
}
