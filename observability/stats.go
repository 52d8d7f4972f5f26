// Package observability reads technical metrics of the running
// process.
package observability

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/process"
)

// SelfStats groups one checkpoint of process and Go runtime readings.
type SelfStats struct {
	PID        int64   `json:"pid"`
	PidStatus  string  `json:"pid_status"`
	CpuPercent float64 `json:"cpu_percent"`
	RamBytes   uint64  `json:"ram_bytes"`
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
}

type Monitor struct {
	proc *process.Process
	log  *slog.Logger
}

func NewMonitor(log *slog.Logger) (*Monitor, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("attach to own process: %w", err)
	}
	return &Monitor{proc: p, log: log}, nil
}

// Snapshot collects RSS, CPU and OS status for the process plus the Go
// heap counters.
func (m *Monitor) Snapshot() (SelfStats, error) {
	memInfo, err := m.proc.MemoryInfo()
	if err != nil {
		return SelfStats{}, err
	}

	cpu, err := m.proc.CPUPercent()
	if err != nil {
		return SelfStats{}, err
	}

	status, err := m.proc.Status()
	if err != nil {
		return SelfStats{}, err
	}

	var rt runtime.MemStats
	runtime.ReadMemStats(&rt)

	stats := SelfStats{
		PID:        int64(os.Getpid()),
		PidStatus:  status,
		CpuPercent: cpu,
		RamBytes:   memInfo.RSS,
		AllocMemMb: rt.Alloc / 1024 / 1024,
		NumGC:      rt.NumGC,
	}
	m.log.Debug("Self stats collected",
		"ram_bytes", stats.RamBytes,
		"cpu", stats.CpuPercent,
		"status", stats.PidStatus)
	return stats, nil
}
