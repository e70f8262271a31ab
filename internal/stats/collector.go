// Package stats samples process runtime metrics during a build and
// writes a peak-usage report, useful when sizing machines for
// planet-scale extracts.
package stats

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/process"
)

type Sample struct {
	Timestamp      time.Time `json:"timestamp"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`

	HeapAlloc       uint64 `json:"heap_alloc"`
	Sys             uint64 `json:"sys"`
	NumGC           uint32 `json:"num_gc"`
	ProcessRSSBytes uint64 `json:"process_rss_bytes"`

	CPUPercent   float64 `json:"cpu_percent"`
	NumGoroutine int     `json:"num_goroutine"`
}

type Summary struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Elapsed   time.Duration `json:"elapsed_ns"`

	PeakHeapAlloc  uint64  `json:"peak_heap_alloc"`
	PeakSys        uint64  `json:"peak_sys"`
	PeakProcessRSS uint64  `json:"peak_process_rss"`
	PeakCPUPercent float64 `json:"peak_cpu_percent"`
	AvgCPUPercent  float64 `json:"avg_cpu_percent"`
	PeakGoroutines int     `json:"peak_goroutines"`
	TotalGCCycles  uint32  `json:"total_gc_cycles"`
	SampleCount    int     `json:"sample_count"`
}

// Collector periodically samples runtime and process metrics.
type Collector struct {
	mu        sync.Mutex
	samples   []Sample
	startTime time.Time
	stopChan  chan struct{}
	doneChan  chan struct{}
	interval  time.Duration
	proc      *process.Process
	log       *slog.Logger
}

func NewCollector(interval time.Duration, log *slog.Logger) (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process info: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Collector{
		samples:  make([]Sample, 0, 1000),
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
		proc:     proc,
		log:      log.With("component", "stats"),
	}, nil
}

func (c *Collector) Start() {
	c.startTime = time.Now()
	go c.collect()
}

func (c *Collector) collect() {
	defer close(c.doneChan)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.sample()
	for {
		select {
		case <-c.stopChan:
			c.sample()
			return
		case <-ticker.C:
			c.sample()
		}
	}
}

func (c *Collector) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	point := Sample{
		Timestamp:      time.Now(),
		ElapsedSeconds: time.Since(c.startTime).Seconds(),
		HeapAlloc:      memStats.HeapAlloc,
		Sys:            memStats.Sys,
		NumGC:          memStats.NumGC,
		NumGoroutine:   runtime.NumGoroutine(),
	}

	if memInfo, err := c.proc.MemoryInfo(); err == nil && memInfo != nil {
		point.ProcessRSSBytes = memInfo.RSS
	}
	if cpuPercent, err := c.proc.CPUPercent(); err == nil {
		point.CPUPercent = cpuPercent
	}

	c.log.Debug("runtime sample",
		"heap", humanize.IBytes(point.HeapAlloc),
		"rss", humanize.IBytes(point.ProcessRSSBytes),
		"cpu_percent", fmt.Sprintf("%.1f", point.CPUPercent),
		"goroutines", point.NumGoroutine,
	)

	c.mu.Lock()
	c.samples = append(c.samples, point)
	c.mu.Unlock()
}

// Stop stops sampling and returns the aggregated summary.
func (c *Collector) Stop() Summary {
	close(c.stopChan)
	<-c.doneChan

	c.mu.Lock()
	defer c.mu.Unlock()

	summary := Summary{
		StartTime: c.startTime,
		EndTime:   time.Now(),
	}
	summary.Elapsed = summary.EndTime.Sub(summary.StartTime)

	var totalCPU float64
	for _, s := range c.samples {
		summary.PeakHeapAlloc = max(summary.PeakHeapAlloc, s.HeapAlloc)
		summary.PeakSys = max(summary.PeakSys, s.Sys)
		summary.PeakProcessRSS = max(summary.PeakProcessRSS, s.ProcessRSSBytes)
		summary.PeakCPUPercent = max(summary.PeakCPUPercent, s.CPUPercent)
		summary.PeakGoroutines = max(summary.PeakGoroutines, s.NumGoroutine)
		summary.TotalGCCycles = max(summary.TotalGCCycles, s.NumGC)
		totalCPU += s.CPUPercent
	}

	summary.SampleCount = len(c.samples)
	if summary.SampleCount > 0 {
		summary.AvgCPUPercent = totalCPU / float64(summary.SampleCount)
	}
	return summary
}

// SaveToFile writes a human-readable report of the summary.
func (s Summary) SaveToFile(filename string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "runtime statistics\n\n")
	fmt.Fprintf(&sb, "start:           %s\n", s.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&sb, "end:             %s\n", s.EndTime.Format(time.RFC3339))
	fmt.Fprintf(&sb, "elapsed:         %s\n", s.Elapsed)
	fmt.Fprintf(&sb, "samples:         %d\n\n", s.SampleCount)
	fmt.Fprintf(&sb, "peak heap:       %s\n", humanize.IBytes(s.PeakHeapAlloc))
	fmt.Fprintf(&sb, "peak sys:        %s\n", humanize.IBytes(s.PeakSys))
	fmt.Fprintf(&sb, "peak rss:        %s\n", humanize.IBytes(s.PeakProcessRSS))
	fmt.Fprintf(&sb, "peak cpu:        %.2f%%\n", s.PeakCPUPercent)
	fmt.Fprintf(&sb, "avg cpu:         %.2f%%\n", s.AvgCPUPercent)
	fmt.Fprintf(&sb, "peak goroutines: %d\n", s.PeakGoroutines)
	fmt.Fprintf(&sb, "gc cycles:       %d\n", s.TotalGCCycles)

	if err := os.WriteFile(filename, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return nil
}
