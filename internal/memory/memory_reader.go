package reader

import (
	"math"
	"strconv"
	"time"

	"k8s.io/apimachinery/pkg/api/resource"
)

// MemorySnapshot represents a derived usage breakdown in bytes.
// Used + Free always equals Total.
type MemorySnapshot struct {
	Total     float64   `json:"total"`
	Used      float64   `json:"used"`
	Free      float64   `json:"free"`
	Timestamp time.Time `json:"timestamp"`
}

// RawCounters holds the byte counts read from the OS on every sample
type RawCounters struct {
	Active     float64
	Wired      float64
	Compressed float64
}

// CounterSource provides an interface for querying OS memory counters
type CounterSource interface {
	// TotalBytes returns the physical memory size. Called once.
	TotalBytes() (float64, error)
	// Counters returns the active, wired and compressed byte counts.
	Counters() (RawCounters, error)
}

// Derive turns raw counters into a usage breakdown against total.
func Derive(total float64, counters RawCounters) MemorySnapshot {
	used := counters.Active + counters.Wired + counters.Compressed
	if total > 0 && used > total {
		used = total
	}

	return MemorySnapshot{
		Total: total,
		Used:  used,
		Free:  total - used,
	}
}

// UtilizationRatio returns Used/Total, or 0 when the total is unknown.
func UtilizationRatio(snapshot MemorySnapshot) float64 {
	if snapshot.Total <= 0 {
		return 0
	}
	return math.Min(math.Max(snapshot.Used/snapshot.Total, 0), 1)
}

// FormatBytes renders a byte count with binary SI suffixes (Ki, Mi, Gi...).
// Values are rounded to the Mi (or Ki) boundary first so the quantity
// picks a short suffix.
func FormatBytes(bytes float64) string {
	if bytes <= 0 {
		return "0"
	}

	n := int64(math.Round(bytes))
	if n < 1<<10 {
		// below 1Ki a quantity falls back to decimal suffixes ("1k")
		return strconv.FormatInt(n, 10)
	}
	switch {
	case bytes >= 1<<20:
		n = int64(math.Round(bytes/(1<<20))) << 20
	case bytes >= 1<<10:
		n = int64(math.Round(bytes/(1<<10))) << 10
	}
	return resource.NewQuantity(n, resource.BinarySI).String()
}
