package startup

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"media-resolver/internal/logging"
)

// DefaultMemoryRatio is the share of the container memory limit given to
// the Go heap when only MEMORY_LIMIT is set.
const DefaultMemoryRatio = 0.9

// MemoryConfig describes how the Go soft memory limit was configured.
type MemoryConfig struct {
	Configured bool
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureMemory sets the Go soft memory limit from MEMORY_LIMIT (bytes,
// typically from the Kubernetes Downward API) scaled by MEMORY_RATIO. An
// explicit GOMEMLIMIT wins and is only reported. Call it before the first
// large allocation.
func ConfigureMemory() MemoryConfig {
	if os.Getenv("GOMEMLIMIT") != "" {
		mc := MemoryConfig{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			mc.Configured = true
			mc.GoMemLimit = limit
		}
		return mc
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		return MemoryConfig{Source: "none"}
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		logging.Warn("Ignoring MEMORY_LIMIT %q: not a positive byte count", raw)
		return MemoryConfig{Source: "none"}
	}

	ratio := DefaultMemoryRatio
	if rs := os.Getenv("MEMORY_RATIO"); rs != "" {
		r, err := strconv.ParseFloat(rs, 64)
		if err != nil || r <= 0 || r > 1 {
			logging.Warn("Ignoring MEMORY_RATIO %q, using %.2f", rs, DefaultMemoryRatio)
		} else {
			ratio = r
		}
	}

	goLimit := int64(float64(limit) * ratio)
	debug.SetMemoryLimit(goLimit)
	return MemoryConfig{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: limit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

// LogMemoryConfig logs the memory limit chosen by ConfigureMemory.
func LogMemoryConfig(mc MemoryConfig) {
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if !mc.Configured {
		logging.Info("  GOMEMLIMIT:      not set (set MEMORY_LIMIT to configure)")
		logging.Info("")
		return
	}
	switch mc.Source {
	case "MEMORY_LIMIT":
		logging.Info("  Container limit: %s", formatBytesStartup(mc.ContainerLimit))
		logging.Info("  GOMEMLIMIT:      %s (%.0f%%)", formatBytesStartup(mc.GoMemLimit), mc.Ratio*100)
	default:
		logging.Info("  GOMEMLIMIT:      %s (from %s)", formatBytesStartup(mc.GoMemLimit), mc.Source)
	}
	logging.Info("")
}

func formatBytesStartup(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
