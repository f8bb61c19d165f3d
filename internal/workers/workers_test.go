package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(EnvOverride, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Very low multiplier",
			multiplier: 0.01,
			minExpect:  1,
			maxExpect:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)

			if got < tt.minExpect {
				t.Errorf("Count(%v, %d) = %d, expected >= %d", tt.multiplier, tt.limit, got, tt.minExpect)
			}
			if got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected <= %d", tt.multiplier, tt.limit, got, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int
	}{
		{"Valid override", "8", 0, 8},
		{"Override with limit", "20", 10, 10},
		{"Override below limit", "5", 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.envValue)

			if got := Count(1.0, tt.limit); got != tt.expected {
				t.Errorf("Count(1.0, %d) with %s=%s = %d, want %d", tt.limit, EnvOverride, tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestOverrideIgnoresInvalidValues(t *testing.T) {
	for _, v := range []string{"invalid", "0", "-5", ""} {
		t.Run("value="+v, func(t *testing.T) {
			t.Setenv(EnvOverride, v)
			if _, ok := Override(); ok {
				t.Errorf("Override() accepted %q", v)
			}
			if got := ForCPU(0); got < 1 {
				t.Errorf("ForCPU(0) = %d, should never be less than 1", got)
			}
		})
	}
}

func TestForIOCapsAtLimit(t *testing.T) {
	t.Setenv(EnvOverride, "")

	if got := ForIO(1); got != 1 {
		t.Errorf("ForIO(1) = %d, want 1", got)
	}
	if got := ForIO(0); got < 1 || got > runtime.GOMAXPROCS(0)*2 {
		t.Errorf("ForIO(0) = %d, want between 1 and %d", got, runtime.GOMAXPROCS(0)*2)
	}
}
