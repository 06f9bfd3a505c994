package memory

import (
	"math"
	"runtime/debug"
	"testing"
)

// restoreLimit puts the runtime memory limit back after a test changes it.
func restoreLimit(t *testing.T) {
	t.Helper()
	old := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(old) })
}

func TestConfigureFromEnv(t *testing.T) {
	tests := []struct {
		name           string
		memoryLimit    string
		memoryRatio    string
		wantConfigured bool
		wantSource     string
		wantGoLimit    int64
		wantRatio      float64
	}{
		{
			name:       "nothing set",
			wantSource: sourceNone,
		},
		{
			name:           "memory limit with default ratio",
			memoryLimit:    "1000000",
			wantConfigured: true,
			wantSource:     sourceMemoryLimit,
			wantGoLimit:    850000,
			wantRatio:      DefaultMemoryRatio,
		},
		{
			name:           "custom ratio",
			memoryLimit:    "1000000",
			memoryRatio:    "0.5",
			wantConfigured: true,
			wantSource:     sourceMemoryLimit,
			wantGoLimit:    500000,
			wantRatio:      0.5,
		},
		{
			name:           "ratio out of range falls back",
			memoryLimit:    "1000000",
			memoryRatio:    "1.5",
			wantConfigured: true,
			wantSource:     sourceMemoryLimit,
			wantGoLimit:    850000,
			wantRatio:      DefaultMemoryRatio,
		},
		{
			name:        "invalid limit",
			memoryLimit: "lots",
			wantSource:  sourceNone,
		},
		{
			name:        "negative limit",
			memoryLimit: "-5",
			wantSource:  sourceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreLimit(t)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", tt.memoryLimit)
			t.Setenv("MEMORY_RATIO", tt.memoryRatio)

			got := ConfigureFromEnv()
			if got.Configured != tt.wantConfigured {
				t.Errorf("Configured = %v, want %v", got.Configured, tt.wantConfigured)
			}
			if got.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", got.Source, tt.wantSource)
			}
			if got.GoMemLimit != tt.wantGoLimit {
				t.Errorf("GoMemLimit = %d, want %d", got.GoMemLimit, tt.wantGoLimit)
			}
			if got.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %v, want %v", got.Ratio, tt.wantRatio)
			}
			if tt.wantConfigured {
				if limit := debug.SetMemoryLimit(-1); limit != tt.wantGoLimit {
					t.Errorf("runtime limit = %d, want %d", limit, tt.wantGoLimit)
				}
			}
		})
	}
}

func TestConfigureFromEnvGOMEMLIMITWins(t *testing.T) {
	restoreLimit(t)
	t.Setenv("GOMEMLIMIT", "500MiB")
	t.Setenv("MEMORY_LIMIT", "1073741824")

	// GOMEMLIMIT is only read at process start, so simulate its effect.
	debug.SetMemoryLimit(500 << 20)

	got := ConfigureFromEnv()
	if got.Source != sourceGOMEMLIMIT {
		t.Errorf("Source = %q, want %q", got.Source, sourceGOMEMLIMIT)
	}
	if !got.Configured || got.GoMemLimit != 500<<20 {
		t.Errorf("result = %+v", got)
	}
	if got.ContainerLimit != 0 {
		t.Error("MEMORY_LIMIT should be ignored when GOMEMLIMIT is set")
	}
}

func TestCurrentLimit(t *testing.T) {
	restoreLimit(t)

	debug.SetMemoryLimit(math.MaxInt64)
	if got := currentLimit(); got != 0 {
		t.Errorf("currentLimit() with no limit = %d, want 0", got)
	}

	debug.SetMemoryLimit(123456)
	if got := currentLimit(); got != 123456 {
		t.Errorf("currentLimit() = %d, want 123456", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1 << 20, "1.0 MiB"},
		{5 << 30, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
