package utils

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func TestDurationUS(t *testing.T) {
	d := 1234*time.Microsecond + 567*time.Nanosecond
	got := DurationUS(d)
	if math.Abs(got-1234.567) > 0.001 {
		t.Fatalf("want 1234.567µs, got %.3f", got)
	}
}

func TestPrintTimingStats(t *testing.T) {
	oldVerbose, oldOutput := Verbose, Output
	defer func() { Verbose, Output = oldVerbose, oldOutput }()

	var buf bytes.Buffer
	Verbose, Output = true, &buf
	stats := &TimingStats{
		TotalTime:       4 * time.Second,
		ForwardPassTime: time.Second,
	}
	PrintTimingStats(stats, 10)
	out := buf.String()
	if !strings.Contains(out, "Forward pass: 1s (25.0%)") {
		t.Errorf("missing forward share in:\n%s", out)
	}
	if !strings.Contains(out, "Average forward pass time: 100ms") {
		t.Errorf("missing per-step average in:\n%s", out)
	}
	if !strings.Contains(out, "Average training step: 100000.000µs") {
		t.Errorf("missing step time in µs in:\n%s", out)
	}

	// no division by zero for an empty run
	buf.Reset()
	PrintTimingStats(&TimingStats{}, 0)
	if strings.Contains(buf.String(), "Average") {
		t.Errorf("averages printed for zero steps")
	}

	buf.Reset()
	Verbose = false
	PrintTimingStats(stats, 10)
	if buf.Len() != 0 {
		t.Errorf("output written while not verbose")
	}
}
