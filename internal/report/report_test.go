package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFinishComputesDuration(t *testing.T) {
	s := NewSummary()
	start := time.Now()
	end := start.Add(90 * time.Second)
	s.Finish(start, end)

	if s.Duration != 90*time.Second {
		t.Errorf("expected 90s duration, got %v", s.Duration)
	}
}

func TestWriteJSON(t *testing.T) {
	summary := NewSummary()
	summary.PagesCrawled = 5
	var buf bytes.Buffer
	if err := WriteJSON(&buf, summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"PagesCrawled": 5`) {
		t.Errorf("expected JSON to contain PagesCrawled: 5, got %s", buf.String())
	}
}

func TestWriteText(t *testing.T) {
	summary := NewSummary()
	summary.PagesCrawled = 5
	summary.QualityRejections = 1
	summary.StatusCodes[200] = 4
	summary.StatusCodes[500] = 1

	var buf bytes.Buffer
	if err := WriteText(&buf, summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Pages crawled:       5") {
		t.Errorf("expected text to contain pages crawled count, got %q", out)
	}
	if !strings.Contains(out, "200: 4") {
		t.Errorf("expected text to contain 200: 4")
	}
}

func TestWriteHTML(t *testing.T) {
	summary := NewSummary()
	summary.PackagesProcessed = 10
	summary.DedupRemovals = 2

	var buf bytes.Buffer
	if err := WriteHTML(&buf, summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<title>Harvest Cycle Report</title>") {
		t.Errorf("expected HTML title")
	}
	if !strings.Contains(out, "Dedup Removals") {
		t.Errorf("expected HTML to contain Dedup Removals")
	}
}
