package test

import (
	"fmt"
	"testing"
	"time"
)

// TestTimer measures how long a test case takes.
type TestTimer struct {
	start time.Time
	name  string
}

func NewTestTimer(name string) *TestTimer {
	return &TestTimer{start: time.Now(), name: name}
}

// Stop prints and returns the elapsed time.
func (t *TestTimer) Stop() time.Duration {
	duration := time.Since(t.start)
	fmt.Printf("⏱️  %s took %v\n", t.name, duration)
	return duration
}

// PerformanceAssertion fails t when duration exceeds maxDuration.
func PerformanceAssertion(t *testing.T, testName string, duration, maxDuration time.Duration) {
	t.Helper()
	if duration > maxDuration {
		t.Errorf("❌ %s performance test failed: took %v, expected less than %v", testName, duration, maxDuration)
	} else {
		t.Logf("✅ %s performance test passed: took %v (under %v limit)", testName, duration, maxDuration)
	}
}

type TestResult struct {
	Name     string
	Duration time.Duration
	Passed   bool
	Error    error
}

// TestSuiteResult collects per-case timings for a summary line at the end.
type TestSuiteResult struct {
	SuiteName   string
	TotalTests  int
	PassedTests int
	FailedTests int
	TotalTime   time.Duration
	Results     []TestResult
}

func NewTestSuiteResult(suiteName string) *TestSuiteResult {
	return &TestSuiteResult{SuiteName: suiteName, Results: make([]TestResult, 0)}
}

// Track times fn as a subtest and records whether it passed.
func (tsr *TestSuiteResult) Track(t *testing.T, name string, fn func(t *testing.T)) {
	t.Helper()
	var duration time.Duration
	passed := t.Run(name, func(t *testing.T) {
		timer := NewTestTimer(name)
		defer func() { duration = timer.Stop() }()
		fn(t)
	})
	tsr.AddResult(TestResult{Name: name, Duration: duration, Passed: passed})
}

func (tsr *TestSuiteResult) AddResult(result TestResult) {
	tsr.Results = append(tsr.Results, result)
	tsr.TotalTests++
	tsr.TotalTime += result.Duration
	if result.Passed {
		tsr.PassedTests++
	} else {
		tsr.FailedTests++
	}
}

func (tsr *TestSuiteResult) PrintSummary() {
	if tsr.TotalTests == 0 {
		return
	}
	fmt.Printf("\n📊 Test Suite Summary: %s\n", tsr.SuiteName)
	fmt.Printf("   Passed: %d ✅  Failed: %d ❌  Total Time: %v\n", tsr.PassedTests, tsr.FailedTests, tsr.TotalTime)
	for _, result := range tsr.Results {
		status := "✅"
		if !result.Passed {
			status = "❌"
		}
		fmt.Printf("   %s %s: %v\n", status, result.Name, result.Duration)
	}
}
