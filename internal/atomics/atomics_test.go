package atomics

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	tests := []struct {
		name       string
		flipAfter  time.Duration
		timeout    time.Duration
		expectMet  bool
		neverFlips bool
	}{
		{name: "already true", flipAfter: 0, timeout: 50 * time.Millisecond, expectMet: true},
		{name: "becomes true before deadline", flipAfter: 20 * time.Millisecond, timeout: 500 * time.Millisecond, expectMet: true},
		{name: "never true", neverFlips: true, timeout: 30 * time.Millisecond, expectMet: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flag atomic.Bool
			if !tt.neverFlips {
				if tt.flipAfter == 0 {
					flag.Store(true)
				} else {
					time.AfterFunc(tt.flipAfter, func() { flag.Store(true) })
				}
			}

			start := time.Now()
			met := WaitFor(flag.Load, tt.timeout)
			elapsed := time.Since(start)

			if met != tt.expectMet {
				t.Fatalf("expected met=%v, got %v", tt.expectMet, met)
			}
			if !met && elapsed < tt.timeout {
				t.Errorf("returned before timeout: %v < %v", elapsed, tt.timeout)
			}
			if elapsed > tt.timeout+200*time.Millisecond {
				t.Errorf("overran timeout: %v", elapsed)
			}
		})
	}
}

func TestWaitUntilZero(t *testing.T) {
	var value atomic.Uint64
	value.Store(3)

	go func() {
		for i := 0; i < 3; i++ {
			time.Sleep(5 * time.Millisecond)
			SaturatingSub(&value, 1)
		}
	}()

	reached, last := WaitUntilZero(&value, time.Second)
	if !reached || last != 0 {
		t.Fatalf("expected zero reached, got reached=%v last=%d", reached, last)
	}

	value.Store(9)
	reached, last = WaitUntilZero(&value, 10*time.Millisecond)
	if reached || last != 9 {
		t.Errorf("expected timeout with last=9, got reached=%v last=%d", reached, last)
	}
}

func TestSaturatingSub(t *testing.T) {
	tests := []struct {
		name     string
		initial  uint64
		sub      uint64
		expected uint64
	}{
		{"normal", 10, 3, 7},
		{"exact", 4, 4, 0},
		{"would underflow", 2, 5, 0},
		{"from zero", 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var value atomic.Uint64
			value.Store(tt.initial)
			got := SaturatingSub(&value, tt.sub)
			if got != tt.expected || value.Load() != tt.expected {
				t.Errorf("expected %d, got returned=%d stored=%d", tt.expected, got, value.Load())
			}
		})
	}

	t.Run("concurrent", func(t *testing.T) {
		var value atomic.Uint64
		value.Store(1000)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 150; j++ {
					SaturatingSub(&value, 1)
				}
			}()
		}
		wg.Wait()
		if value.Load() != 0 {
			t.Errorf("expected saturation at zero, got %d", value.Load())
		}
	})
}
