package timectrl

import (
	"testing"
	"time"
)

func TestTimeControllerSetTime(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, RealTime)

	newNow := start.Add(42 * time.Second)
	tc.SetTime(newNow)

	if got := tc.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestTimeControllerStartUpdatesNow(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 5*time.Millisecond, RealTime)

	done := tc.Start(15 * time.Millisecond)
	<-done

	expected := start.Add(15 * time.Millisecond)
	if got := tc.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
}

func TestAcceleratedSweepVisitsEveryStep(t *testing.T) {
	start := time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)
	// One simulated day at one-minute steps must not take a wall-clock day.
	tc := NewTimeController(start, time.Minute, Accelerated)

	var seen []time.Time
	tc.AddListener(func(simTime time.Time) {
		seen = append(seen, simTime)
	})

	select {
	case <-tc.Start(24 * time.Hour):
	case <-time.After(5 * time.Second):
		t.Fatalf("accelerated sweep did not finish")
	}

	if want := 24*60 + 1; len(seen) != want {
		t.Fatalf("listener invoked %d times, want %d", len(seen), want)
	}
	if !seen[0].Equal(start) {
		t.Fatalf("first tick = %v, want start %v", seen[0], start)
	}
	if last := seen[len(seen)-1]; !last.Equal(start.Add(24 * time.Hour)) {
		t.Fatalf("last tick = %v, want %v", last, start.Add(24*time.Hour))
	}
}

func TestAcceleratedSweepClampsFinalStep(t *testing.T) {
	start := time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 40*time.Second, Accelerated)

	var last time.Time
	tc.AddListener(func(simTime time.Time) { last = simTime })
	<-tc.Start(100 * time.Second)

	if want := start.Add(100 * time.Second); !last.Equal(want) {
		t.Fatalf("last tick = %v, want %v", last, want)
	}
	if got := tc.Now(); !got.Equal(last) {
		t.Fatalf("Now() = %v, want %v", got, last)
	}
}

func TestAcceleratedWithoutDurationReturnsAfterStart(t *testing.T) {
	start := time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, Accelerated)

	calls := 0
	tc.AddListener(func(time.Time) { calls++ })
	<-tc.Start(0)

	if calls != 1 {
		t.Fatalf("listener invoked %d times, want 1", calls)
	}
}

func TestModeString(t *testing.T) {
	if RealTime.String() != "realtime" || Accelerated.String() != "accelerated" || Mode(9).String() != "unknown" {
		t.Fatalf("unexpected mode strings")
	}
}
