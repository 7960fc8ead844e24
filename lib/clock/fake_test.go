// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	c := Fake(epoch)
	if got := c.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	c.Advance(5 * time.Second)
	if got, want := c.Now(), epoch.Add(5*time.Second); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfterFiresAtDeadline(t *testing.T) {
	c := Fake(epoch)
	channel := c.After(time.Second)

	c.Advance(999 * time.Millisecond)
	select {
	case <-channel:
		t.Fatal("After fired before deadline")
	default:
	}

	c.Advance(time.Millisecond)
	select {
	case <-channel:
	default:
		t.Fatal("After did not fire at deadline")
	}
	if got := c.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() = %d after one-shot fired, want 0", got)
	}
}

func TestFakeClockAfterNonPositive(t *testing.T) {
	c := Fake(epoch)
	select {
	case <-c.After(0):
	default:
		t.Fatal("After(0) should be ready immediately")
	}
	if got := c.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() = %d, want 0", got)
	}
}

func TestFakeClockTicker(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	for i := 0; i < 3; i++ {
		c.Advance(time.Second)
		select {
		case <-ticker.C:
		default:
			t.Fatalf("tick %d not delivered", i)
		}
	}
}

func TestFakeClockTickerDropsWhenBehind(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	c.Advance(5 * time.Second)
	<-ticker.C
	select {
	case <-ticker.C:
		t.Fatal("expected a single buffered tick")
	default:
	}
}

func TestFakeClockTickerStop(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Second)
	ticker.Stop()

	c.Advance(3 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
	if got := c.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() = %d, want 0", got)
	}
}

func TestFakeClockTickerPanicsOnNonPositive(t *testing.T) {
	c := Fake(epoch)
	defer func() {
		if recover() == nil {
			t.Fatal("NewTicker(0) should panic")
		}
	}()
	c.NewTicker(0)
}

func TestFakeClockWaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-c.After(2 * time.Second)
		close(done)
	}()

	c.WaitForTimers(1)
	c.Advance(2 * time.Second)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not released by Advance")
	}
}

func TestClockImplementations(t *testing.T) {
	var _ Clock = (*FakeClock)(nil)
	var _ Clock = Real()
}
