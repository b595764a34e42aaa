package search

import (
	"sync"
	"testing"
	"time"
)

func TestContextLastWriteWins(t *testing.T) {
	c := NewContext()
	var got []Snapshot
	c.Subscribe(func(s Snapshot) { got = append(got, s) })

	c.SetSearchTerm("bitcoin")
	c.SetSearchLoading(true)
	c.SetSearchLoading(false)

	if c.SearchTerm() != "bitcoin" || c.SearchLoading() {
		t.Fatalf("unexpected state %#v", c.Snapshot())
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	if !got[1].SearchLoading || got[2].SearchLoading {
		t.Fatalf("unexpected notifications %#v", got)
	}
}

func TestContextConcurrentWriters(t *testing.T) {
	c := NewContext()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.SetSearchLoading(i%2 == 0)
			_ = c.Snapshot()
		}(i)
	}
	wg.Wait()
}

func TestDebouncerEmitsLatestOnly(t *testing.T) {
	out := make(chan string, 4)
	d := NewDebouncer(20*time.Millisecond, func(v string) { out <- v })

	d.Push("b")
	d.Push("bi")
	d.Push("bit")

	select {
	case v := <-out:
		if v != "bit" {
			t.Fatalf("expected latest value, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("debouncer did not fire")
	}

	select {
	case v := <-out:
		t.Fatalf("unexpected extra emission %q", v)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerFlushAndStop(t *testing.T) {
	out := make(chan string, 4)
	d := NewDebouncer(time.Hour, func(v string) { out <- v })

	d.Push("now")
	d.Flush()
	if v := <-out; v != "now" {
		t.Fatalf("flush emitted %q", v)
	}

	d.Flush()
	d.Push("later")
	d.Stop()
	d.Flush()
	select {
	case v := <-out:
		t.Fatalf("unexpected emission after stop %q", v)
	default:
	}
}

func TestNewDebouncerDefaultDelay(t *testing.T) {
	d := NewDebouncer(0, nil)
	if d.delay != DefaultDebounce {
		t.Fatalf("delay = %v", d.delay)
	}
}
