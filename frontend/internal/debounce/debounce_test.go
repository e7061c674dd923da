package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_SingleCall(t *testing.T) {
	var called int32
	d := New(50 * time.Millisecond)

	d.Debounce(func() {
		atomic.AddInt32(&called, 1)
	})

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&called) != 1 {
		t.Errorf("Expected 1 call, got %d", called)
	}
}

func TestDebouncer_RapidCalls(t *testing.T) {
	var called int32
	var lastValue int32
	d := New(50 * time.Millisecond)

	for i := 1; i <= 10; i++ {
		value := int32(i)
		d.Debounce(func() {
			atomic.StoreInt32(&lastValue, value)
			atomic.AddInt32(&called, 1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&called) != 1 {
		t.Errorf("Expected 1 call for rapid succession, got %d", called)
	}
	if atomic.LoadInt32(&lastValue) != 10 {
		t.Errorf("Expected last value 10, got %d", lastValue)
	}
}

func TestDebouncer_SeparateWindows(t *testing.T) {
	var called int32
	d := New(30 * time.Millisecond)

	d.Debounce(func() { atomic.AddInt32(&called, 1) })
	time.Sleep(80 * time.Millisecond)
	d.Debounce(func() { atomic.AddInt32(&called, 1) })
	time.Sleep(80 * time.Millisecond)

	if got := atomic.LoadInt32(&called); got != 2 {
		t.Errorf("Expected one call per window, got %d", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	var called int32
	d := New(50 * time.Millisecond)

	d.Debounce(func() {
		atomic.AddInt32(&called, 1)
	})
	if !d.Cancel() {
		t.Error("Expected pending call to be cancelled")
	}

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&called) != 0 {
		t.Errorf("Expected 0 calls after cancel, got %d", called)
	}
	if d.Cancel() {
		t.Error("Expected nothing left to cancel")
	}
}
