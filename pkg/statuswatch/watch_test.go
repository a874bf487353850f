package statuswatch

import (
	"testing"
	"time"
)

func TestSubscribe_SeesCurrentValueImmediately(t *testing.T) {
	w := New("pending")
	sub := w.Subscribe()
	v, ok := sub.Recv()
	if !ok || v != "pending" {
		t.Fatalf("got (%q, %v), want (\"pending\", true)", v, ok)
	}
}

func TestSet_DeliversToExistingSubscriber(t *testing.T) {
	w := New("pending")
	sub := w.Subscribe()
	sub.Recv() // drain the seeded current value

	done := make(chan string, 1)
	go func() {
		v, _ := sub.Recv()
		done <- v
	}()

	w.Set("running")
	select {
	case v := <-done:
		if v != "running" {
			t.Fatalf("got %q, want running", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for transition")
	}
}

func TestSubscribeAfterTransition_SeesLatest(t *testing.T) {
	w := New("pending")
	w.Set("running")
	w.Set("completed")

	sub := w.Subscribe()
	v, ok := sub.Recv()
	if !ok || v != "completed" {
		t.Fatalf("got (%q, %v), want (\"completed\", true)", v, ok)
	}
}

func TestClose_UnblocksSubscribers(t *testing.T) {
	w := New(0)
	sub := w.Subscribe()
	sub.Recv()

	done := make(chan bool, 1)
	go func() {
		_, ok := sub.Recv()
		done <- ok
	}()

	w.Close()
	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after close")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close to unblock subscriber")
	}
}
