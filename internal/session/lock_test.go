package session

import "testing"

func TestLockerTryAcquire(t *testing.T) {
	l := NewLocker()

	if !l.TryAcquire("a") {
		t.Fatal("first acquire failed")
	}
	if l.TryAcquire("a") {
		t.Error("second acquire on held session succeeded")
	}
	if !l.TryAcquire("b") {
		t.Error("acquire on a different session failed")
	}

	l.Release("a")
	if !l.TryAcquire("a") {
		t.Error("acquire after release failed")
	}
}

func TestLockerReleaseUnheld(t *testing.T) {
	l := NewLocker()
	// Releasing something never held must not panic or poison the locker.
	l.Release("ghost")
	if !l.TryAcquire("ghost") {
		t.Error("acquire failed after spurious release")
	}
}
