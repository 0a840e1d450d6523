package pointers

import "testing"

func TestOr(t *testing.T) {
	if got := Or[bool](nil, true); !got {
		t.Fatalf("nil pointer: want default true")
	}
	if got := Or(Ptr(false), true); got {
		t.Fatalf("set pointer: want false")
	}
	if got := Or(Ptr(2.5), 0); got != 2.5 {
		t.Fatalf("want 2.5 got %v", got)
	}
}
