package utils

import "testing"

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]string{"a", "b", "a", "c", "b"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("got %v", got)
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 7
	if DereferencePtr(&v) != 7 {
		t.Error("pointer value")
	}
	if DereferencePtr[int](nil) != 0 {
		t.Error("nil without default")
	}
	if DereferencePtr(nil, 42) != 42 {
		t.Error("nil with default")
	}
}
