package asm

import (
	"math"
	"testing"
)

var sample = []int32{
	0, 1, -1, 2, 4, 8, 20, 99, 255, 1024, -1024,
	math.MaxInt32, math.MinInt32, math.MaxInt32 - 1, math.MinInt32 + 1,
}

func TestSete(t *testing.T) {
	if got := Sete(1, 20); got != 0xFF {
		t.Errorf("Sete(1, 20) = %#x, want 0xff", got)
	}
	for _, flag := range sample {
		if flag == 0 {
			continue
		}
		for _, x := range sample {
			if got := Sete(flag, x); got != 0xFF {
				t.Errorf("Sete(%d, %d) = %#x, want 0xff", flag, x, got)
			}
		}
	}
}

// The false branch was never observed from the native library; this
// pins the assumed complement (0x00) rather than a verified behavior.
func TestSeteFalseBranchAssumption(t *testing.T) {
	if SeteFalse != 0 {
		t.Errorf("SeteFalse = %#x, want 0x00", SeteFalse)
	}
	for _, x := range sample {
		if got := Sete(0, x); got != 0 {
			t.Errorf("Sete(0, %d) = %#x, want 0x00", x, got)
		}
	}
}

func TestSall(t *testing.T) {
	if got := Sall(4, 8); got != 1024 {
		t.Errorf("Sall(4, 8) = %d, want 1024", got)
	}
	for _, v := range sample {
		for s := int32(0); s < 32; s++ {
			if got, want := Sall(v, s), v<<s; got != want {
				t.Errorf("Sall(%d, %d) = %d, want %d", v, s, got, want)
			}
		}
	}
}

func TestSallWideShiftWraps(t *testing.T) {
	tests := []struct {
		v, s, want int32
	}{
		{1, 32, 1},
		{1, 33, 2},
		{3, 64, 3},
		{1, -1, math.MinInt32},
	}
	for _, tt := range tests {
		if got := Sall(tt.v, tt.s); got != tt.want {
			t.Errorf("Sall(%d, %d) = %d, want %d", tt.v, tt.s, got, tt.want)
		}
	}
}

func TestCmpl(t *testing.T) {
	tests := []struct {
		a, b, want int32
	}{
		{4, 8, -1},
		{4, 4, 0},
		{8, 4, 1},
		{math.MinInt32, math.MaxInt32, -1},
		{math.MaxInt32, math.MinInt32, 1},
		{-1, 0, -1},
	}
	for _, tt := range tests {
		if got := Cmpl(tt.a, tt.b); got != tt.want {
			t.Errorf("Cmpl(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCmplAntisymmetricAndReflexive(t *testing.T) {
	for _, a := range sample {
		if got := Cmpl(a, a); got != 0 {
			t.Errorf("Cmpl(%d, %d) = %d, want 0", a, a, got)
		}
		for _, b := range sample {
			if Cmpl(a, b) != -Cmpl(b, a) {
				t.Errorf("Cmpl(%d, %d) = %d but Cmpl(%d, %d) = %d", a, b, Cmpl(a, b), b, a, Cmpl(b, a))
			}
		}
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{NameSete, NameSall, NameCmpl} {
		p, ok := Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) not found", name)
		}
		if p.Name != name || p.Arity != 2 {
			t.Errorf("Lookup(%q) = %+v", name, p)
		}
	}
	if _, ok := Lookup("setne"); ok {
		t.Error("Lookup(setne) found a primitive")
	}
}

func TestLibraryIsACopy(t *testing.T) {
	lib := Library()
	lib[0].Name = "clobbered"
	if Library()[0].Name != NameSete {
		t.Error("Library() exposes the shared table")
	}
}
