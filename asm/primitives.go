// Package asm emulates the handful of x86 condition-code instructions that
// compiled Scheme code relies on, as plain integer functions.
//
// Each primitive exists twice: as a Go function giving the reference
// semantics, and as a WebAssembly function body. Module assembles the bodies
// into a standalone library module that the host publishes under Namespace
// for compiled programs to import.
package asm

// Names shared by the compiler, the library module, and the host.
const (
	// Namespace is the import module name compiled code uses for the library.
	Namespace = "asm_x86"

	// EntryPoint is the zero-argument export every compiled program provides.
	EntryPoint = "scheme_entry"
)

// Primitive export names.
const (
	NameSete = "sete"
	NameSall = "sall"
	NameCmpl = "cmpl"
)

// ---------------------------------------------------------------------------
// Reference semantics
// ---------------------------------------------------------------------------

// SeteTrue is the byte pattern sete produces when the flag is set.
const SeteTrue int32 = 0xFF

// SeteFalse is the pattern for a clear flag.
//
// Only the true branch of sete was ever exercised against the native
// library; 0x00 is the assumed complement.
const SeteFalse int32 = 0x00

// Sete models "set byte if equal": SeteTrue when flag is non-zero, SeteFalse
// otherwise. The second operand mirrors the two-operand instruction shape and
// never affects the result.
func Sete(flag, _ int32) int32 {
	if flag != 0 {
		return SeteTrue
	}
	return SeteFalse
}

// Sall models "shift arithmetic left": value << shift, with no overflow
// detection. Shift counts of 32 or more follow the wasm i32.shl rule and are
// taken modulo 32, so Sall(1, 33) == 2.
func Sall(value, shift int32) int32 {
	return value << (uint32(shift) & 31)
}

// Cmpl models the sign of "compare long": -1 if a < b, 0 if equal, 1 if
// a > b. Signed; overflow is not modeled since only the sign is observable.
func Cmpl(a, b int32) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
