// Package bundle packs a program and the libraries it links against into a
// single self-verifying file. Modules travel as content-addressed chunks:
// each carries its bytes and their SHA-256 digest, and the receiver checks
// the digest before anything is compiled.
package bundle

import (
	"crypto/sha256"
	"fmt"

	"github.com/chazu/schwasm/asm"
)

// FormatVersion is written into every bundle.
const FormatVersion = 1

// Role says what a chunk is for.
type Role uint8

const (
	RoleLibrary Role = 1
	RoleProgram Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleLibrary:
		return "library"
	case RoleProgram:
		return "program"
	}
	return fmt.Sprintf("Role(%d)", r)
}

// Chunk is one module in a bundle.
type Chunk struct {
	Hash      [32]byte `cbor:"1,keyasint"`
	Role      Role     `cbor:"2,keyasint"`
	Name      string   `cbor:"3,keyasint"`
	Namespace string   `cbor:"4,keyasint,omitempty"` // libraries only
	Content   []byte   `cbor:"5,keyasint"`
}

// Bundle is a program plus its libraries in load order.
type Bundle struct {
	Version uint8   `cbor:"1,keyasint"`
	Entry   string  `cbor:"2,keyasint"`
	Chunks  []Chunk `cbor:"3,keyasint"`
}

// Source is a module handed to Pack.
type Source struct {
	Name      string
	Namespace string
	Content   []byte
}

// Pack builds a bundle from libs (in load order) and prog. An empty entry
// means asm.EntryPoint; a library without a namespace is published as
// asm.Namespace.
func Pack(libs []Source, prog Source, entry string) *Bundle {
	if entry == "" {
		entry = asm.EntryPoint
	}
	b := &Bundle{Version: FormatVersion, Entry: entry}
	for _, lib := range libs {
		ns := lib.Namespace
		if ns == "" {
			ns = asm.Namespace
		}
		b.Chunks = append(b.Chunks, newChunk(RoleLibrary, lib.Name, ns, lib.Content))
	}
	b.Chunks = append(b.Chunks, newChunk(RoleProgram, prog.Name, "", prog.Content))
	return b
}

func newChunk(role Role, name, ns string, content []byte) Chunk {
	return Chunk{Hash: sha256.Sum256(content), Role: role, Name: name, Namespace: ns, Content: content}
}

// Libraries returns the library chunks in load order.
func (b *Bundle) Libraries() []Chunk {
	var out []Chunk
	for _, c := range b.Chunks {
		if c.Role == RoleLibrary {
			out = append(out, c)
		}
	}
	return out
}

// Program returns the program chunk.
func (b *Bundle) Program() (Chunk, bool) {
	for _, c := range b.Chunks {
		if c.Role == RoleProgram {
			return c, true
		}
	}
	return Chunk{}, false
}

// Verify checks the version, that every chunk's content matches its
// declared hash, and that exactly one program comes after all libraries.
func (b *Bundle) Verify() error {
	if b.Version != FormatVersion {
		return fmt.Errorf("bundle: unsupported version %d", b.Version)
	}
	if b.Entry == "" {
		return fmt.Errorf("bundle: no entry point")
	}
	programs := 0
	for i, c := range b.Chunks {
		if computed := sha256.Sum256(c.Content); computed != c.Hash {
			return fmt.Errorf("bundle: chunk %q hash mismatch: declared %x, computed %x", c.Name, c.Hash, computed)
		}
		switch c.Role {
		case RoleLibrary:
			if c.Namespace == "" {
				return fmt.Errorf("bundle: library %q has no namespace", c.Name)
			}
			if programs > 0 {
				return fmt.Errorf("bundle: library %q follows the program", c.Name)
			}
		case RoleProgram:
			programs++
		default:
			return fmt.Errorf("bundle: chunk %d has unknown role %s", i, c.Role)
		}
	}
	if programs != 1 {
		return fmt.Errorf("bundle: want 1 program chunk, have %d", programs)
	}
	return nil
}
