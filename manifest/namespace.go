package manifest

import "strings"

// ToSnakeCase converts a string to snake_case.
// "asm-x86" -> "asm_x86", "myLib" -> "my_lib", "AsmX86" -> "asm_x86"
func ToSnakeCase(s string) string {
	var words []string
	current := ""
	for i, r := range s {
		if r == '-' || r == '_' || r == '.' || r == ' ' {
			if current != "" {
				words = append(words, current)
				current = ""
			}
			continue
		}
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(s[i-1])
			if (prev >= 'a' && prev <= 'z') && current != "" {
				words = append(words, current)
				current = ""
			}
		}
		current += string(r)
	}
	if current != "" {
		words = append(words, current)
	}
	return strings.ToLower(strings.Join(words, "_"))
}

// reservedNamespaces are import namespaces owned by host environments.
// Publishing a library there would shadow them.
var reservedNamespaces = map[string]bool{
	"env":                    true,
	"wasi_snapshot_preview1": true,
	"wasi_unstable":          true,
}

// IsReservedNamespace reports whether name belongs to a host environment
// and must not be used for a library.
func IsReservedNamespace(name string) bool {
	return reservedNamespaces[name]
}
