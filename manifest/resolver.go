package manifest

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ResolvedLibrary is a library with its path made absolute and its
// namespace decided.
type ResolvedLibrary struct {
	Name      string // key under [libraries]
	Path      string // absolute
	Namespace string
}

// Resolver orders and validates the libraries of a manifest.
type Resolver struct {
	manifest *Manifest
}

// NewResolver creates a new library resolver.
func NewResolver(m *Manifest) *Resolver {
	return &Resolver{manifest: m}
}

// Resolve returns every library in load order: a library comes after all
// libraries it lists in after. Ties are broken by name.
func (r *Resolver) Resolve() ([]ResolvedLibrary, error) {
	libs := r.manifest.Libraries
	resolved := make(map[string]ResolvedLibrary, len(libs))
	owners := make(map[string]string)

	for _, name := range slices.Sorted(maps.Keys(libs)) {
		rl, err := r.resolveOne(name, libs[name])
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", name, err)
		}
		if other, ok := owners[rl.Namespace]; ok {
			return nil, fmt.Errorf("libraries %q and %q both publish namespace %q", other, name, rl.Namespace)
		}
		owners[rl.Namespace] = name
		resolved[name] = rl
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(libs))
	var order []ResolvedLibrary
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("library load order has a cycle: %s -> %s", strings.Join(path, " -> "), name)
		}
		state[name] = visiting
		path = append(path, name)
		after := slices.Clone(libs[name].After)
		slices.Sort(after)
		for _, dep := range after {
			if _, ok := libs[dep]; !ok {
				return fmt.Errorf("library %q comes after unknown library %q", name, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		order = append(order, resolved[name])
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(libs)) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// resolveNamespace determines the effective namespace for a library: the
// explicit namespace when given, otherwise the snake_case of its key.
func resolveNamespace(name string, lib Library) (string, error) {
	ns := lib.Namespace
	if ns == "" {
		ns = ToSnakeCase(name)
	}
	if ns == "" {
		return "", fmt.Errorf("library %q has an empty namespace", name)
	}
	if IsReservedNamespace(ns) {
		return "", fmt.Errorf("library %q resolves to reserved namespace %q; add namespace = \"...\" under [libraries.%s]", name, ns, name)
	}
	return ns, nil
}

// resolveOne resolves a single library.
func (r *Resolver) resolveOne(name string, lib Library) (ResolvedLibrary, error) {
	if lib.Path == "" {
		return ResolvedLibrary{}, fmt.Errorf("library %q has no path specified", name)
	}
	localPath, err := filepath.Abs(r.manifest.Abs(lib.Path))
	if err != nil {
		return ResolvedLibrary{}, fmt.Errorf("invalid path %q: %w", lib.Path, err)
	}
	if _, err := os.Stat(localPath); err != nil {
		return ResolvedLibrary{}, fmt.Errorf("library %q not found at %s: %w", name, localPath, err)
	}

	ns, err := resolveNamespace(name, lib)
	if err != nil {
		return ResolvedLibrary{}, err
	}
	return ResolvedLibrary{Name: name, Path: localPath, Namespace: ns}, nil
}
