// Package stacktrace trims runtime stacks down to this module's own frames.
package stacktrace

import "strings"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" entries, in order,
// for every frame of stack that belongs to an internal package.
func InternalPaths(stack []byte) []string {
	var paths []string
	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)
		_, rel, ok := strings.Cut(line, "/internal/")
		if !ok || !strings.Contains(rel, ".go:") {
			continue
		}
		// frame lines end with " +0x1f" offsets
		rel, _, _ = strings.Cut(rel, " ")
		paths = append(paths, "internal/"+rel)
	}
	return paths
}
