// Package pathcodec encodes and decodes the materialized-path segments
// used by the tree-storage engine: fixed-width, zero-padded uppercase
// hex, one segment per ancestor.
package pathcodec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bumbu-labs/treeforge/treeerr"
)

// Encode renders priority as an uppercase hex string, left-padded to
// segmentLength digits. It fails with treeerr.ErrInvalidPriority when
// priority is not representable in segmentLength hex digits (i.e. when
// priority >= Base = 16^segmentLength).
func Encode(priority uint32, segmentLength int) (string, error) {
	base := uint64(1)
	for i := 0; i < segmentLength; i++ {
		base *= 16
	}
	if uint64(priority) >= base {
		return "", fmt.Errorf("%w: %d >= %d", treeerr.ErrInvalidPriority, priority, base)
	}
	segment := strings.ToUpper(strconv.FormatUint(uint64(priority), 16))
	if pad := segmentLength - len(segment); pad > 0 {
		segment = strings.Repeat("0", pad) + segment
	}
	return segment, nil
}

// Generate returns the child path given a parent's materialized path
// and the child's priority: parentPath + "." + encode(priority), or
// just encode(priority) for a root (empty parentPath).
func Generate(parentPath string, priority uint32, segmentLength int) (string, error) {
	segment, err := Encode(priority, segmentLength)
	if err != nil {
		return "", err
	}
	if parentPath == "" {
		return segment, nil
	}
	return parentPath + "." + segment, nil
}

// Depth returns the number of '.' separators in path: 0 for a root.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, ".")
}

// IsAncestorPath reports whether b is a, or a proper descendant of a:
// b == a, or b starts with a + ".".
func IsAncestorPath(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasPrefix(b, a+".")
}

// RootSegment returns the first dot-delimited segment of path, i.e. the
// materialized path of path's root ancestor.
func RootSegment(path string) string {
	if idx := strings.IndexByte(path, '.'); idx >= 0 {
		return path[:idx]
	}
	return path
}

// Base returns SegmentBase ** segmentLength, the maximum number of
// siblings a parent may have under the given segment length.
func Base(segmentLength int) uint64 {
	base := uint64(1)
	for i := 0; i < segmentLength; i++ {
		base *= 16
	}
	return base
}
