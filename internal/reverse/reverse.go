// Package reverse flips the segment order of dotted address strings.
package reverse

import "strings"

// Separator splits an address into octets
const Separator = "."

// IP returns addr with its dot-separated segments in reverse order. The
// segments themselves are not inspected, so malformed addresses, IPv6
// literals and bare hostnames are reversed as plain strings. Applying IP
// twice yields the original input.
func IP(addr string) string {
	segments := strings.Split(addr, Separator)
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, Separator)
}
