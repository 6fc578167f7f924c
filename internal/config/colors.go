package config

import (
	"fmt"
	"strconv"
	"strings"
)

// parseColor decodes a "#RRGGBB" or "0xRRGGBB" color string into a
// packed uint32, returning def when s is empty.
func parseColor(s string, def uint32) (uint32, error) {
	if s == "" {
		return def, nil
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x")
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}
