package filesystem

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses size string (e.g., "650K", "1M", "2G") to bytes.
// An empty string means 0 (no limit).
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(sizeStr)
	if len(sizeStr) == 0 {
		return 0, nil
	}

	// Optional trailing "B" as in "10MB"
	if len(sizeStr) > 1 && (sizeStr[len(sizeStr)-1] == 'B' || sizeStr[len(sizeStr)-1] == 'b') {
		switch sizeStr[len(sizeStr)-2] {
		case 'K', 'k', 'M', 'm', 'G', 'g', 'T', 't':
			sizeStr = sizeStr[:len(sizeStr)-1]
		}
	}

	// Get last character (unit)
	last := sizeStr[len(sizeStr)-1]
	var multiplier int64 = 1

	switch last {
	case 'K', 'k':
		multiplier = 1024
	case 'M', 'm':
		multiplier = 1024 * 1024
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
	case 'T', 't':
		multiplier = 1024 * 1024 * 1024 * 1024
	}
	if multiplier > 1 || last == 'B' || last == 'b' {
		sizeStr = sizeStr[:len(sizeStr)-1]
	}

	size, err := strconv.ParseInt(strings.TrimSpace(sizeStr), 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid size %q", sizeStr)
	}

	return size * multiplier, nil
}
