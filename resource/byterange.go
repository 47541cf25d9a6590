package resource

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRange marks a malformed or out-of-bounds range expression.
var ErrInvalidRange = errors.New("invalid range")

// ParseRange resolves a textual byte range expression against contentLength and
// returns half-open offsets, 0 <= start < end <= contentLength.
//
// Supported forms: "a-b" (inclusive bounds), "a-" (from a to the end) and "-n"
// (last n bytes). The end offset is clamped to contentLength.
func ParseRange(spec string, contentLength int64) (start, end int64, err error) {
	if !strings.Contains(spec, "-") {
		return 0, 0, fmt.Errorf("%w: %q lacks '-'", ErrInvalidRange, spec)
	}
	parts := strings.Split(spec, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q has too many parts", ErrInvalidRange, spec)
	}
	first, last := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	if first == "" {
		// suffix form: last n bytes
		n, convErr := strconv.ParseInt(last, 10, 64)
		if convErr != nil {
			return 0, 0, fmt.Errorf("%w: non-integer suffix in %q", ErrInvalidRange, spec)
		}
		if n <= 0 {
			return 0, 0, fmt.Errorf("%w: non-positive suffix length %d", ErrInvalidRange, n)
		}
		start = contentLength - n
		if start < 0 {
			start = 0
		}
		return start, contentLength, nil
	}

	start, err = strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: non-integer start in %q", ErrInvalidRange, spec)
	}
	if start < 0 || start >= contentLength {
		return 0, 0, fmt.Errorf("%w: start %d outside content length %d", ErrInvalidRange, start, contentLength)
	}
	if last == "" {
		return start, contentLength, nil
	}
	lastByte, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: non-integer end in %q", ErrInvalidRange, spec)
	}
	end = lastByte + 1
	if end > contentLength {
		end = contentLength
	}
	if start >= end {
		return 0, 0, fmt.Errorf("%w: start %d not before end %d", ErrInvalidRange, start, end)
	}
	return start, end, nil
}
