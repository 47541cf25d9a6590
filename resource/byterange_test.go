package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRange(t *testing.T) {
	testCases := []struct {
		description   string
		spec          string
		contentLength int64
		expectStart   int64
		expectEnd     int64
		expectErr     bool
	}{
		{description: "inclusive bounds", spec: "0-4", contentLength: 10, expectStart: 0, expectEnd: 5},
		{description: "middle slice", spec: "2-7", contentLength: 10, expectStart: 2, expectEnd: 8},
		{description: "open end", spec: "3-", contentLength: 10, expectStart: 3, expectEnd: 10},
		{description: "suffix", spec: "-4", contentLength: 10, expectStart: 6, expectEnd: 10},
		{description: "suffix larger than content", spec: "-20", contentLength: 10, expectStart: 0, expectEnd: 10},
		{description: "end clamped", spec: "5-99", contentLength: 10, expectStart: 5, expectEnd: 10},
		{description: "single byte", spec: "9-9", contentLength: 10, expectStart: 9, expectEnd: 10},
		{description: "no dash", spec: "5", contentLength: 10, expectErr: true},
		{description: "too many parts", spec: "1-2-3", contentLength: 10, expectErr: true},
		{description: "non integer start", spec: "a-5", contentLength: 10, expectErr: true},
		{description: "non integer end", spec: "1-b", contentLength: 10, expectErr: true},
		{description: "non integer suffix", spec: "-x", contentLength: 10, expectErr: true},
		{description: "start at content length", spec: "10-12", contentLength: 10, expectErr: true},
		{description: "start beyond content length", spec: "15-", contentLength: 10, expectErr: true},
		{description: "start after end", spec: "7-3", contentLength: 10, expectErr: true},
		{description: "zero suffix", spec: "-0", contentLength: 10, expectErr: true},
		{description: "negative suffix", spec: "--5", contentLength: 10, expectErr: true},
	}

	for _, testCase := range testCases {
		start, end, err := ParseRange(testCase.spec, testCase.contentLength)
		if testCase.expectErr {
			assert.ErrorIs(t, err, ErrInvalidRange, testCase.description)
			continue
		}
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expectStart, start, testCase.description)
		assert.Equal(t, testCase.expectEnd, end, testCase.description)
		assert.True(t, 0 <= start && start < end && end <= testCase.contentLength, testCase.description)
	}
}
