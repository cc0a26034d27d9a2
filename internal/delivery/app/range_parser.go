package app

import (
	"strconv"
	"strings"

	"media_delivery_service/internal/delivery/domain"
)

const rangeUnitPrefix = "bytes="

// RangeParser computes the byte window served for a Range header
type RangeParser struct {
	chunkSize int64
	// honorEnd also clamps the window to an explicit client end
	honorEnd bool
}

// NewRangeParser chunkSize must be positive
func NewRangeParser(chunkSize int64, honorEnd bool) *RangeParser {
	return &RangeParser{chunkSize: chunkSize, honorEnd: honorEnd}
}

// ChunkSize max window length
func (p *RangeParser) ChunkSize() int64 {
	return p.chunkSize
}

// Parse see ParseRange. honorEnd 關閉時 "-" 後面不檢查, "bytes=0-abc" 照樣回 0-299
func (p *RangeParser) Parse(header string, fileLength int64) (domain.ByteRange, bool, error) {
	rng, requested, endStr, err := parseRange(header, fileLength, p.chunkSize)
	if err != nil || !requested || !p.honorEnd || endStr == "" {
		return rng, requested, err
	}
	end, ok := parseOffset(endStr)
	if !ok || end < rng.Start {
		return domain.ByteRange{}, true, domain.ErrMalformedRange
	}
	if end < rng.End {
		rng.End = end
	}
	return rng, true, nil
}

// ParseRange parses "bytes=<start>-" or "bytes=<start>-<end>".
// requested is false when header is blank. The window always ends at
// min(start+chunkSize-1, fileLength-1); an explicit client end is ignored.
// Multi-range, suffix ranges, other units, a non numeric start or a start
// past the end of the file give domain.ErrMalformedRange.
func ParseRange(header string, fileLength, chunkSize int64) (domain.ByteRange, bool, error) {
	rng, requested, _, err := parseRange(header, fileLength, chunkSize)
	return rng, requested, err
}

// parseRange also returns the raw explicit end the client sent
func parseRange(header string, fileLength, chunkSize int64) (domain.ByteRange, bool, string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return domain.ByteRange{}, false, "", nil
	}
	if chunkSize <= 0 {
		return domain.ByteRange{}, true, "", domain.ErrMalformedRange
	}

	if len(header) < len(rangeUnitPrefix) || !strings.EqualFold(header[:len(rangeUnitPrefix)], rangeUnitPrefix) {
		return domain.ByteRange{}, true, "", domain.ErrMalformedRange
	}
	spec := strings.TrimSpace(header[len(rangeUnitPrefix):])
	if strings.Contains(spec, ",") {
		return domain.ByteRange{}, true, "", domain.ErrMalformedRange
	}

	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return domain.ByteRange{}, true, "", domain.ErrMalformedRange
	}
	start, ok := parseOffset(strings.TrimSpace(startStr))
	if !ok || start >= fileLength {
		return domain.ByteRange{}, true, "", domain.ErrMalformedRange
	}

	end := start + chunkSize - 1
	// overflow or past EOF
	if end < start || end >= fileLength {
		end = fileLength - 1
	}

	return domain.ByteRange{Start: start, End: end}, true, strings.TrimSpace(endStr), nil
}

func parseOffset(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
