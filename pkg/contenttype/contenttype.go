package contenttype

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// maxHeaderLength prevents DoS attacks through oversized Accept or
// Content-Type headers. RFC 7231 doesn't specify a limit, but 4KB is
// generous for legitimate headers while preventing memory exhaustion
// from malicious requests.
const maxHeaderLength = 4096

// MediaRange is one entry of an Accept header: a type/subtype pair
// (either side may be "*"), its quality value, and any media parameters.
type MediaRange struct {
	Type    string
	Subtype string
	Quality float64
	Params  map[string]string
}

// ParseAccept parses an Accept header according to RFC 7231. Malformed
// entries are dropped rather than failing the whole header, and the
// result is sorted best match first: by quality, then by specificity so
// "text/html" outranks "text/*" outranks "*/*" at equal quality.
func ParseAccept(header string) []MediaRange {
	if header == "" {
		return nil
	}

	if len(header) > maxHeaderLength {
		header = header[:maxHeaderLength]
	}

	var ranges []MediaRange

	for part := range strings.SplitSeq(header, ",") {
		mr, ok := parseRange(part)
		if !ok {
			continue
		}
		ranges = append(ranges, mr)
	}

	slices.SortFunc(ranges, func(a, b MediaRange) int {
		if c := cmp.Compare(b.Quality, a.Quality); c != 0 {
			return c
		}
		return cmp.Compare(specificity(b), specificity(a))
	})

	return ranges
}

// parseRange parses a single media range like "text/html;q=0.8;level=1".
// Reports false for entries without a type/subtype pair.
func parseRange(s string) (MediaRange, bool) {
	segments := strings.Split(s, ";")

	mediaType := strings.ToLower(strings.TrimSpace(segments[0]))
	slash := strings.Index(mediaType, "/")
	if slash <= 0 || slash == len(mediaType)-1 {
		return MediaRange{}, false
	}

	mr := MediaRange{
		Type:    mediaType[:slash],
		Subtype: mediaType[slash+1:],
		Quality: 1.0,
	}

	for _, segment := range segments[1:] {
		key, value, found := strings.Cut(strings.TrimSpace(segment), "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "q" {
			if q, err := strconv.ParseFloat(value, 64); err == nil && q >= 0 && q <= 1 {
				mr.Quality = q
			}
			continue
		}
		if mr.Params == nil {
			mr.Params = make(map[string]string)
		}
		mr.Params[key] = value
	}

	return mr, true
}

// specificity ranks a range for tie-breaking: exact types beat subtype
// wildcards beat full wildcards.
func specificity(mr MediaRange) int {
	switch {
	case mr.Type == "*":
		return 0
	case mr.Subtype == "*":
		return 1
	default:
		return 2
	}
}

// rangeMatches reports whether the media range mr covers the concrete
// type t. Media parameters are ignored.
func rangeMatches(mr, t MediaRange) bool {
	if mr.Type != "*" && t.Type != "*" && mr.Type != t.Type {
		return false
	}
	if mr.Subtype != "*" && t.Subtype != "*" && mr.Subtype != t.Subtype {
		return false
	}
	return true
}

// Accepts reports whether the Accept header permits responses of the
// given media type. An empty header expresses no preference and accepts
// everything; a header whose most specific matching range carries q=0
// explicitly rejects the type.
func Accepts(header, mediaType string) bool {
	if header == "" {
		return true
	}

	target, ok := parseRange(mediaType)
	if !ok {
		return false
	}

	bestFit := -1
	bestQ := 0.0
	for _, mr := range ParseAccept(header) {
		if !rangeMatches(mr, target) {
			continue
		}
		fit := specificity(mr)
		if fit > bestFit || (fit == bestFit && mr.Quality > bestQ) {
			bestFit = fit
			bestQ = mr.Quality
		}
	}

	return bestFit >= 0 && bestQ > 0
}

// Match reports whether a Content-Type header names a media type covered
// by pattern. Wildcards are honored on either side and media parameters
// are ignored, so "application/json; charset=utf-8" matches
// "application/json". Malformed input matches nothing.
func Match(contentType, pattern string) bool {
	if len(contentType) > maxHeaderLength {
		contentType = contentType[:maxHeaderLength]
	}

	ct, ok := parseRange(contentType)
	if !ok {
		return false
	}
	p, ok := parseRange(pattern)
	if !ok {
		return false
	}

	return rangeMatches(p, ct)
}

// MediaType extracts the bare lowercased type/subtype from a Content-Type
// header, dropping parameters: "Application/JSON; charset=utf-8" becomes
// "application/json". Returns "" when the header has no type/subtype pair.
func MediaType(header string) string {
	mr, ok := parseRange(header)
	if !ok {
		return ""
	}
	return mr.Type + "/" + mr.Subtype
}
