// Package contenttype implements the small slice of RFC 7231 content
// negotiation an API server actually needs: deciding whether a client's
// Accept header permits a given response type, and whether a request's
// Content-Type falls under an expected media type.
//
// Accept headers are parsed into quality-ordered media ranges. Matching
// follows the RFC's precedence rules, so an exact range decides before a
// subtype wildcard, which decides before "*/*":
//
//	contenttype.Accepts("text/html;q=0.9, */*;q=0.1", "application/json") // true
//	contenttype.Accepts("application/json;q=0, */*", "application/json")  // false
//
// Content-Type checks are parameter tolerant: charset and similar media
// parameters never affect the match.
//
//	contenttype.Match("application/json; charset=utf-8", "application/json") // true
//	contenttype.Match("text/csv", "application/*")                           // false
//
// Malformed entries are dropped instead of failing the whole header, and
// oversized headers are truncated before parsing so hostile input cannot
// exhaust memory.
//
// # Usage
//
// import "github.com/dmitrymomot/payloadkit/pkg/contenttype"
//
//	if !contenttype.Accepts(r.Header.Get("Accept"), "application/json") {
//		http.Error(w, "JSON only", http.StatusNotAcceptable)
//		return
//	}
//
// # See Also
//
// The mime package in the standard library parses single media types but
// offers no Accept-header negotiation, which is the gap this package fills.
package contenttype
