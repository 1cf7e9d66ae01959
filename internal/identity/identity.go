// Package identity derives stable program identities from source URLs.
// The same locator always yields the same identity across crawl runs,
// which is what lets independent full-crawl snapshots be compared.
package identity

import (
	"crypto/md5" //nolint:gosec // identity key format, not a security boundary
	"encoding/hex"
	"errors"
	"strings"
)

// URL markers that precede the identifying path segment on the source.
// Active programs live under Foerderprogramm/, retired ones are
// sometimes only reachable under Archiv/.
const (
	primaryMarker   = "Foerderprogramm/"
	secondaryMarker = "Archiv/"
)

const htmlSuffix = ".html"

// ErrNoMarker reports that a locator contained neither URL marker. The
// returned identity is the well-defined degenerate one (empty id_url);
// callers flag the record but do not reject it.
var ErrNoMarker = errors.New("identity: locator has no recognized marker")

// Identity is the stable key of a program across crawl runs.
type Identity struct {
	// IDHash is the lowercase hex MD5 of IDURL.
	IDHash string
	// IDURL is the normalized identifying path segment of the locator.
	IDURL string
}

// Resolve derives the identity for a source locator. The path after the
// first marker is taken, path separators become dashes, the .html suffix
// is stripped and the result is lowercased. When neither marker is found
// the degenerate identity (empty IDURL, hash of the empty string) is
// returned together with ErrNoMarker.
func Resolve(locator string) (Identity, error) {
	segment, found := segmentAfterMarker(locator, primaryMarker)
	if !found {
		segment, found = segmentAfterMarker(locator, secondaryMarker)
	}

	idURL := normalizeSegment(segment)
	id := Identity{IDHash: hashIDURL(idURL), IDURL: idURL}

	if !found {
		return id, ErrNoMarker
	}
	return id, nil
}

// segmentAfterMarker returns the locator text following the first
// occurrence of marker.
func segmentAfterMarker(locator, marker string) (string, bool) {
	_, after, found := strings.Cut(locator, marker)
	return after, found
}

// normalizeSegment applies the deterministic id_url transformations.
func normalizeSegment(segment string) string {
	normalized := strings.ReplaceAll(segment, "/", "-")
	normalized = strings.ReplaceAll(normalized, htmlSuffix, "")
	return strings.ToLower(normalized)
}

// hashIDURL returns the lowercase hex MD5 digest of an id_url.
func hashIDURL(idURL string) string {
	sum := md5.Sum([]byte(idURL)) //nolint:gosec // see package comment
	return hex.EncodeToString(sum[:])
}
