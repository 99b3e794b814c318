package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveKey normalizes a stored reference into a bare object key.
//
// Bare keys ("folder/file.jpg") pass through untouched. Full access URLs
// ("https://bucket.s3.amazonaws.com/folder/file.jpg") resolve to their path
// with the leading slash stripped. If URL parsing fails, the last two
// path segments are joined as folder/filename; anything shorter is an
// ErrInvalidReference.
func ResolveKey(ref string) (string, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	u, err := url.Parse(ref)
	if err == nil && u.Path != "" {
		return strings.TrimPrefix(u.Path, "/"), nil
	}

	parts := strings.Split(ref, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
}
