package aliasclient

import "strings"

// JoinPath joins URI segments with single slashes.
//
// Each segment is split on embedded slashes and empty pieces are dropped, so
// the result never contains double slashes or missing separators regardless
// of how callers format segments. A scheme prefix ("https://") in the first
// segment and a leading slash on a bare path are preserved.
//
//	JoinPath("https://host/", "/api//query/", "alias") // "https://host/api/query/alias"
//	JoinPath("/a/", "b1")                              // "/a/b1"
func JoinPath(segments ...string) string {
	var prefix string
	if len(segments) > 0 {
		first := segments[0]
		if i := strings.Index(first, "://"); i >= 0 {
			prefix = first[:i+3]
			segments = append([]string{first[i+3:]}, segments[1:]...)
		} else if strings.HasPrefix(first, "/") {
			prefix = "/"
		}
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		for _, p := range strings.Split(seg, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}

	return prefix + strings.Join(parts, "/")
}
