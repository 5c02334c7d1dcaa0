package prepare

import (
	"strings"
	"unicode"
)

// cleanName trims, collapses internal whitespace runs (tabs and
// newlines included) to one space, and strips other control
// characters.
func cleanName(name string) string {
	name = strings.Map(func(r rune) rune {
		if (r < 0x20 || r == 0x7f) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)

	return strings.Join(strings.Fields(name), " ")
}

// normalizeDepartment canonicalises a slash-separated path: each
// segment is cleaned, empty segments are dropped, and the rest are
// rejoined. "A / B" and "A/  /B" both become "A/B".
func normalizeDepartment(path string) string {
	segments := []string{}
	for _, segment := range strings.Split(path, "/") {
		segment = cleanName(segment)
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return strings.Join(segments, "/")
}

// stripSkipPrefixes removes the first matching prefix alternative from
// a normalised path. Matches are segment-aligned: "Company" strips
// "Company/Eng" but never "CompanyWide/Eng". A prefix equal to the
// whole path yields "".
func stripSkipPrefixes(path, skipDepartments string) string {
	if path == "" || strings.TrimSpace(skipDepartments) == "" {
		return path
	}

	segments := strings.Split(path, "/")

	for _, prefix := range strings.Split(skipDepartments, ",") {
		prefix = normalizeDepartment(prefix)
		if prefix == "" {
			continue
		}

		prefixSegments := strings.Split(prefix, "/")
		if len(prefixSegments) > len(segments) {
			continue
		}

		matched := true
		for i, p := range prefixSegments {
			if segments[i] != p {
				matched = false
				break
			}
		}
		if matched {
			return strings.Join(segments[len(prefixSegments):], "/")
		}
	}

	return path
}
