package prepare

import "strings"

// pickEmail chooses one address from a possibly comma-separated list.
// When a replacement domain is configured, the address already on that
// domain wins; otherwise the first entry does.
func pickEmail(raw, replaceDomain string) string {
	candidates := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			candidates = append(candidates, part)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	if domain := normalizeDomain(replaceDomain); domain != "" {
		for _, candidate := range candidates {
			if strings.EqualFold(emailDomain(candidate), domain) {
				return candidate
			}
		}
	}

	return candidates[0]
}

// replaceEmailDomain rewrites the domain part of an address, keeping
// the local part. A malformed address passes through unchanged.
func replaceEmailDomain(email, replaceDomain string) string {
	domain := normalizeDomain(replaceDomain)
	if domain == "" || email == "" {
		return email
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	return parts[0] + "@" + domain
}

// normalizeDomain accepts the configured domain with or without a
// leading "@".
func normalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.TrimSpace(domain), "@")
}

func emailDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
