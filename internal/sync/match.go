package sync

import (
	"strings"

	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/models"
	"github.com/timecamphq/peoplesync/internal/timecamp"
)

// matcher resolves desired users to live users by primary email, then
// additional email, then external id. The external id is the stable
// key across renames.
type matcher struct {
	byEmail           map[string]*timecamp.User
	byAdditionalEmail map[string]*timecamp.User
	byExternalID      map[string]*timecamp.User

	// consumed guards against two desired records claiming one live
	// user.
	consumed map[int]bool
}

func newMatcher(live []timecamp.User) *matcher {
	m := &matcher{
		byEmail:           make(map[string]*timecamp.User, len(live)),
		byAdditionalEmail: map[string]*timecamp.User{},
		byExternalID:      map[string]*timecamp.User{},
		consumed:          map[int]bool{},
	}

	for i := range live {
		u := &live[i]
		m.byEmail[strings.ToLower(u.Email)] = u
		if u.AdditionalEmail != "" {
			m.byAdditionalEmail[strings.ToLower(u.AdditionalEmail)] = u
		}
		if u.ExternalID != "" {
			m.byExternalID[u.ExternalID] = u
		}
	}

	return m
}

// match claims the live user for a desired record. duplicate is true
// when the candidate was already claimed by an earlier desired record;
// such records must be skipped, not created.
func (m *matcher) match(desired models.DesiredUser) (user *timecamp.User, duplicate bool) {
	email := strings.ToLower(desired.Email)

	candidate := m.byEmail[email]
	if candidate == nil {
		candidate = m.byAdditionalEmail[email]
	}
	if candidate == nil && desired.ExternalID != "" {
		candidate = m.byExternalID[desired.ExternalID]
	}

	if candidate == nil {
		return nil, false
	}
	if m.consumed[candidate.ID] {
		logging.S.Warnf("live user %d already matched, skipping duplicate source record %s", candidate.ID, desired.Email)
		return nil, true
	}

	m.consumed[candidate.ID] = true

	return candidate, false
}

// unmatched reports whether a live user was never claimed.
func (m *matcher) unmatched(u *timecamp.User) bool {
	return !m.consumed[u.ID]
}
