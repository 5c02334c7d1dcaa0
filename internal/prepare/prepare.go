// Package prepare implements the second pipeline stage: it turns the
// Person set emitted by a source fetcher into the sorted DesiredUser
// list consumed by the sync stage. The engine is deterministic and
// performs no I/O.
package prepare

import (
	"sort"
	"strings"

	"github.com/timecamphq/peoplesync/internal/config"
	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/models"
)

// Engine applies the configured naming, grouping and role policies.
type Engine struct {
	cfg config.TimeCamp
}

func NewEngine(cfg config.TimeCamp) *Engine {
	return &Engine{cfg: cfg}
}

// Run projects the source Persons onto TimeCamp's schema. Records
// missing an external id, email or a recognised status are skipped.
// Output is deduplicated by email (last record wins) and sorted
// ascending by email.
func (e *Engine) Run(source models.SourceFile) []models.DesiredUser {
	dir := newDirectory(e.cfg, source.Users)
	strategy := newPathStrategy(e.cfg, dir)

	byEmail := map[string]models.DesiredUser{}

	for i := range source.Users {
		p := &source.Users[i]

		if p.ExternalID == "" {
			logging.S.Warnf("skipping person without external_id (name %q)", p.Name)
			continue
		}

		status, ok := normalizeStatus(p.Status)
		if !ok {
			logging.S.Warnf("skipping %s: unknown status %q", p.ExternalID, p.Status)
			continue
		}

		email := strings.ToLower(replaceEmailDomain(
			pickEmail(p.Email, e.cfg.ReplaceEmailDomain), e.cfg.ReplaceEmailDomain))
		if email == "" {
			logging.S.Warnf("skipping %s: no usable email", p.ExternalID)
			continue
		}

		groupPath := strategy.groupPath(p)
		if p.ForceGlobalAdminRole {
			// Global administrators live at the root group.
			groupPath = ""
		}

		desired := models.DesiredUser{
			ExternalID: p.ExternalID,
			Name:       e.displayName(p),
			Email:      email,
			GroupPath:  groupPath,
			Status:     status,
			Role:       resolveRole(e.cfg, p),
		}

		if p.RealEmail != "" && !strings.EqualFold(p.RealEmail, email) {
			desired.RealEmail = replaceEmailDomain(p.RealEmail, e.cfg.ReplaceEmailDomain)
		}

		byEmail[email] = desired
	}

	users := make([]models.DesiredUser, 0, len(byEmail))
	for _, u := range byEmail {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })

	return users
}

// displayName formats the user-facing name: optional job-title
// decoration, then the optional external-id suffix.
func (e *Engine) displayName(p *models.Person) string {
	name := cleanName(p.Name)
	if e.cfg.UseJobTitleNameUsers && p.JobTitle != "" {
		name = cleanName(p.JobTitle) + " [" + name + "]"
	}
	if e.cfg.ShowExternalID && p.ExternalID != "" {
		name += " (" + p.ExternalID + ")"
	}
	return name
}

func normalizeStatus(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.StatusActive:
		return models.StatusActive, true
	case models.StatusInactive:
		return models.StatusInactive, true
	}
	return "", false
}
