package prepare

import (
	"strings"

	"github.com/timecamphq/peoplesync/internal/config"
	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/models"
)

// directory indexes the Person set for supervisor-chain walks.
type directory struct {
	cfg  config.TimeCamp
	byID map[string]*models.Person

	// hasReports marks external ids that someone points at via
	// supervisor_id.
	hasReports map[string]bool
}

func newDirectory(cfg config.TimeCamp, persons []models.Person) *directory {
	d := &directory{
		cfg:        cfg,
		byID:       make(map[string]*models.Person, len(persons)),
		hasReports: map[string]bool{},
	}

	for i := range persons {
		p := &persons[i]
		if p.ExternalID == "" {
			continue
		}
		d.byID[p.ExternalID] = p
	}
	for i := range persons {
		if id := strings.TrimSpace(persons[i].SupervisorID); id != "" {
			d.hasReports[id] = true
		}
	}

	return d
}

// isSupervisor reports whether a person anchors a group segment:
// either flagged by the source or with at least one direct report.
func (d *directory) isSupervisor(p *models.Person) bool {
	return p.IsSupervisor || d.hasReports[p.ExternalID]
}

// supervisor resolves a person's supervisor pointer. Dangling pointers
// are logged and treated as "no supervisor".
func (d *directory) supervisor(p *models.Person) *models.Person {
	id := strings.TrimSpace(p.SupervisorID)
	if id == "" {
		return nil
	}
	sup, ok := d.byID[id]
	if !ok {
		logging.S.Warnf("supervisor %s of %s not found, treating as no supervisor", id, p.ExternalID)
		return nil
	}
	return sup
}

// groupSegment formats a supervisor's name for use as a path segment.
func (d *directory) groupSegment(p *models.Person) string {
	name := cleanName(p.Name)
	if d.cfg.UseJobTitleNameGroups && p.JobTitle != "" {
		name = cleanName(p.JobTitle) + " [" + name + "]"
	}
	return name
}

// supervisorPath builds the chain of supervisor segments ending at p,
// root-most first. The walk stops at the first ancestor who is not a
// supervisor, and a visited set terminates cycles.
func (d *directory) supervisorPath(p *models.Person) []string {
	segments := []string{}
	visited := map[string]bool{}

	for current := p; current != nil && d.isSupervisor(current); current = d.supervisor(current) {
		if visited[current.ExternalID] {
			logging.S.Warnf("supervisor cycle detected at %s, stopping walk", current.ExternalID)
			break
		}
		visited[current.ExternalID] = true

		segments = append([]string{d.groupSegment(current)}, segments...)
	}

	return segments
}
