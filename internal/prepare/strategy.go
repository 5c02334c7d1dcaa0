package prepare

import (
	"strings"

	"github.com/timecamphq/peoplesync/internal/config"
	"github.com/timecamphq/peoplesync/internal/models"
)

// pathStrategy derives a person's group breadcrumb.
type pathStrategy interface {
	// groupPath returns the breadcrumb under the root group; empty
	// means the root itself.
	groupPath(p *models.Person) string
}

// newPathStrategy picks the derivation mode from the two group
// toggles.
func newPathStrategy(cfg config.TimeCamp, dir *directory) pathStrategy {
	switch {
	case cfg.UseDepartmentGroups && cfg.UseSupervisorGroups:
		return &hybridStrategy{cfg: cfg, dir: dir}
	case cfg.UseSupervisorGroups:
		return &supervisorStrategy{dir: dir}
	case cfg.UseDepartmentGroups:
		return &departmentStrategy{cfg: cfg}
	}
	return flatStrategy{}
}

// departmentStrategy mirrors the source department tree.
type departmentStrategy struct {
	cfg config.TimeCamp
}

func (s *departmentStrategy) groupPath(p *models.Person) string {
	return stripSkipPrefixes(normalizeDepartment(p.Department), s.cfg.SkipDepartments)
}

// supervisorStrategy derives paths from the supervisor hierarchy
// alone. A supervisor appears as the last segment of their own path; a
// leaf lands in their immediate supervisor's path; a person with
// neither role nor supervisor lands at the root.
type supervisorStrategy struct {
	dir *directory
}

func (s *supervisorStrategy) groupPath(p *models.Person) string {
	if s.dir.isSupervisor(p) {
		return strings.Join(s.dir.supervisorPath(p), "/")
	}
	if sup := s.dir.supervisor(p); sup != nil {
		return strings.Join(s.dir.supervisorPath(sup), "/")
	}
	return ""
}

// hybridStrategy nests the supervisor structure beneath the
// department tree: the department is the outer path, the supervisor
// segment the inner one. Without a department it degrades to the
// supervisor-only derivation.
type hybridStrategy struct {
	cfg config.TimeCamp
	dir *directory
}

func (s *hybridStrategy) groupPath(p *models.Person) string {
	department := stripSkipPrefixes(normalizeDepartment(p.Department), s.cfg.SkipDepartments)

	if department == "" {
		sup := supervisorStrategy{dir: s.dir}
		return sup.groupPath(p)
	}

	if s.dir.isSupervisor(p) {
		return department + "/" + s.dir.groupSegment(p)
	}
	if sup := s.dir.supervisor(p); sup != nil {
		return department + "/" + s.dir.groupSegment(sup)
	}
	return department
}

// flatStrategy places everyone at the root group.
type flatStrategy struct{}

func (flatStrategy) groupPath(*models.Person) string { return "" }
