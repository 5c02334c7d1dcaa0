package sync

import (
	"context"
	"sort"
	"strings"

	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/models"
	"github.com/timecamphq/peoplesync/internal/timecamp"
	"github.com/timecamphq/peoplesync/internal/tree"
)

// requiredPaths collects the breadcrumbs referenced by active desired
// users. In no-create mode only paths of users that matched a live
// user count, so no groups are made for users that will never exist.
func (e *Engine) requiredPaths(desired []models.DesiredUser, matched map[string]bool) []string {
	paths := map[string]bool{}
	for _, d := range desired {
		if !d.Active() || d.GroupPath == "" {
			continue
		}
		if e.cfg.DisableNewUsers && !matched[d.Email] {
			continue
		}
		paths[d.GroupPath] = true
	}

	sorted := make([]string, 0, len(paths))
	for path := range paths {
		sorted = append(sorted, path)
	}
	// Shallowest first so parents exist before children; ties resolve
	// lexically for determinism.
	sort.Slice(sorted, func(i, j int) bool {
		di, dj := strings.Count(sorted[i], "/"), strings.Count(sorted[j], "/")
		if di != dj {
			return di < dj
		}
		return sorted[i] < sorted[j]
	})

	return sorted
}

// ensureGroups converges the live hierarchy on the required paths.
// Creation failures mark the path so users routed through it are
// skipped rather than misplaced.
func (e *Engine) ensureGroups(ctx context.Context, paths []string) error {
	if e.cfg.DisableGroupsCreation {
		if len(paths) > 0 {
			logging.S.Infof("group creation disabled, users with missing groups fall back to the root group")
		}
		return nil
	}

	create := func(ctx context.Context, name string, parentID int) (int, error) {
		e.summary.GroupsCreated++
		if e.dryRun {
			logging.S.Infof("[dry run] would create group %q under %d", name, parentID)
			e.nextDryID--
			return e.nextDryID, nil
		}
		id, err := e.api.AddGroup(ctx, name, parentID)
		if err != nil {
			e.summary.GroupsCreated--
		}
		return id, err
	}

	for _, path := range paths {
		if _, ok := e.tree.LookupByPath(path); ok {
			continue
		}
		if _, err := e.tree.EnsurePath(ctx, path, create); err != nil {
			if timecamp.IsFatal(err) {
				return err
			}
			logging.S.Errorf("cannot create group path %q, its users will be skipped: %v", path, err)
			e.failedPaths[path] = true
			e.summary.Errors++
		}
	}

	return nil
}

// resolveGroup maps a breadcrumb to a live group id. skip is true when
// the path could not be created this run.
func (e *Engine) resolveGroup(path string) (groupID int, skip bool) {
	if path == "" {
		return e.tree.Root(), false
	}
	if e.failedPaths[path] {
		return 0, true
	}
	if id, ok := e.tree.LookupByPath(path); ok {
		return id, false
	}
	// Missing path with creation disabled (or never required): the
	// user lands at the root.
	return e.tree.Root(), false
}

func (e *Engine) buildTree(groups []timecamp.Group) {
	for _, g := range groups {
		e.tree.Add(tree.Node{ID: g.ID, ParentID: g.ParentID, Name: g.Name})
	}
}
