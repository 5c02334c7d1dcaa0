package sync

import (
	"context"
	"fmt"

	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/models"
)

// fixupManagers runs last: in supervisor-derived hierarchies, a user
// with the supervisor role manages their own group, and losing the
// role clears the flag. Administrators are never made group managers.
func (e *Engine) fixupManagers(ctx context.Context, desired []models.DesiredUser) error {
	if !e.cfg.UseSupervisorGroups {
		return nil
	}

	for _, d := range desired {
		if !d.Active() || d.GroupPath == "" {
			continue
		}

		userID, known := e.liveIDs[d.Email]
		if !known {
			continue
		}
		if e.cfg.IsIgnoredUser(userID) {
			continue
		}

		groupID, skip := e.resolveGroup(d.GroupPath)
		if skip || groupID == e.tree.Root() {
			continue
		}

		isManager := e.currentRole(userID, groupID) == "2"

		switch {
		case d.Role == models.RoleSupervisor && !isManager:
			if err := e.setManager(ctx, d.Email, groupID, userID, true); err != nil {
				return err
			}
		case d.Role != models.RoleSupervisor && isManager:
			if err := e.setManager(ctx, d.Email, groupID, userID, false); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Engine) setManager(ctx context.Context, email string, groupID, userID int, manager bool) error {
	if e.dryRun {
		logging.S.Infof("[dry run] would set manager=%t for %s in group %d", manager, email, groupID)
		return nil
	}

	logging.S.Infof("setting manager=%t for %s in group %d", manager, email, groupID)

	if err := e.api.SetGroupManager(ctx, groupID, userID, manager); err != nil {
		return e.skippable(err, fmt.Sprintf("set group manager for %s", email))
	}
	return nil
}
