package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/metrics"
	"github.com/timecamphq/peoplesync/internal/models"
	"github.com/timecamphq/peoplesync/internal/timecamp"
)

// createUser handles a desired record with no live match.
func (e *Engine) createUser(ctx context.Context, d models.DesiredUser) error {
	if !d.Active() {
		return nil
	}
	if e.cfg.DisableNewUsers {
		logging.S.Infof("skipping creation of %s (new users disabled)", d.Email)
		e.summary.UsersSkipped++
		return nil
	}

	groupID, skip := e.resolveGroup(d.GroupPath)
	if skip {
		logging.S.Warnf("skipping creation of %s: group path %q unavailable", d.Email, d.GroupPath)
		e.summary.UsersSkipped++
		return nil
	}

	e.summary.UsersCreated++

	if e.dryRun {
		logging.S.Infof("[dry run] would create user %s (%s) in group %d", d.Email, d.Name, groupID)
		e.nextDryID--
		e.liveIDs[d.Email] = e.nextDryID
		return nil
	}

	userID, err := e.api.AddUser(ctx, d.Email, d.Name, groupID)
	if err != nil {
		e.summary.UsersCreated--
		return e.skippable(err, fmt.Sprintf("create user %s", d.Email))
	}
	e.liveIDs[d.Email] = userID

	// AddUser only accepts email and name; the remaining attributes
	// need follow-up writes.
	followUp := timecamp.UserUpdate{}
	if d.ExternalID != "" && !e.cfg.DisableExternalIDSync {
		followUp.ExternalID = &d.ExternalID
	}
	if d.RealEmail != "" && !e.cfg.DisableAdditionalEmailSync {
		followUp.AdditionalEmail = &d.RealEmail
	}
	if d.Role != models.RoleUser && !e.cfg.DisableRoleUpdates {
		roleID := d.Role.ID()
		followUp.RoleID = &roleID
	}
	if !followUp.Empty() {
		if err := e.api.UpdateUser(ctx, userID, groupID, followUp); err != nil {
			return e.skippable(err, fmt.Sprintf("finalize new user %s", d.Email))
		}
	}

	// Mark the user as system-managed from the start.
	if err := e.api.SetUserSetting(ctx, userID, timecamp.SettingAddedManually, "0"); err != nil {
		return e.skippable(err, fmt.Sprintf("finalize new user %s", d.Email))
	}

	return nil
}

// updateUser diffs a matched pair and writes only what changed.
func (e *Engine) updateUser(ctx context.Context, d models.DesiredUser, live *timecamp.User) error {
	if e.guarded(live, d.Email) {
		return nil
	}

	upd := timecamp.UserUpdate{}
	changes := []string{}

	if live.Name != d.Name {
		upd.Name = &d.Name
		changes = append(changes, fmt.Sprintf("name %q -> %q", live.Name, d.Name))
	}

	emailChanged := !strings.EqualFold(live.Email, d.Email)
	if emailChanged {
		upd.Email = &d.Email
		changes = append(changes, fmt.Sprintf("email %s -> %s", live.Email, d.Email))
	}

	// The secondary email follows the desired real email; when the
	// primary changes and nothing else claims the slot, the old
	// address is preserved there for matching across the rename.
	if !e.cfg.DisableAdditionalEmailSync {
		switch {
		case d.RealEmail != "" && !strings.EqualFold(live.AdditionalEmail, d.RealEmail):
			upd.AdditionalEmail = &d.RealEmail
			changes = append(changes, "additional email")
		case emailChanged && live.AdditionalEmail == "":
			old := live.Email
			upd.AdditionalEmail = &old
			changes = append(changes, fmt.Sprintf("additional email <- %s", old))
		}
	} else if emailChanged && live.AdditionalEmail == "" {
		old := live.Email
		upd.AdditionalEmail = &old
		changes = append(changes, fmt.Sprintf("additional email <- %s", old))
	}

	if d.ExternalID != "" && d.ExternalID != live.ExternalID && !e.cfg.DisableExternalIDSync {
		upd.ExternalID = &d.ExternalID
		changes = append(changes, fmt.Sprintf("external id %q -> %q", live.ExternalID, d.ExternalID))
	}

	groupID, skipGroup := e.resolveGroup(d.GroupPath)
	if skipGroup {
		logging.S.Warnf("skipping update of %s: group path %q unavailable", d.Email, d.GroupPath)
		e.summary.UsersSkipped++
		return nil
	}
	if groupID != live.GroupID && !e.cfg.DisableGroupUpdates {
		upd.GroupID = &groupID
		changes = append(changes, fmt.Sprintf("group %d -> %d (%s)", live.GroupID, groupID, breadcrumbOrRoot(d.GroupPath)))
	} else {
		groupID = live.GroupID
	}

	if !e.cfg.DisableRoleUpdates {
		desiredRoleID := d.Role.ID()
		if e.currentRole(live.ID, groupID) != desiredRoleID {
			upd.RoleID = &desiredRoleID
			changes = append(changes, fmt.Sprintf("role -> %s", d.Role))
		}
	}

	if upd.Empty() {
		return nil
	}

	e.summary.UsersUpdated++

	if e.dryRun {
		logging.S.Infof("[dry run] would update user %s: %s", d.Email, strings.Join(changes, ", "))
		return nil
	}

	logging.S.Infof("updating user %s: %s", d.Email, strings.Join(changes, ", "))

	if err := e.api.UpdateUser(ctx, live.ID, groupID, upd); err != nil {
		e.summary.UsersUpdated--
		return e.skippable(err, fmt.Sprintf("update user %s", d.Email))
	}
	metrics.UsersUpdated.Inc()

	return e.clearAddedManually(ctx, live)
}

// activateUser re-enables a returning user.
func (e *Engine) activateUser(ctx context.Context, d models.DesiredUser, live *timecamp.User) error {
	if e.guarded(live, d.Email) {
		return nil
	}

	e.summary.UsersActivated++

	if e.dryRun {
		logging.S.Infof("[dry run] would activate user %s", d.Email)
		return nil
	}

	logging.S.Infof("activating user %s", d.Email)

	active := true
	if err := e.api.UpdateUser(ctx, live.ID, live.GroupID, timecamp.UserUpdate{Active: &active}); err != nil {
		e.summary.UsersActivated--
		return e.skippable(err, fmt.Sprintf("activate user %s", d.Email))
	}
	metrics.UsersActivated.Inc()

	return e.clearAddedManually(ctx, live)
}

// deactivatePass disables live users the source no longer has, and
// matched users the source marks inactive.
func (e *Engine) deactivatePass(ctx context.Context, desired []models.DesiredUser, pairs map[string]*timecamp.User, live []timecamp.User, match *matcher) error {
	if e.cfg.DisableUserDeactivation {
		return nil
	}

	// Matched but inactive in the source.
	for _, d := range desired {
		liveUser := pairs[d.Email]
		if liveUser == nil || d.Active() || !liveUser.Enabled {
			continue
		}
		if err := e.deactivateUser(ctx, liveUser, "marked inactive in source"); err != nil {
			return err
		}
	}

	// Present in TimeCamp, absent from the source.
	for i := range live {
		u := &live[i]
		if !match.unmatched(u) || !u.Enabled {
			continue
		}
		if err := e.deactivateUser(ctx, u, "not present in source"); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) deactivateUser(ctx context.Context, live *timecamp.User, reason string) error {
	if e.guarded(live, live.Email) {
		return nil
	}

	upd := timecamp.UserUpdate{}
	active := false
	upd.Active = &active

	groupID := live.GroupID
	if e.cfg.DisabledUsersGroupID != 0 && live.GroupID != e.cfg.DisabledUsersGroupID {
		groupID = e.cfg.DisabledUsersGroupID
		upd.GroupID = &groupID
	}

	e.summary.UsersDeactivated++

	if e.dryRun {
		logging.S.Infof("[dry run] would deactivate user %s (%s)", live.Email, reason)
		return nil
	}

	logging.S.Infof("deactivating user %s (%s)", live.Email, reason)

	if err := e.api.UpdateUser(ctx, live.ID, groupID, upd); err != nil {
		e.summary.UsersDeactivated--
		return e.skippable(err, fmt.Sprintf("deactivate user %s", live.Email))
	}
	metrics.UsersDeactivated.Inc()

	return nil
}

// clearAddedManually marks a mutated user as system-managed.
func (e *Engine) clearAddedManually(ctx context.Context, live *timecamp.User) error {
	if !live.AddedManually {
		return nil
	}
	if err := e.api.SetUserSetting(ctx, live.ID, timecamp.SettingAddedManually, "0"); err != nil {
		return e.skippable(err, fmt.Sprintf("clear added_manually for user %s", live.Email))
	}
	live.AddedManually = false
	return nil
}

// currentRole returns the live role id of a user within a group, or
// "" when unknown.
func (e *Engine) currentRole(userID, groupID int) string {
	for _, assignment := range e.roles[userID] {
		if assignment.GroupID == groupID {
			return assignment.RoleID
		}
	}
	return ""
}

func breadcrumbOrRoot(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
