// Package sync implements the third pipeline stage: it diffs the
// desired user set against the live TimeCamp state and converges the
// target with a minimal, ordered sequence of operations.
//
// The hard ordering contract: required groups first (parents before
// children), then user creations, then attribute updates and group
// moves, then re-activations, then deactivations, and group-manager
// fix-ups last. A failure on one user is logged and the run continues
// with the next; only authentication failures abort.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/timecamphq/peoplesync/internal/config"
	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/metrics"
	"github.com/timecamphq/peoplesync/internal/models"
	"github.com/timecamphq/peoplesync/internal/timecamp"
	"github.com/timecamphq/peoplesync/internal/timer"
	"github.com/timecamphq/peoplesync/internal/tree"
)

// Engine converges TimeCamp on a desired user set. It is
// single-threaded; all API calls are serial.
type Engine struct {
	api    API
	cfg    config.TimeCamp
	dryRun bool

	tree        *tree.Tree
	failedPaths map[string]bool
	roles       map[int][]timecamp.RoleAssignment
	summary     Summary

	// liveIDs maps desired emails to live user ids, filled by the
	// match and create passes and consumed by later passes.
	liveIDs map[string]int

	// nextDryID hands out placeholder ids for entities that would be
	// created outside dry-run mode.
	nextDryID int

	// guardCounted ensures a protected user is counted as skipped at
	// most once across the passes.
	guardCounted map[int]bool
}

func NewEngine(api API, cfg config.TimeCamp, dryRun bool) *Engine {
	return &Engine{
		api:          api,
		cfg:          cfg,
		dryRun:       dryRun,
		failedPaths:  map[string]bool{},
		liveIDs:      map[string]int{},
		guardCounted: map[int]bool{},
	}
}

// Run reads the live snapshot, plans, and executes. The summary is
// meaningful even when an error is returned.
func (e *Engine) Run(ctx context.Context, desired []models.DesiredUser) (Summary, error) {
	defer timer.LogElapsed(time.Now(), "user sync")

	e.tree = tree.New(e.cfg.RootGroupID)
	e.summary = Summary{}

	live, err := e.api.GetUsers(ctx)
	if err != nil {
		return e.summary, fmt.Errorf("fetch live users: %w", err)
	}
	groups, err := e.api.GetGroups(ctx)
	if err != nil {
		return e.summary, fmt.Errorf("fetch live groups: %w", err)
	}
	e.roles, err = e.api.GetUserRoles(ctx)
	if err != nil {
		return e.summary, fmt.Errorf("fetch live roles: %w", err)
	}
	e.buildTree(groups)

	logging.S.Infof("syncing %d desired users against %d live users and %d groups",
		len(desired), len(live), len(groups))

	// Match first: the matched set decides which groups are required
	// in no-create mode.
	match := newMatcher(live)
	pairs := make(map[string]*timecamp.User, len(desired))
	duplicates := map[string]bool{}
	matched := map[string]bool{}
	for _, d := range desired {
		user, duplicate := match.match(d)
		if duplicate {
			duplicates[d.Email] = true
			continue
		}
		if user != nil {
			pairs[d.Email] = user
			matched[d.Email] = true
			e.liveIDs[d.Email] = user.ID
		}
	}

	// 1. Groups, parents before children.
	if err := e.ensureGroups(ctx, e.requiredPaths(desired, matched)); err != nil {
		return e.summary, err
	}

	// 2. New users.
	for _, d := range desired {
		if matched[d.Email] || duplicates[d.Email] {
			continue
		}
		if err := e.createUser(ctx, d); err != nil {
			return e.summary, err
		}
	}

	// 3. Attribute updates and group moves.
	for _, d := range desired {
		liveUser := pairs[d.Email]
		if liveUser == nil || !d.Active() {
			continue
		}
		if err := e.updateUser(ctx, d, liveUser); err != nil {
			return e.summary, err
		}
	}

	// 4. Returning users.
	for _, d := range desired {
		liveUser := pairs[d.Email]
		if liveUser == nil || !d.Active() || liveUser.Enabled {
			continue
		}
		if err := e.activateUser(ctx, d, liveUser); err != nil {
			return e.summary, err
		}
	}

	// 5. Users gone from the source, or marked inactive by it.
	if err := e.deactivatePass(ctx, desired, pairs, live, match); err != nil {
		return e.summary, err
	}

	// 6. Group managers.
	if err := e.fixupManagers(ctx, desired); err != nil {
		return e.summary, err
	}

	logging.S.Infof("sync finished: %s", e.summary)

	return e.summary, nil
}

// skippable classifies user-level failures: they are logged and the
// run continues. Fatal (auth) errors propagate.
func (e *Engine) skippable(err error, what string) error {
	if err == nil {
		return nil
	}
	if timecamp.IsFatal(err) {
		return err
	}
	logging.S.Errorf("%s: %v", what, err)
	e.summary.Errors++
	e.summary.UsersSkipped++
	metrics.UsersSkipped.Inc()
	return nil
}

// guarded reports whether a live user must not be mutated, counting
// the skip.
func (e *Engine) guarded(u *timecamp.User, email string) bool {
	if e.cfg.IsIgnoredUser(u.ID) {
		if !e.guardCounted[u.ID] {
			logging.S.Debugf("skipping ignored user %s (id %d)", email, u.ID)
			e.guardCounted[u.ID] = true
			e.summary.UsersSkipped++
			metrics.UsersSkipped.Inc()
		}
		return true
	}
	if u.AddedManually && e.cfg.DisableManualUserUpdates {
		if !e.guardCounted[u.ID] {
			logging.S.Infof("skipping manually added user %s (id %d)", email, u.ID)
			e.guardCounted[u.ID] = true
			e.summary.UsersSkipped++
			metrics.UsersSkipped.Inc()
		}
		return true
	}
	return false
}
