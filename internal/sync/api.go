package sync

import (
	"context"

	"github.com/timecamphq/peoplesync/internal/timecamp"
)

// API is the TimeCamp surface the engine drives. *timecamp.Client
// implements it; tests substitute a fake.
type API interface {
	GetUsers(ctx context.Context) ([]timecamp.User, error)
	GetGroups(ctx context.Context) ([]timecamp.Group, error)
	GetUserRoles(ctx context.Context) (map[int][]timecamp.RoleAssignment, error)

	AddUser(ctx context.Context, email, name string, groupID int) (int, error)
	UpdateUser(ctx context.Context, userID, groupID int, upd timecamp.UserUpdate) error
	AddGroup(ctx context.Context, name string, parentID int) (int, error)
	SetGroupManager(ctx context.Context, groupID, userID int, manager bool) error
	SetUserSetting(ctx context.Context, userID int, name, value string) error
}
