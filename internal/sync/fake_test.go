package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/timecamphq/peoplesync/internal/timecamp"
)

// fakeAPI is an in-memory TimeCamp that applies mutations, so a second
// engine run observes the converged state.
type fakeAPI struct {
	users  []timecamp.User
	groups []timecamp.Group
	roles  map[int][]timecamp.RoleAssignment

	nextUserID  int
	nextGroupID int
	rootGroupID int

	// writes records every mutating call in order.
	writes []string

	// failGroups makes AddGroup fail for the given names.
	failGroups map[string]bool
}

func newFakeAPI(rootGroupID int) *fakeAPI {
	return &fakeAPI{
		roles:       map[int][]timecamp.RoleAssignment{},
		nextUserID:  1000,
		nextGroupID: 500,
		rootGroupID: rootGroupID,
		failGroups:  map[string]bool{},
	}
}

func (f *fakeAPI) addLiveUser(u timecamp.User) {
	f.users = append(f.users, u)
}

func (f *fakeAPI) addLiveGroup(id, parentID int, name, path string) {
	f.groups = append(f.groups, timecamp.Group{ID: id, ParentID: parentID, Name: name, Path: path})
}

func (f *fakeAPI) user(id int) *timecamp.User {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i]
		}
	}
	return nil
}

func (f *fakeAPI) record(format string, args ...interface{}) {
	f.writes = append(f.writes, fmt.Sprintf(format, args...))
}

func (f *fakeAPI) GetUsers(context.Context) ([]timecamp.User, error) {
	users := make([]timecamp.User, len(f.users))
	copy(users, f.users)
	return users, nil
}

func (f *fakeAPI) GetGroups(context.Context) ([]timecamp.Group, error) {
	groups := make([]timecamp.Group, len(f.groups))
	copy(groups, f.groups)
	return groups, nil
}

func (f *fakeAPI) GetUserRoles(context.Context) (map[int][]timecamp.RoleAssignment, error) {
	roles := map[int][]timecamp.RoleAssignment{}
	for id, assignments := range f.roles {
		roles[id] = append([]timecamp.RoleAssignment{}, assignments...)
	}
	// Like the people picker, every user reports a role in their own
	// group; plain membership is role 3.
	for _, u := range f.users {
		found := false
		for _, assignment := range roles[u.ID] {
			if assignment.GroupID == u.GroupID {
				found = true
				break
			}
		}
		if !found {
			roles[u.ID] = append(roles[u.ID], timecamp.RoleAssignment{GroupID: u.GroupID, RoleID: "3"})
		}
	}
	return roles, nil
}

func (f *fakeAPI) AddUser(_ context.Context, email, name string, groupID int) (int, error) {
	f.nextUserID++
	f.users = append(f.users, timecamp.User{
		ID:      f.nextUserID,
		Email:   strings.ToLower(email),
		Name:    name,
		GroupID: groupID,
		Enabled: true,
	})
	f.record("AddUser(%s,%d)", email, groupID)
	return f.nextUserID, nil
}

func (f *fakeAPI) UpdateUser(_ context.Context, userID, groupID int, upd timecamp.UserUpdate) error {
	u := f.user(userID)
	if u == nil {
		return timecamp.ErrNotFound
	}

	fields := []string{}
	if upd.Name != nil {
		u.Name = *upd.Name
		fields = append(fields, "name="+*upd.Name)
	}
	if upd.Email != nil {
		u.Email = strings.ToLower(*upd.Email)
		fields = append(fields, "email="+*upd.Email)
	}
	if upd.AdditionalEmail != nil {
		u.AdditionalEmail = *upd.AdditionalEmail
		fields = append(fields, "additional_email="+*upd.AdditionalEmail)
	}
	if upd.ExternalID != nil {
		u.ExternalID = *upd.ExternalID
		fields = append(fields, "external_id="+*upd.ExternalID)
	}
	if upd.GroupID != nil {
		u.GroupID = *upd.GroupID
		fields = append(fields, fmt.Sprintf("group_id=%d", *upd.GroupID))
	}
	if upd.RoleID != nil {
		f.setRole(userID, groupID, *upd.RoleID)
		fields = append(fields, "role_id="+*upd.RoleID)
	}
	if upd.Active != nil {
		u.Enabled = *upd.Active
		fields = append(fields, fmt.Sprintf("active=%t", *upd.Active))
	}

	f.record("UpdateUser(%d,%s)", userID, strings.Join(fields, ","))
	return nil
}

func (f *fakeAPI) AddGroup(_ context.Context, name string, parentID int) (int, error) {
	if f.failGroups[name] {
		return 0, timecamp.ErrPermissionDenied
	}

	path := name
	for _, g := range f.groups {
		if g.ID == parentID && g.Path != "" {
			path = g.Path + "/" + name
		}
	}

	f.nextGroupID++
	f.groups = append(f.groups, timecamp.Group{ID: f.nextGroupID, ParentID: parentID, Name: name, Path: path})
	f.record("AddGroup(%s,%d)", name, parentID)
	return f.nextGroupID, nil
}

func (f *fakeAPI) SetGroupManager(_ context.Context, groupID, userID int, manager bool) error {
	roleID := "3"
	if manager {
		roleID = "2"
	}
	f.setRole(userID, groupID, roleID)
	f.record("SetGroupManager(%d,%d,%t)", groupID, userID, manager)
	return nil
}

func (f *fakeAPI) SetUserSetting(_ context.Context, userID int, name, value string) error {
	if u := f.user(userID); u != nil {
		switch name {
		case timecamp.SettingAddedManually:
			u.AddedManually = value == "1"
		case timecamp.SettingAdditionalEmail:
			u.AdditionalEmail = value
		case timecamp.SettingExternalID:
			u.ExternalID = value
		case timecamp.SettingDisabledUser:
			u.Enabled = value != "1"
		}
	}
	f.record("SetUserSetting(%d,%s,%s)", userID, name, value)
	return nil
}

func (f *fakeAPI) setRole(userID, groupID int, roleID string) {
	for i, assignment := range f.roles[userID] {
		if assignment.GroupID == groupID {
			f.roles[userID][i].RoleID = roleID
			return
		}
	}
	f.roles[userID] = append(f.roles[userID], timecamp.RoleAssignment{GroupID: groupID, RoleID: roleID})
}
