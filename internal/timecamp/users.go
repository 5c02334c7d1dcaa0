package timecamp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/timecamphq/peoplesync/internal/httpclient"
	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/metrics"
)

// GetUsers lists live users merged from three sub-queries: the user
// listing, the disabled flag, and the settings bag (additional email,
// external id, added_manually). Users absent from the listing do not
// exist.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	var raw []rawUser
	err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/users"}, &raw)
	if err != nil {
		return nil, checkError("list users", err)
	}

	ids := make([]int, 0, len(raw))
	for _, u := range raw {
		ids = append(ids, int(u.UserID))
	}

	disabled, err := c.GetUserSettings(ctx, ids, SettingDisabledUser)
	if err != nil {
		return nil, err
	}
	additionalEmails, err := c.GetUserSettings(ctx, ids, SettingAdditionalEmail)
	if err != nil {
		return nil, err
	}
	externalIDs, err := c.GetUserSettings(ctx, ids, SettingExternalID)
	if err != nil {
		return nil, err
	}
	manuallyAdded, err := c.GetUserSettings(ctx, ids, SettingAddedManually)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(raw))
	for _, u := range raw {
		id := int(u.UserID)
		users = append(users, User{
			ID:              id,
			Email:           strings.ToLower(u.Email),
			Name:            u.DisplayName,
			GroupID:         int(u.GroupID),
			AdditionalEmail: additionalEmails[id],
			ExternalID:      externalIDs[id],
			Enabled:         disabled[id] != "1",
			AddedManually:   manuallyAdded[id] == "1",
		})
	}

	return users, nil
}

// GetUserRoles returns every (group, role) assignment per user id.
func (c *Client) GetUserRoles(ctx context.Context) (map[int][]RoleAssignment, error) {
	var resp struct {
		Groups map[string]struct {
			GroupID intString `json:"group_id"`
			Users   map[string]struct {
				RoleID string `json:"role_id"`
			} `json:"users"`
		} `json:"groups"`
	}

	err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/people_picker"}, &resp)
	if err != nil {
		return nil, checkError("list user roles", err)
	}

	roles := map[int][]RoleAssignment{}
	for _, group := range resp.Groups {
		for rawID, user := range group.Users {
			id, err := strconv.Atoi(rawID)
			if err != nil {
				continue
			}
			roles[id] = append(roles[id], RoleAssignment{
				GroupID: int(group.GroupID),
				RoleID:  user.RoleID,
			})
		}
	}

	return roles, nil
}

// AddUser creates a user in groupID and returns the new id. The
// request suppresses TimeCamp's welcome email; the display name is set
// with a follow-up call because creation only accepts the email.
func (c *Client) AddUser(ctx context.Context, email, name string, groupID int) (int, error) {
	var resp struct {
		UserID intString `json:"user_id"`
	}

	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/group/%d/user", groupID),
		Body: map[string]interface{}{
			"email":                       []string{email},
			"tt_global_admin":             "0",
			"tt_can_create_level_1_tasks": "0",
			"can_view_rates":              "0",
			"add_to_all_projects":         "0",
			"send_email":                  "0",
		},
	}, &resp)
	if err != nil {
		return 0, checkError(fmt.Sprintf("create user %s", email), err)
	}

	userID := int(resp.UserID)
	if userID == 0 {
		// Some API versions omit the id from the creation response.
		userID, err = c.findUserIDByEmail(ctx, email)
		if err != nil {
			return 0, err
		}
	}

	if name != "" {
		err = c.http.Do(ctx, httpclient.Request{
			Method: http.MethodPost,
			Path:   "/user",
			Body: map[string]string{
				"user_id":      strconv.Itoa(userID),
				"display_name": name,
			},
		}, nil)
		if err != nil {
			return userID, checkError(fmt.Sprintf("set name for new user %s", email), err)
		}
	}

	metrics.UsersCreated.Inc()
	logging.S.Infof("created user %s (id %d) in group %d", email, userID, groupID)

	return userID, nil
}

func (c *Client) findUserIDByEmail(ctx context.Context, email string) (int, error) {
	var raw []rawUser
	err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/users"}, &raw)
	if err != nil {
		return 0, checkError("list users", err)
	}

	for _, u := range raw {
		if strings.EqualFold(u.Email, email) {
			return int(u.UserID), nil
		}
	}
	return 0, fmt.Errorf("locate new user %s: %w", email, ErrNotFound)
}

// UserUpdate is a partial update; only non-nil fields are written.
type UserUpdate struct {
	Name            *string
	Email           *string
	AdditionalEmail *string
	ExternalID      *string
	RoleID          *string
	GroupID         *int
	Active          *bool
}

// Empty reports whether the update writes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.AdditionalEmail == nil &&
		u.ExternalID == nil && u.RoleID == nil && u.GroupID == nil && u.Active == nil
}

// UpdateUser applies the present fields of upd to the user. groupID is
// the group the user belongs to after the update (the move target when
// GroupID is set); role changes are scoped to it.
func (c *Client) UpdateUser(ctx context.Context, userID, groupID int, upd UserUpdate) error {
	uid := strconv.Itoa(userID)

	if upd.Name != nil || upd.Email != nil {
		body := map[string]string{"user_id": uid}
		if upd.Name != nil {
			body["display_name"] = *upd.Name
		}
		if upd.Email != nil {
			body["email"] = *upd.Email
		}
		err := c.http.Do(ctx, httpclient.Request{
			Method: http.MethodPost,
			Path:   "/user",
			Body:   body,
		}, nil)
		if err != nil {
			return checkError(fmt.Sprintf("update user %d", userID), err)
		}
	}

	if upd.GroupID != nil {
		err := c.http.Do(ctx, httpclient.Request{
			Method: http.MethodPut,
			Path:   fmt.Sprintf("/group/%d/user", *upd.GroupID),
			Body: map[string]string{
				"user_id":  uid,
				"group_id": strconv.Itoa(*upd.GroupID),
			},
		}, nil)
		if err != nil {
			return checkError(fmt.Sprintf("move user %d to group %d", userID, *upd.GroupID), err)
		}
	}

	if upd.RoleID != nil {
		err := c.http.Do(ctx, httpclient.Request{
			Method: http.MethodPut,
			Path:   fmt.Sprintf("/group/%d/user", groupID),
			Body: map[string]string{
				"user_id": uid,
				"role_id": *upd.RoleID,
			},
		}, nil)
		if err != nil {
			return checkError(fmt.Sprintf("set role for user %d", userID), err)
		}
	}

	if upd.AdditionalEmail != nil {
		if err := c.SetUserSetting(ctx, userID, SettingAdditionalEmail, *upd.AdditionalEmail); err != nil {
			return err
		}
	}

	if upd.ExternalID != nil {
		if err := c.SetUserSetting(ctx, userID, SettingExternalID, *upd.ExternalID); err != nil {
			return err
		}
	}

	if upd.Active != nil {
		value := "1"
		if *upd.Active {
			value = "0"
		}
		if err := c.SetUserSetting(ctx, userID, SettingDisabledUser, value); err != nil {
			return err
		}
	}

	return nil
}
