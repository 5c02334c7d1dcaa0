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

// GetGroups lists the groups under the configured root group, with
// breadcrumb paths computed by walking parent links. The root group is
// included with an empty path. Groups outside the root subtree are
// omitted.
func (c *Client) GetGroups(ctx context.Context) ([]Group, error) {
	var raw []rawGroup
	err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/group"}, &raw)
	if err != nil {
		return nil, checkError("list groups", err)
	}

	byID := make(map[int]rawGroup, len(raw))
	for _, g := range raw {
		byID[int(g.GroupID)] = g
	}

	groups := make([]Group, 0, len(raw))
	for _, g := range raw {
		path, ok := c.pathUnderRoot(int(g.GroupID), byID)
		if !ok {
			continue
		}
		groups = append(groups, Group{
			ID:       int(g.GroupID),
			ParentID: int(g.ParentID),
			Name:     strings.TrimSpace(g.Name),
			Path:     path,
		})
	}

	return groups, nil
}

// pathUnderRoot walks parent links from id up to the root group and
// returns the breadcrumb, or false when id is not in the root subtree.
func (c *Client) pathUnderRoot(id int, byID map[int]rawGroup) (string, bool) {
	var segments []string
	seen := map[int]bool{}

	for id != c.rootGroupID {
		if id == 0 || seen[id] {
			return "", false
		}
		seen[id] = true

		g, ok := byID[id]
		if !ok {
			return "", false
		}
		segments = append([]string{strings.TrimSpace(g.Name)}, segments...)
		id = int(g.ParentID)
	}

	return strings.Join(segments, "/"), true
}

// addGroupRetry declares HTTP 403 transient for group creation unless
// the body names a permission problem. The API intermittently answers
// 403 under load.
func addGroupRetry(status int, body []byte) bool {
	if status != http.StatusForbidden {
		return false
	}
	lower := strings.ToLower(string(body))
	return !strings.Contains(lower, "permission") && !strings.Contains(lower, "denied")
}

// AddGroup creates a group under parentID and returns its id.
func (c *Client) AddGroup(ctx context.Context, name string, parentID int) (int, error) {
	var resp struct {
		GroupID intString `json:"group_id"`
	}

	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   "/group",
		Body: map[string]string{
			"name":      name,
			"parent_id": strconv.Itoa(parentID),
		},
		Retry: httpclient.RetryPolicy{ShouldRetry: addGroupRetry},
	}, &resp)
	if err != nil {
		return 0, checkError(fmt.Sprintf("create group %q", name), err)
	}

	metrics.GroupsCreated.Inc()
	logging.S.Infof("created group %q (id %d) under %d", name, int(resp.GroupID), parentID)

	return int(resp.GroupID), nil
}

// SetGroupManager grants or revokes the group-manager role for userID
// in groupID. The operation is idempotent.
func (c *Client) SetGroupManager(ctx context.Context, groupID, userID int, manager bool) error {
	roleID := "3"
	if manager {
		roleID = "2"
	}

	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/group/%d/user", groupID),
		Body: map[string]string{
			"user_id": strconv.Itoa(userID),
			"role_id": roleID,
		},
	}, nil)
	return checkError(fmt.Sprintf("set manager=%t for user %d in group %d", manager, userID, groupID), err)
}
