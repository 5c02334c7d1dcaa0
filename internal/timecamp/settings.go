package timecamp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/timecamphq/peoplesync/internal/httpclient"
)

// settingsBatchSize bounds how many user ids one settings query may
// carry.
const settingsBatchSize = 50

// SetUserSetting writes one key of a user's settings bag.
func (c *Client) SetUserSetting(ctx context.Context, userID int, name, value string) error {
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/user/%d/setting", userID),
		Body: map[string]string{
			"name":  name,
			"value": value,
		},
	}, nil)
	return checkError(fmt.Sprintf("set %s for user %d", name, userID), err)
}

// GetUserSettings reads one named setting for many users, batched.
// Users without the setting are absent from the result.
func (c *Client) GetUserSettings(ctx context.Context, userIDs []int, name string) (map[int]string, error) {
	result := make(map[int]string, len(userIDs))

	for start := 0; start < len(userIDs); start += settingsBatchSize {
		end := start + settingsBatchSize
		if end > len(userIDs) {
			end = len(userIDs)
		}
		batch := userIDs[start:end]

		if err := c.getSettingsBatch(ctx, batch, name, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (c *Client) getSettingsBatch(ctx context.Context, batch []int, name string, result map[int]string) error {
	ids := make([]string, len(batch))
	for i, id := range batch {
		ids[i] = strconv.Itoa(id)
	}

	query := url.Values{}
	query.Set("name[]", name)

	// The settings endpoint answers either a map keyed by user id or a
	// flat list, depending on the API version.
	var settings interface{}
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/user/%s/setting", strings.Join(ids, ",")),
		Query:  query,
	}, &settings)
	if err != nil {
		return checkError(fmt.Sprintf("read %s settings", name), err)
	}

	switch payload := settings.(type) {
	case map[string]interface{}:
		for rawID, entries := range payload {
			id, err := strconv.Atoi(rawID)
			if err != nil {
				continue
			}
			list, ok := entries.([]interface{})
			if !ok {
				continue
			}
			for _, entry := range list {
				if n, v, ok := settingFields(entry); ok && n == name {
					result[id] = v
				}
			}
		}
	case []interface{}:
		for _, entry := range payload {
			m, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			n, v, ok := settingFields(entry)
			if !ok || n != name {
				continue
			}
			if id, err := strconv.Atoi(asString(m["userId"])); err == nil {
				result[id] = v
			}
		}
	}

	return nil
}

func settingFields(entry interface{}) (name, value string, ok bool) {
	m, isMap := entry.(map[string]interface{})
	if !isMap {
		return "", "", false
	}
	return asString(m["name"]), asString(m["value"]), true
}

func asString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return ""
}
