package timecamp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/timecamphq/peoplesync/internal/httpclient"
)

func newTestClient(t *testing.T, rootGroupID int, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hc := httpclient.New(server.URL, http.Header{})
	hc.Sleep = func(time.Duration) {}
	return NewClientWithHTTP(hc, rootGroupID)
}

func TestGetGroupsComputesPathsUnderRoot(t *testing.T) {
	client := newTestClient(t, 100, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/group", r.URL.Path)
		fmt.Fprint(w, `[
			{"group_id":"100","name":"Everyone","parent_id":"0"},
			{"group_id":"101","name":"Eng","parent_id":"100"},
			{"group_id":"102","name":"Backend ","parent_id":"101"},
			{"group_id":"900","name":"Elsewhere","parent_id":"1"}
		]`)
	}))

	groups, err := client.GetGroups(context.Background())
	require.NoError(t, err)

	paths := map[int]string{}
	for _, g := range groups {
		paths[g.ID] = g.Path
	}

	require.Equal(t, map[int]string{
		100: "",
		101: "Eng",
		102: "Eng/Backend",
	}, paths)
}

func TestGetUsersMergesSettings(t *testing.T) {
	client := newTestClient(t, 100, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/users":
			fmt.Fprint(w, `[
				{"user_id":"1","email":"A@x.com","display_name":"A","group_id":"100"},
				{"user_id":"2","email":"b@x.com","display_name":"B","group_id":"101"}
			]`)
		case strings.HasPrefix(r.URL.Path, "/user/"):
			name := r.URL.Query().Get("name[]")
			switch name {
			case SettingDisabledUser:
				fmt.Fprint(w, `{"2":[{"name":"disabled_user","value":"1"}]}`)
			case SettingAdditionalEmail:
				fmt.Fprint(w, `{"1":[{"name":"additional_email","value":"alt@x.com"}]}`)
			case SettingExternalID:
				fmt.Fprint(w, `{"1":[{"name":"external_id","value":"e1"}]}`)
			case SettingAddedManually:
				fmt.Fprint(w, `{"2":[{"name":"added_manually","value":"1"}]}`)
			default:
				t.Errorf("unexpected setting %q", name)
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	users, err := client.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	require.Equal(t, User{
		ID: 1, Email: "a@x.com", Name: "A", GroupID: 100,
		AdditionalEmail: "alt@x.com", ExternalID: "e1", Enabled: true,
	}, users[0])
	require.Equal(t, User{
		ID: 2, Email: "b@x.com", Name: "B", GroupID: 101,
		Enabled: false, AddedManually: true,
	}, users[1])
}

func TestGetUserSettingsBatches(t *testing.T) {
	var batches []int
	client := newTestClient(t, 100, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/user/"), "/setting")
		batches = append(batches, len(strings.Split(ids, ",")))
		fmt.Fprint(w, `{}`)
	}))

	ids := make([]int, 120)
	for i := range ids {
		ids[i] = i + 1
	}

	_, err := client.GetUserSettings(context.Background(), ids, SettingExternalID)
	require.NoError(t, err)
	require.Equal(t, []int{50, 50, 20}, batches)
}

func TestAddGroupRetriesTransient403(t *testing.T) {
	attempts := 0
	client := newTestClient(t, 100, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message":"try again later"}`)
			return
		}
		fmt.Fprint(w, `{"group_id":"501"}`)
	}))

	id, err := client.AddGroup(context.Background(), "Eng", 100)
	require.NoError(t, err)
	require.Equal(t, 501, id)
	require.Equal(t, 2, attempts)
}

func TestAddGroupSurfacesRealPermissionErrors(t *testing.T) {
	attempts := 0
	client := newTestClient(t, 100, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"permission denied for this account"}`)
	}))

	_, err := client.AddGroup(context.Background(), "Eng", 100)
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.Equal(t, 1, attempts)
}

func TestAddUserSuppressesWelcomeEmail(t *testing.T) {
	var createBody map[string]interface{}
	client := newTestClient(t, 100, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/group/101/user":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&createBody))
			fmt.Fprint(w, `{"user_id":"77"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/user":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "77", body["user_id"])
			require.Equal(t, "New Person", body["display_name"])
			fmt.Fprint(w, `{}`)
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	}))

	id, err := client.AddUser(context.Background(), "new@x.com", "New Person", 101)
	require.NoError(t, err)
	require.Equal(t, 77, id)
	require.Equal(t, "0", createBody["send_email"])
	require.Equal(t, []interface{}{"new@x.com"}, createBody["email"])
}

func TestUpdateUserWritesOnlyPresentFields(t *testing.T) {
	var calls []string
	client := newTestClient(t, 100, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		fmt.Fprint(w, `{}`)
	}))

	name := "Renamed"
	active := false
	err := client.UpdateUser(context.Background(), 5, 101, UserUpdate{Name: &name, Active: &active})
	require.NoError(t, err)

	require.Equal(t, []string{
		"POST /user",
		"PUT /user/5/setting",
	}, calls)
}

func TestUnauthorizedIsFatal(t *testing.T) {
	client := newTestClient(t, 100, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.GetUsers(context.Background())
	require.Error(t, err)
	require.True(t, IsFatal(err))
	require.True(t, errors.Is(err, ErrUnauthorized))
}
