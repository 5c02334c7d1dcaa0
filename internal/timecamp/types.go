package timecamp

import "encoding/json"

// User is a live TimeCamp user merged from the user listing, the
// enabled flag, and the per-user settings bag.
type User struct {
	ID              int
	Email           string
	Name            string
	GroupID         int
	AdditionalEmail string
	ExternalID      string
	Enabled         bool
	AddedManually   bool
}

// Group is a live TimeCamp group. Path is the breadcrumb relative to
// the configured root group; the root itself has an empty Path.
type Group struct {
	ID       int
	ParentID int
	Name     string
	Path     string
}

// RoleAssignment is one (group, role) pair for a user, as reported by
// the people picker.
type RoleAssignment struct {
	GroupID int
	RoleID  string
}

// Per-user setting names used by the synchroniser.
const (
	SettingAdditionalEmail = "additional_email"
	SettingExternalID      = "external_id"
	SettingAddedManually   = "added_manually"
	SettingDisabledUser    = "disabled_user"
)

// intString tolerates the API's habit of returning numeric ids as
// either strings or numbers.
type intString int

func (v *intString) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = json.Number(s)
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == "" || raw == "null" {
		*v = 0
		return nil
	}

	n, err := raw.Int64()
	if err != nil {
		return err
	}
	*v = intString(n)
	return nil
}

type rawUser struct {
	UserID      intString `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	GroupID     intString `json:"group_id"`
}

type rawGroup struct {
	GroupID  intString `json:"group_id"`
	Name     string    `json:"name"`
	ParentID intString `json:"parent_id"`
}
