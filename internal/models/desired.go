package models

// Role is the TimeCamp role projected for a user.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleSupervisor    Role = "supervisor"
	RoleUser          Role = "user"
	RoleGuest         Role = "guest"
)

// RoleFromID maps a TimeCamp role_id to a Role. The boolean reports
// whether the id was recognised.
func RoleFromID(id string) (Role, bool) {
	switch id {
	case "1":
		return RoleAdministrator, true
	case "2":
		return RoleSupervisor, true
	case "3":
		return RoleUser, true
	case "5":
		return RoleGuest, true
	}
	return RoleUser, false
}

// ID returns the TimeCamp role_id wire form.
func (r Role) ID() string {
	switch r {
	case RoleAdministrator:
		return "1"
	case RoleSupervisor:
		return "2"
	case RoleGuest:
		return "5"
	}
	return "3"
}

// DesiredUser is one record of the stage-2 artifact
// (timecamp_users.json): a Person projected onto TimeCamp's schema
// with all group/name/role policies applied.
type DesiredUser struct {
	ExternalID string `json:"timecamp_external_id"`
	Name       string `json:"timecamp_user_name"`
	Email      string `json:"timecamp_email"`
	RealEmail  string `json:"timecamp_real_email,omitempty"`

	// GroupPath is the slash-separated breadcrumb under the configured
	// root group. Empty means the root group itself.
	GroupPath string `json:"timecamp_groups_breadcrumb"`

	Status string `json:"timecamp_status"`
	Role   Role   `json:"timecamp_role"`
}

// Active reports whether the desired record is active in the source.
func (u DesiredUser) Active() bool {
	return u.Status == StatusActive
}
