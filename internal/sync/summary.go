package sync

import "fmt"

// Summary counts the operations a run performed (or, in dry-run mode,
// would have performed).
type Summary struct {
	GroupsCreated    int
	UsersCreated     int
	UsersUpdated     int
	UsersActivated   int
	UsersDeactivated int
	UsersSkipped     int
	Errors           int
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"groups created: %d, users created: %d, updated: %d, activated: %d, deactivated: %d, skipped: %d, errors: %d",
		s.GroupsCreated, s.UsersCreated, s.UsersUpdated, s.UsersActivated, s.UsersDeactivated, s.UsersSkipped, s.Errors)
}
