package prepare

import (
	"github.com/timecamphq/peoplesync/internal/config"
	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/models"
)

// resolveRole applies the role precedence: forced admin, forced
// supervisor, the is_supervisor flag (when enabled), the source role
// hint, then plain user.
func resolveRole(cfg config.TimeCamp, p *models.Person) models.Role {
	if p.ForceGlobalAdminRole {
		return models.RoleAdministrator
	}
	if p.ForceSupervisorRole {
		return models.RoleSupervisor
	}
	if cfg.UseIsSupervisorRole && p.IsSupervisor {
		return models.RoleSupervisor
	}
	if p.RoleID != "" {
		role, known := models.RoleFromID(p.RoleID)
		if !known {
			logging.S.Warnf("unknown role_id %q for %s, defaulting to user", p.RoleID, p.ExternalID)
		}
		return role
	}
	return models.RoleUser
}
