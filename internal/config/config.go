// Package config resolves the process configuration from environment
// variables once at startup. The resulting value is immutable and is
// passed down explicitly; nothing else in the program consults the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TimeCamp holds every TIMECAMP_* option.
type TimeCamp struct {
	APIKey      string `validate:"required"`
	Domain      string
	RootGroupID int `validate:"required"`

	IgnoredUserIDs []int

	ShowExternalID        bool
	UseSupervisorGroups   bool
	UseDepartmentGroups   bool
	UseJobTitleNameUsers  bool
	UseJobTitleNameGroups bool
	UseIsSupervisorRole   bool

	// SkipDepartments is a comma-separated list of alternative
	// segment-aligned prefixes stripped from department paths.
	SkipDepartments    string
	ReplaceEmailDomain string

	DisableNewUsers            bool
	DisableUserDeactivation    bool
	DisableExternalIDSync      bool
	DisableAdditionalEmailSync bool
	DisableManualUserUpdates   bool
	DisableGroupUpdates        bool
	DisableRoleUpdates         bool
	DisableGroupsCreation      bool

	// DisabledUsersGroupID is where deactivated users are moved;
	// zero means no move.
	DisabledUsersGroupID int
}

// S3 holds the S3_* options for the blob store.
type S3 struct {
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	PathPrefix      string
	ForcePathStyle  bool
}

// Storage selects and configures the blob backend.
type Storage struct {
	UseS3 bool
	S3    S3
}

type Config struct {
	TimeCamp TimeCamp
	Storage  Storage

	// SentryDSN enables crash reporting when non-empty.
	SentryDSN string
}

// deprecatedVars are pending renames from the upstream integration.
// Exactly one spelling is canonical here; the others are refused so a
// half-migrated deployment fails loudly instead of silently ignoring
// an option.
var deprecatedVars = map[string]string{
	"TIMECAMP_SKIP_NEW_USERS_CREATION": "TIMECAMP_DISABLE_NEW_USERS",
	"TIMECAMP_SKIP_USER_DEACTIVATION":  "TIMECAMP_DISABLE_USER_DEACTIVATION",
	"TIMECAMP_SKIP_GROUPS_CREATION":    "TIMECAMP_DISABLE_GROUPS_CREATION",
	"TIMECAMP_SKIP_EXTERNAL_ID_SYNC":   "TIMECAMP_DISABLE_EXTERNAL_ID_SYNC",
}

// Load resolves the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFromEnv(envMap(os.Environ()))
}

// LoadFromEnv resolves the configuration from the given variable set.
func LoadFromEnv(env map[string]string) (*Config, error) {
	for name, canonical := range deprecatedVars {
		if _, ok := env[name]; ok {
			return nil, fmt.Errorf("%s is not supported, set %s instead", name, canonical)
		}
	}

	cfg := &Config{
		TimeCamp: TimeCamp{
			Domain:              "app.timecamp.com",
			ShowExternalID:      true,
			UseDepartmentGroups: true,
		},
		Storage: Storage{
			S3: S3{Region: "us-east-1"},
		},
	}

	if err := decodeEnv(&cfg.TimeCamp, "TIMECAMP", env); err != nil {
		return nil, err
	}
	if err := decodeEnv(&cfg.Storage.S3, "S3", env); err != nil {
		return nil, err
	}
	if v, ok := env["USE_S3_STORAGE"]; ok {
		cfg.Storage.UseS3 = parseBool(v)
	}
	if v, ok := env["SENTRY_DSN"]; ok {
		cfg.SentryDSN = v
	}

	if err := validator.New().Struct(cfg.TimeCamp); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Storage.UseS3 {
		s3 := cfg.Storage.S3
		if s3.AccessKeyID == "" || s3.SecretAccessKey == "" || s3.BucketName == "" {
			return nil, fmt.Errorf("S3 storage is enabled but S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY and S3_BUCKET_NAME must all be set")
		}
	}

	return cfg, nil
}

// IsIgnoredUser reports whether a live user id must never be mutated.
func (c TimeCamp) IsIgnoredUser(id int) bool {
	for _, ignored := range c.IgnoredUserIDs {
		if ignored == id {
			return true
		}
	}
	return false
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true":
		return true
	}
	return false
}

func envMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, raw := range environ {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}
