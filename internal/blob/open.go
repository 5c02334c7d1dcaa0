package blob

import (
	"github.com/timecamphq/peoplesync/internal/config"
	"github.com/timecamphq/peoplesync/internal/logging"
)

// Open selects the backend from the storage configuration. Local
// artifacts live under dir.
func Open(cfg config.Storage, dir string) (Store, error) {
	if cfg.UseS3 {
		logging.S.Infof("using S3 storage, bucket %s", cfg.S3.BucketName)
		return NewS3Store(cfg.S3)
	}

	logging.S.Debugf("using local storage under %s", dir)

	return NewLocalStore(dir), nil
}
