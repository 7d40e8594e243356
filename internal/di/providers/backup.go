package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/inkwellapp/inkwell-server/internal/backup"
	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/logger"
)

// ProvideBackupService provides the store snapshot service. Snapshots
// live next to the database under the data path.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	snapshotDir := filepath.Join(cfg.Data.BasePath, "snapshots")
	return backup.NewService(storeHandle.Store, snapshotDir, log.Logger), nil
}
