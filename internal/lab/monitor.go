package lab

import (
	"context"

	"go.uber.org/zap"

	"flakelab/internal/snowflake"
)

// ShareUsage summarizes what a share exposes and to whom
type ShareUsage struct {
	Share              string
	ObjectsShared      int
	AccountsWithAccess int
}

// MonitorShare counts the share's objects and consumer accounts. Either
// count stays zero when its query fails.
func MonitorShare(ctx context.Context, exec snowflake.Executor, share string, log *zap.Logger) ShareUsage {
	if log == nil {
		log = zap.NewNop()
	}
	usage := ShareUsage{Share: share}

	if n, err := exec.QueryCount(ctx, "SHOW GRANTS TO SHARE "+share); err != nil {
		log.Warn("Could not retrieve object count", zap.Error(err))
	} else {
		usage.ObjectsShared = n
	}

	// Demo accounts normally have no consumers
	if n, err := exec.QueryCount(ctx, "SHOW GRANTS OF SHARE "+share); err != nil {
		log.Info("No consumer accounts configured (expected in demo)")
	} else {
		usage.AccountsWithAccess = n
	}

	log.Info("📊 Share Usage Summary:",
		zap.String("share", usage.Share),
		zap.Int("objects_shared", usage.ObjectsShared),
		zap.Int("accounts_with_access", usage.AccountsWithAccess))
	return usage
}
