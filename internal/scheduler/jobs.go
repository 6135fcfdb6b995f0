package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"equipment-portal/internal/services"
	"equipment-portal/pkg/apiclient"
	"equipment-portal/pkg/types"
	"equipment-portal/pkg/utils"
	"equipment-portal/pkg/websocket"
)

// AlertHub - часть websocket-хаба, нужная для адресной рассылки алертов.
type AlertHub interface {
	ClientCount() int
	SendToRoles(messageType string, payload interface{}, roles ...string) error
	SendToBranch(branchID, messageType string, payload interface{}, roles ...string) error
	BranchesOf(roles ...string) []string
}

// роли, которые видят алерты только своего филиала
var branchScopedRoles = []string{utils.RoleManager, utils.RoleReceptionist}

// AlertWatcherJob пересчитывает ленту алертов и рассылает её браузерам:
// администраторам целиком, менеджерам и ресепшену - только их филиал.
// Backend требует токен, поэтому без служебного токена задача не создаётся.
func AlertWatcherJob(alerts services.AlertServiceInterface, hub AlertHub, serviceToken string, interval time.Duration, logger *zap.Logger) Job {
	if serviceToken == "" {
		logger.Info("SERVICE_TOKEN не задан, фоновая рассылка алертов отключена")
		return Job{Name: "alert-watcher"}
	}
	return Job{
		Name:     "alert-watcher",
		Interval: interval,
		Run: func(ctx context.Context) error {
			if hub.ClientCount() == 0 {
				return nil
			}
			feed, err := alerts.GetAlerts(apiclient.WithToken(ctx, serviceToken), services.AlertFilter{})
			if err != nil {
				return err
			}
			if err := hub.SendToRoles(websocket.TypeAlerts, feed, utils.RoleAdmin); err != nil {
				return err
			}
			for _, branchID := range hub.BranchesOf(branchScopedRoles...) {
				scoped := services.FilterFeed(feed, services.AlertFilter{BranchID: types.ID(branchID)})
				if err := hub.SendToBranch(branchID, websocket.TypeAlerts, scoped, branchScopedRoles...); err != nil {
					logger.Warn("не удалось разослать алерты филиалу", zap.String("branchID", branchID), zap.Error(err))
				}
			}
			return nil
		},
	}
}

// ActivityPruneJob раз в сутки чистит журнал действий.
func ActivityPruneJob(activity services.ActivityServiceInterface, retention time.Duration) Job {
	interval := 24 * time.Hour
	if retention <= 0 {
		interval = 0
	}
	return Job{
		Name:     "activity-prune",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := activity.Prune(ctx, retention)
			return err
		},
	}
}
