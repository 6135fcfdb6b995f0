package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	db "equipment-portal/internal/infrastructure/bd"
	"equipment-portal/pkg/types"
)

const activityTable = "activity_log"

var activityMap = map[string]string{
	"id":         "a.id",
	"actorId":    "a.actor_id",
	"actorRole":  "a.actor_role",
	"action":     "a.action",
	"entityType": "a.entity_type",
	"entityId":   "a.entity_id",
	"createdAt":  "a.created_at",
}

var activityColumns = []string{
	"a.id", "a.actor_id", "a.actor_role", "a.action", "a.entity_type", "a.entity_id",
	"a.payload", "a.archive_key", "a.created_at",
}

type ActivityRepositoryInterface interface {
	Insert(ctx context.Context, entry entities.ActivityEntry) (int64, error)
	List(ctx context.Context, filter types.Filter) ([]entities.ActivityEntry, uint64, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type ActivityRepository struct {
	storage querier
	logger  *zap.Logger
}

func NewActivityRepository(storage querier, logger *zap.Logger) ActivityRepositoryInterface {
	return &ActivityRepository{storage: storage, logger: logger}
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// applyActivityRange: filter[from] и filter[to] - границы created_at (даты включительно).
func applyActivityRange(b sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if from, ok := parseDay(filter.Filter["from"]); ok {
		b = b.Where(sq.GtOrEq{"a.created_at": from})
	}
	if to, ok := parseDay(filter.Filter["to"]); ok {
		b = b.Where(sq.Lt{"a.created_at": to.AddDate(0, 0, 1)})
	}
	if filter.Search != "" {
		pat := "%" + filter.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"a.action": pat},
			sq.ILike{"a.entity_type": pat},
			sq.Expr("a.payload::text ILIKE ?", pat),
		})
	}
	return b
}

func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func buildActivityCount(filter types.Filter) sq.SelectBuilder {
	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	b := psql().Select("COUNT(a.id)").From(activityTable + " AS a")
	b = applyActivityRange(b, filter)
	return db.ApplyListParams(b, countFilter, activityMap)
}

func buildActivitySelect(filter types.Filter) sq.SelectBuilder {
	b := psql().Select(activityColumns...).From(activityTable + " AS a")
	b = applyActivityRange(b, filter)
	if len(filter.Sort) == 0 {
		b = b.OrderBy("a.created_at DESC", "a.id DESC")
	}
	return db.ApplyListParams(b, filter, activityMap)
}

func (r *ActivityRepository) Insert(ctx context.Context, entry entities.ActivityEntry) (int64, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	var payload interface{}
	if len(entry.Payload) > 0 {
		payload = []byte(entry.Payload)
	}
	query, args, err := psql().Insert(activityTable).
		Columns("actor_id", "actor_role", "action", "entity_type", "entity_id", "payload", "archive_key", "created_at").
		Values(entry.ActorID, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, payload, entry.ArchiveKey, entry.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса журнала: %w", err)
	}

	var id int64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка записи в журнал действий: %w", err)
	}
	return id, nil
}

func (r *ActivityRepository) List(ctx context.Context, filter types.Filter) ([]entities.ActivityEntry, uint64, error) {
	sqlCount, argsCount, err := buildActivityCount(filter).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта записей журнала: %w", err)
	}
	if total == 0 {
		return []entities.ActivityEntry{}, 0, nil
	}

	query, args, err := buildActivitySelect(filter).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.ActivityEntry, 0, filter.Limit)
	for rows.Next() {
		var e entities.ActivityEntry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorRole, &e.Action, &e.EntityType, &e.EntityID,
			&payload, &e.ArchiveKey, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		e.Payload = payload
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// DeleteOlderThan чистит журнал, возвращает число удалённых строк.
func (r *ActivityRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := psql().Delete(activityTable).Where(sq.Lt{"created_at": before}).ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки журнала: %w", err)
	}
	r.logger.Info("журнал действий очищен", zap.Int64("deleted", tag.RowsAffected()), zap.Time("before", before))
	return tag.RowsAffected(), nil
}
