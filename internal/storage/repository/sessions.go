package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// ListUpcomingSessions возвращает ближайшие запланированные сессии тренера.
// Равные времена упорядочиваются по id для детерминированной пагинации.
func (s *Repo) ListUpcomingSessions(ctx context.Context, trainerUID string, after time.Time, limit int) ([]*models.Session, error) {
	const op = "storage.ListUpcomingSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, trainer_uid, client_uid, title, scheduled_at, status
			  FROM sessions
			  WHERE trainer_uid = $1 AND status = 'scheduled' AND scheduled_at >= $2
			  ORDER BY scheduled_at, id
			  LIMIT $3`
	rows, err := s.DB.QueryContext(ctx, query, trainerUID, after, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Session
	for rows.Next() {
		sess := &models.Session{}
		if err := rows.Scan(&sess.ID, &sess.TrainerUID, &sess.ClientUID,
			&sess.Title, &sess.ScheduledAt, &sess.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
