package repository

import (
	"context"
	"fmt"
)

// CountTicketsByTrainer возвращает количество открытых и срочных тикетов
// тренера одним запросом.
func (s *Repo) CountTicketsByTrainer(ctx context.Context, trainerUID string) (int, int, error) {
	const op = "storage.CountTicketsByTrainer"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      COUNT(*) FILTER (WHERE status IN ('open', 'in_progress')),
			      COUNT(*) FILTER (WHERE status IN ('open', 'in_progress') AND priority = 'urgent')
			  FROM tickets
			  WHERE trainer_uid = $1`
	var open, urgent int
	if err := s.DB.QueryRowContext(ctx, query, trainerUID).Scan(&open, &urgent); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return open, urgent, nil
}
