package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/coach-hub/internal/models"
)

const programColumns = `id, client_uid, trainer_uid, kind, title, is_active, payload, created_at`

// CreateProgram вставляет новую строку программы и возвращает её ID.
func (s *Repo) CreateProgram(ctx context.Context, program models.Program) (int, error) {
	const op = "storage.CreateProgram"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO programs (client_uid, trainer_uid, kind, title, is_active, payload)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	payload := []byte(program.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	err := s.DB.QueryRowContext(ctx, query,
		program.ClientUID, program.TrainerUID, program.Kind, program.Title,
		program.IsActive, payload).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// DeactivatePrograms гасит активные строки клиента по виду программы.
// Возвращает количество изменённых строк.
func (s *Repo) DeactivatePrograms(ctx context.Context, clientUID, kind string) (int, error) {
	const op = "storage.DeactivatePrograms"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE programs
			  SET is_active = false
			  WHERE client_uid = $1 AND kind = $2 AND is_active = true`
	result, err := s.DB.ExecContext(ctx, query, clientUID, kind)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListActiveByClient возвращает активные строки программы клиента по виду,
// свежие первыми.
func (s *Repo) ListActiveByClient(ctx context.Context, clientUID, kind string) ([]*models.Program, error) {
	const op = "storage.ListActiveByClient"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + programColumns + `
			  FROM programs
			  WHERE client_uid = $1 AND kind = $2 AND is_active = true
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, clientUID, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	return collectPrograms(op, rows)
}

// ListActiveByClients возвращает активные строки по виду для набора клиентов
// одним запросом; сортировка по убыванию created_at общая на весь результат,
// чтобы батч-резолюция могла брать первое вхождение каждого клиента.
func (s *Repo) ListActiveByClients(ctx context.Context, clientUIDs []string, kind string) ([]*models.Program, error) {
	const op = "storage.ListActiveByClients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + programColumns + `
			  FROM programs
			  WHERE client_uid = ANY($1) AND kind = $2 AND is_active = true
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, clientUIDs, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	return collectPrograms(op, rows)
}

// CountActiveProgramsByTrainer возвращает количество активных программ
// тренера в разрезе вида.
func (s *Repo) CountActiveProgramsByTrainer(ctx context.Context, trainerUID string) (map[string]int, error) {
	const op = "storage.CountActiveProgramsByTrainer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT kind, COUNT(*)
			  FROM programs
			  WHERE trainer_uid = $1 AND is_active = true
			  GROUP BY kind`
	rows, err := s.DB.QueryContext(ctx, query, trainerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		counts[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return counts, nil
}

func collectPrograms(op string, rows *sql.Rows) ([]*models.Program, error) {
	var result []*models.Program
	for rows.Next() {
		p := &models.Program{}
		var payload []byte
		if err := rows.Scan(&p.ID, &p.ClientUID, &p.TrainerUID, &p.Kind, &p.Title,
			&p.IsActive, &payload, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Payload = payload
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
