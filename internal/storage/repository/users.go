// Package repository содержит SQL-репозитории поверх единого Storage.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/coach-hub/internal/models"
	"github.com/magabrotheeeer/coach-hub/internal/storage"
)

// Repo объединяет репозитории всех таблиц поверх одного соединения.
type Repo struct {
	*storage.Storage
}

// New создает Repo поверх готового Storage.
func New(s *storage.Storage) *Repo {
	return &Repo{Storage: s}
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Repo) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role, is_active)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.IsActive).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Repo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, trainer_uid, is_active, created_at, updated_at
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username)

	var trainerUID sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &trainerUID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if trainerUID.Valid {
		u.TrainerUID = &trainerUID.String
	}
	return u, nil
}

// ListClientsByTrainer возвращает всех клиентов тренера одним запросом.
func (s *Repo) ListClientsByTrainer(ctx context.Context, trainerUID string) ([]*models.User, error) {
	const op = "storage.ListClientsByTrainer"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, trainer_uid, is_active, created_at, updated_at
			  FROM users
			  WHERE role = 'client' AND trainer_uid = $1
			  ORDER BY created_at DESC, uid`
	rows, err := s.DB.QueryContext(ctx, query, trainerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		var tUID sql.NullString
		if err := rows.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
			&u.Role, &tUID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if tUID.Valid {
			u.TrainerUID = &tUID.String
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
