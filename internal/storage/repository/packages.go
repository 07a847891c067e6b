package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// ListActivePackages возвращает пакеты, доступные к покупке.
func (s *Repo) ListActivePackages(ctx context.Context) ([]*models.Package, error) {
	const op = "storage.ListActivePackages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, slug, name, price, currency, duration_days, features, is_active
			  FROM packages
			  WHERE is_active = true
			  ORDER BY price`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPackageByID возвращает пакет по его ID.
func (s *Repo) GetPackageByID(ctx context.Context, id int) (*models.Package, error) {
	const op = "storage.GetPackageByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, slug, name, price, currency, duration_days, features, is_active
			  FROM packages
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	pkg, err := scanPackage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrPackageMissing)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pkg, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPackage читает строку пакета; список фич хранится как jsonb.
func scanPackage(row rowScanner) (*models.Package, error) {
	pkg := &models.Package{}
	var features []byte
	if err := row.Scan(&pkg.ID, &pkg.Slug, &pkg.Name, &pkg.Price, &pkg.Currency,
		&pkg.DurationDays, &features, &pkg.IsActive); err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &pkg.Features); err != nil {
			return nil, fmt.Errorf("malformed features payload: %w", err)
		}
	}
	return pkg, nil
}
