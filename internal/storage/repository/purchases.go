package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/coach-hub/internal/models"
)

const purchaseColumns = `id, user_uid, package_id, status, payment_status, amount, currency,
			      starts_at, expires_at, purchased_at, snapshot`

// CreatePurchase вставляет запись журнала покупок и возвращает её ID.
func (s *Repo) CreatePurchase(ctx context.Context, entry models.Purchase) (int, error) {
	const op = "storage.CreatePurchase"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	snapshot, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO purchases (user_uid, package_id, status, payment_status, amount,
			      currency, starts_at, expires_at, purchased_at, snapshot)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	var newID int
	err = s.DB.QueryRowContext(ctx, query,
		entry.UserUID, entry.PackageID, entry.Status, entry.PaymentStatus, entry.Amount,
		entry.Currency, entry.StartsAt, entry.ExpiresAt, entry.PurchasedAt, snapshot).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPurchaseByID возвращает запись журнала по её ID.
func (s *Repo) GetPurchaseByID(ctx context.Context, id int) (*models.Purchase, error) {
	const op = "storage.GetPurchaseByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + purchaseColumns + `
			  FROM purchases WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	entry, err := scanPurchase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: purchase %d not found", op, id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}

// ListValidByUser возвращает действующие покупки пользователя: статус
// pending/active и expires_at строго позже now. Сортировка по дальности
// окончания, при равенстве — по более поздней покупке; резолвер берёт
// первую строку.
func (s *Repo) ListValidByUser(ctx context.Context, userUID string, now time.Time) ([]*models.Purchase, error) {
	const op = "storage.ListValidByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + purchaseColumns + `
			  FROM purchases
			  WHERE user_uid = $1
			    AND status IN ('pending', 'active')
			    AND expires_at > $2
			  ORDER BY expires_at DESC, purchased_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	return collectPurchases(op, rows)
}

// ListPurchasesByClients возвращает покупки набора клиентов одним запросом.
func (s *Repo) ListPurchasesByClients(ctx context.Context, clientUIDs []string) ([]*models.Purchase, error) {
	const op = "storage.ListPurchasesByClients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + purchaseColumns + `
			  FROM purchases
			  WHERE user_uid = ANY($1)
			  ORDER BY purchased_at DESC, id`
	rows, err := s.DB.QueryContext(ctx, query, clientUIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	return collectPurchases(op, rows)
}

// MarkPurchasePaid переводит pending-запись в active/paid и ставит окно
// действия. Возвращает количество изменённых строк.
func (s *Repo) MarkPurchasePaid(ctx context.Context, id int, startsAt, expiresAt time.Time) (int, error) {
	const op = "storage.MarkPurchasePaid"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE purchases
			  SET status = 'active', payment_status = 'paid', starts_at = $1, expires_at = $2
			  WHERE id = $3 AND status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query, startsAt, expiresAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FindExpiringWithin возвращает активные оплаченные покупки, истекающие в
// интервале (now, now+days], вместе с почтой и именем владельца.
func (s *Repo) FindExpiringWithin(ctx context.Context, now time.Time, days int) ([]*models.ExpiringPurchaseInfo, error) {
	const op = "storage.FindExpiringWithin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.email, u.username, p.snapshot->>'name', p.expires_at
			  FROM purchases p
			  JOIN users u ON u.uid = p.user_uid
			  WHERE p.status = 'active'
			    AND p.payment_status = 'paid'
			    AND p.expires_at > $1
			    AND p.expires_at <= $2
			  ORDER BY p.expires_at`
	rows, err := s.DB.QueryContext(ctx, query, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.ExpiringPurchaseInfo
	for rows.Next() {
		info := &models.ExpiringPurchaseInfo{}
		var packageName sql.NullString
		if err := rows.Scan(&info.Email, &info.Username, &packageName, &info.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		info.PackageName = packageName.String
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func collectPurchases(op string, rows *sql.Rows) ([]*models.Purchase, error) {
	var result []*models.Purchase
	for rows.Next() {
		entry, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanPurchase(row rowScanner) (*models.Purchase, error) {
	entry := &models.Purchase{}
	var snapshot []byte
	if err := row.Scan(&entry.ID, &entry.UserUID, &entry.PackageID, &entry.Status,
		&entry.PaymentStatus, &entry.Amount, &entry.Currency,
		&entry.StartsAt, &entry.ExpiresAt, &entry.PurchasedAt, &snapshot); err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &entry.Snapshot); err != nil {
			return nil, fmt.Errorf("malformed purchase snapshot: %w", err)
		}
	}
	return entry, nil
}
