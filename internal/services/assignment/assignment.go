// Package assignment реализует резолюцию текущей программы клиента.
//
// У пары (клиент, вид программы) исторически может оказаться несколько строк
// с is_active=true — это аномалия авторинга, а не повод падать. Актуальной
// считается самая свежая по created_at, остальные молча игнорируются
// (first-wins, без слияния).
package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// ProgramRepository описывает работу со строками программ в хранилище.
type ProgramRepository interface {
	// ListActiveByClient возвращает активные строки клиента по виду,
	// отсортированные по created_at DESC, id DESC.
	ListActiveByClient(ctx context.Context, clientUID, kind string) ([]*models.Program, error)
	// ListActiveByClients то же для набора клиентов одним запросом,
	// с той же сортировкой внутри всего результата.
	ListActiveByClients(ctx context.Context, clientUIDs []string, kind string) ([]*models.Program, error)
	// CreateProgram вставляет новую строку программы и возвращает её ID.
	CreateProgram(ctx context.Context, program models.Program) (int, error)
	// DeactivatePrograms гасит активные строки клиента по виду,
	// возвращает число затронутых строк.
	DeactivatePrograms(ctx context.Context, clientUID, kind string) (int, error)
}

// Resolver отвечает за выбор текущей программы и авторинг новых.
type Resolver struct {
	repo ProgramRepository
	log  *slog.Logger
}

// NewResolver создает новый Resolver.
func NewResolver(repo ProgramRepository, log *slog.Logger) *Resolver {
	return &Resolver{repo: repo, log: log}
}

// ResolveCurrent возвращает текущую программу клиента заданного вида
// или nil, если активных строк нет.
func (r *Resolver) ResolveCurrent(ctx context.Context, clientUID, kind string) (*models.ProgramSummary, error) {
	const op = "assignment.ResolveCurrent"

	rows, err := r.repo.ListActiveByClient(ctx, clientUID, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		r.log.Warn("multiple active program rows, using most recent",
			slog.String("client_uid", clientUID),
			slog.String("kind", kind),
			slog.Int("rows", len(rows)))
	}
	return r.summarize(rows[0]), nil
}

// ResolveCurrentBatch резолвит текущие программы для набора клиентов за один
// проход по батч-выборке: строки приходят уже отсортированными по убыванию
// created_at, в результат попадает только первое вхождение каждого клиента.
// Для клиентов без активных строк в карте лежит nil.
func (r *Resolver) ResolveCurrentBatch(ctx context.Context, clientUIDs []string, kind string) (map[string]*models.ProgramSummary, error) {
	const op = "assignment.ResolveCurrentBatch"

	result := make(map[string]*models.ProgramSummary, len(clientUIDs))
	for _, uid := range clientUIDs {
		result[uid] = nil
	}
	if len(clientUIDs) == 0 {
		return result, nil
	}

	rows, err := r.repo.ListActiveByClients(ctx, clientUIDs, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, row := range rows {
		if summary, seen := result[row.ClientUID]; seen && summary != nil {
			continue
		}
		result[row.ClientUID] = r.summarize(row)
	}
	return result, nil
}

// Assign создает новую программу клиента, предварительно погасив прежние
// активные строки того же вида (supersede, без удаления истории).
func (r *Resolver) Assign(ctx context.Context, program models.Program) (int, error) {
	const op = "assignment.Assign"

	deactivated, err := r.repo.DeactivatePrograms(ctx, program.ClientUID, program.Kind)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if deactivated > 0 {
		r.log.Info("superseded previous program rows",
			slog.String("client_uid", program.ClientUID),
			slog.String("kind", program.Kind),
			slog.Int("count", deactivated))
	}

	program.IsActive = true
	program.CreatedAt = time.Time{} // created_at ставит база
	id, err := r.repo.CreateProgram(ctx, program)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (r *Resolver) summarize(row *models.Program) *models.ProgramSummary {
	summary := &models.ProgramSummary{
		ProgramID:  row.ID,
		Kind:       row.Kind,
		Title:      row.Title,
		TemplateID: ExtractTemplateID(row.Payload),
		CreatedAt:  row.CreatedAt,
	}
	if row.Kind == models.ProgramKindSupplement {
		entries, dropped := ParseSupplementEntries(row.Payload)
		summary.Entries = entries
		if dropped > 0 {
			r.log.Warn("dropped malformed supplement entries",
				slog.Int("program_id", row.ID),
				slog.Int("dropped", dropped))
		}
	}
	return summary
}
