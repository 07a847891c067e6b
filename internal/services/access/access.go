// Package access реализует гейт доступа к контенту, закрытому пакетом.
//
// Решение транспортно-нейтральное: Authorize возвращает Decision, а как
// сообщить отказ (403 для API или редирект на страницу покупки для
// серверного рендера) решает тонкий адаптер на месте вызова.
package access

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/metrics"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// Capability именованное защищаемое действие.
type Capability string

// Все способности сегодня отображаются 1:1 на "есть любой активный пакет";
// список фич пакета структурно доступен для будущей пофичевой дифференциации.
const (
	CapabilityViewWorkout   Capability = "view_workout"
	CapabilityViewNutrition Capability = "view_nutrition"
	CapabilitySubmitPTForm  Capability = "submit_pt_form"
)

// upsellPath страница покупки пакета, на которую уводит отказ.
const upsellPath = "/pricing"

// EntitlementResolver описывает резолвер активного пакета.
type EntitlementResolver interface {
	Resolve(ctx context.Context, userUID string) (*models.Entitlement, error)
}

// Decision результат авторизации.
type Decision struct {
	Allowed      bool
	RedirectHint string              // куда уводить при отказе, с source=<способность>
	Entitlement  *models.Entitlement // резолюция, на которой принято решение
}

// Gate принимает решения о доступе по активному пакету.
type Gate struct {
	resolver EntitlementResolver
	log      *slog.Logger
}

// NewGate создает новый Gate.
func NewGate(resolver EntitlementResolver, log *slog.Logger) *Gate {
	return &Gate{resolver: resolver, log: log}
}

// Authorize разрешает или запрещает способность для пользователя.
//
// Нарушение целостности данных (покупка без пакета) не отличимо снаружи от
// отсутствия пакета: доступ закрывается, инцидент остаётся в логе.
// Ошибка самого хранилища пробрасывается — без данных решение невозможно.
func (g *Gate) Authorize(ctx context.Context, userUID string, capability Capability) (Decision, error) {
	ent, err := g.resolver.Resolve(ctx, userUID)
	if err != nil {
		if errors.Is(err, models.ErrPackageMissing) {
			g.log.Error("access denied on data integrity failure",
				slog.String("user_uid", userUID),
				slog.String("capability", string(capability)),
				sl.Err(err))
			return g.deny(capability), nil
		}
		return Decision{}, err
	}
	if ent == nil {
		return g.deny(capability), nil
	}
	metrics.GateDecisions.WithLabelValues(string(capability), "allow").Inc()
	return Decision{Allowed: true, Entitlement: ent}, nil
}

func (g *Gate) deny(capability Capability) Decision {
	metrics.GateDecisions.WithLabelValues(string(capability), "deny").Inc()
	return Decision{
		Allowed:      false,
		RedirectHint: RedirectHint(capability),
	}
}

// RedirectHint строит адрес страницы покупки с атрибуцией исходной способности.
func RedirectHint(capability Capability) string {
	query := url.Values{}
	query.Set("source", string(capability))
	return upsellPath + "?" + query.Encode()
}
