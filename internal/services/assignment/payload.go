package assignment

import (
	"encoding/json"

	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// rawPayload свободная форма содержимого программы. Разбор терпимый:
// битый JSON или поля не тех типов дают пустой результат, а не ошибку.
type rawPayload struct {
	TemplateID any   `json:"template_id"`
	Entries    []any `json:"entries"`
}

// ExtractTemplateID достаёт ссылку на шаблон из содержимого программы.
// Возвращает пустую строку при отсутствии payload, битом JSON или поле
// не строкового типа.
func ExtractTemplateID(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}
	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ""
	}
	templateID, ok := raw.TemplateID.(string)
	if !ok {
		return ""
	}
	return templateID
}

// ParseSupplementEntries разбирает позиции программы добавок.
// Каждая позиция валидируется независимо: без template_id или name позиция
// отбрасывается, не скрывая остальные валидные. Возвращает валидные позиции
// и число отброшенных.
func ParseSupplementEntries(payload json.RawMessage) ([]models.SupplementEntry, int) {
	if len(payload) == 0 {
		return nil, 0
	}
	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, 0
	}

	var valid []models.SupplementEntry
	dropped := 0
	for _, item := range raw.Entries {
		entry, ok := parseEntry(item)
		if !ok {
			dropped++
			continue
		}
		valid = append(valid, entry)
	}
	return valid, dropped
}

func parseEntry(item any) (models.SupplementEntry, bool) {
	fields, ok := item.(map[string]any)
	if !ok {
		return models.SupplementEntry{}, false
	}
	templateID, _ := fields["template_id"].(string)
	name, _ := fields["name"].(string)
	if templateID == "" || name == "" {
		return models.SupplementEntry{}, false
	}
	dosage, _ := fields["dosage"].(string)
	timing, _ := fields["timing"].(string)
	return models.SupplementEntry{
		TemplateID: templateID,
		Name:       name,
		Dosage:     dosage,
		Timing:     timing,
	}, true
}
