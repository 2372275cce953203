package replace_patterns

import "github.com/m04kA/SMC-AvailabilityService/internal/service/patterns/models"

// ReplacePatternsRequest HTTP request model
// Пустой список удаляет все шаблоны консультанта
type ReplacePatternsRequest struct {
	Patterns []models.PatternInput `json:"patterns"`
}
