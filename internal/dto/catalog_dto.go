package dto

import "github.com/noah-isme/codecraft-workspace/internal/models"

// ProblemCatalogFilter defines query parameters for the problem list.
type ProblemCatalogFilter struct {
	Difficulty string `query:"difficulty" validate:"omitempty,oneof=all easy medium hard"`
	Tag        string `query:"tag" validate:"omitempty,oneof=all array linkedList graph dp"`
	Status     string `query:"status" validate:"omitempty,oneof=all solved"`
}

// ProblemCatalogItem is one row of the problem list.
type ProblemCatalogItem struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Difficulty      string `json:"difficulty"`
	DifficultyLabel string `json:"difficulty_label"`
	BadgeClass      string `json:"badge_class"`
	Tag             string `json:"tag"`
	TagLabel        string `json:"tag_label"`
	Solved          bool   `json:"solved"`
}

// ProblemCatalogResponse wraps the filtered problem list.
type ProblemCatalogResponse struct {
	Items       []ProblemCatalogItem `json:"items"`
	Total       int                  `json:"total"`
	SolvedCount int                  `json:"solved_count"`
	CacheHit    bool                 `json:"cache_hit"`
}

// NewProblemCatalogItem builds a list row from a summary.
func NewProblemCatalogItem(summary models.ProblemSummary, solved bool) ProblemCatalogItem {
	return ProblemCatalogItem{
		ID:              summary.ID,
		Title:           summary.Title,
		Difficulty:      string(summary.Difficulty),
		DifficultyLabel: summary.Difficulty.Label(),
		BadgeClass:      summary.Difficulty.BadgeClass(),
		Tag:             string(summary.Tag),
		TagLabel:        summary.Tag.Label(),
		Solved:          solved,
	}
}
