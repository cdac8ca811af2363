package models

import "time"

// StatusItemType tags the record kind behind a StatusItem.
type StatusItemType string

const (
	StatusItemOpportunity StatusItemType = "opportunity"
	StatusItemIndication  StatusItemType = "indication"
	StatusItemBulk        StatusItemType = "bulk"
)

// Feed filter markers sent by the status screen.
const (
	FilterOnlyOpportunities = "APENAS OPORTUNIDADES"
	FilterOnlyIndications   = "APENAS INDICAÇÕES"
	FilterOnlyBulk          = "APENAS LOTES EM MASSA"
	FilterSeparator         = "---"
)

// Placeholders used when a record field cannot be read.
const (
	FallbackName    = "Nome não disponível"
	FallbackStatus  = "Status não disponível"
	FallbackProduct = "Produto não disponível"
	FallbackDate    = "Data não disponível"
)

// StatusItem is the unified feed entry built from an indication, an
// opportunity or a packaged indication.
type StatusItem struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Status            string         `json:"status"`
	Product           string         `json:"product"`
	Date              string         `json:"date"`
	IndicatorID       string         `json:"indicatorId"`
	CreatedAt         *time.Time     `json:"createdAt,omitempty"`
	UpdatedAtOriginal *time.Time     `json:"updatedAtOriginal,omitempty"`
	Type              StatusItemType `json:"type"`
}

// RecencyMillis is the sort key of the feed: the update instant when known,
// else the creation instant, else zero.
func (s StatusItem) RecencyMillis() int64 {
	if s.UpdatedAtOriginal != nil {
		return s.UpdatedAtOriginal.UnixMilli()
	}
	if s.CreatedAt != nil {
		return s.CreatedAt.UnixMilli()
	}
	return 0
}

// StatusFeed is the payload returned to the status screen.
type StatusFeed struct {
	Items []StatusItem   `json:"items"`
	Stats map[string]int `json:"stats"`
	Total int            `json:"total"`
}
