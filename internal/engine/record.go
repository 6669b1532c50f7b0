package engine

import "github.com/starford/metron/internal/models"

// NewRecord builds the history record for a completed conversion. ID, owner
// and timestamp are assigned by the history store.
func NewRecord(res Result) models.HistoryRecord {
	return models.HistoryRecord{
		Category:  res.Request.Category,
		FromValue: res.Request.Value,
		FromUnit:  res.Request.From,
		ToValue:   res.Converted,
		ToUnit:    res.Request.To,
	}
}
