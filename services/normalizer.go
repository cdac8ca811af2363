package services

import (
	"fmt"
	"time"

	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
	"github.com/HSouheill/indique_backend/utils"
)

// NormalizeIndication converts an indication document into a feed item.
func NormalizeIndication(doc repositories.Document, ownerID string, now time.Time) models.StatusItem {
	return normalizeRecord(doc, ownerID, now, models.StatusItemIndication)
}

// NormalizeOpportunity converts an opportunity document into a feed item.
func NormalizeOpportunity(doc repositories.Document, ownerID string, now time.Time) models.StatusItem {
	return normalizeRecord(doc, ownerID, now, models.StatusItemOpportunity)
}

// NormalizePackagedIndication converts a bulk batch into a feed item. The
// name and product lines describe the batch size and its progress.
func NormalizePackagedIndication(doc repositories.Document, ownerID string, now time.Time) models.StatusItem {
	data := doc.Data
	item := models.StatusItem{
		ID:          doc.ID,
		IndicatorID: ownerID,
		Type:        models.StatusItemBulk,
	}

	item.Name = readField(models.FallbackName, func() (string, bool) {
		return fmt.Sprintf("Lote de %d indicações", batchTotal(data)), true
	})
	item.Status = readField(models.FallbackStatus, func() (string, bool) {
		stored, _ := utils.StringField(data, models.FieldStatus)
		progress, _ := utils.IntField(data, "progress")
		return models.BatchStatus(stored, progress), true
	})
	item.Product = readField(models.FallbackProduct, func() (string, bool) {
		processed, _ := utils.IntField(data, "processedCount")
		progress, _ := utils.IntField(data, "progress")
		return fmt.Sprintf("%d de %d processadas (%d%%)", processed, batchTotal(data), progress), true
	})
	applyTimestamps(&item, data, now)
	return item
}

func normalizeRecord(doc repositories.Document, ownerID string, now time.Time, kind models.StatusItemType) models.StatusItem {
	data := doc.Data
	item := models.StatusItem{
		ID:          doc.ID,
		IndicatorID: ownerID,
		Type:        kind,
	}

	item.Name = readField(models.FallbackName, func() (string, bool) {
		return utils.StringField(data, models.FieldName)
	})
	item.Status = readField(models.FallbackStatus, func() (string, bool) {
		return utils.StringField(data, models.FieldStatus)
	})
	item.Product = readField(models.FallbackProduct, func() (string, bool) {
		return utils.StringField(data, models.FieldProduct)
	})
	applyTimestamps(&item, data, now)
	return item
}

// applyTimestamps fills the raw instants and the rendered recency label.
// An update only counts when it is strictly after the creation.
func applyTimestamps(item *models.StatusItem, data map[string]interface{}, now time.Time) {
	created := readTime(data, models.FieldCreatedAt)
	updated := readTime(data, models.FieldUpdatedAt)
	item.CreatedAt = created
	item.UpdatedAtOriginal = updated

	item.Date = readField(models.FallbackDate, func() (string, bool) {
		switch {
		case updated != nil && (created == nil || updated.UnixMilli() > created.UnixMilli()):
			return "Atualizado " + utils.FormatDistance(*updated, now), true
		case created != nil:
			return "Enviado " + utils.FormatDistance(*created, now), true
		}
		return "", false
	})
}

func readTime(data map[string]interface{}, key string) (t *time.Time) {
	defer func() {
		if recover() != nil {
			t = nil
		}
	}()
	v, ok := utils.TimeValue(data[key])
	if !ok {
		return nil
	}
	return &v
}

// readField runs read and returns fallback when it fails or panics, so one
// malformed field never drops the record.
func readField(fallback string, read func() (string, bool)) (s string) {
	defer func() {
		if recover() != nil {
			s = fallback
		}
	}()
	if v, ok := read(); ok {
		return v
	}
	return fallback
}

func batchTotal(data map[string]interface{}) int {
	if total, ok := utils.IntField(data, "totalCount"); ok {
		return total
	}
	list, _ := utils.ListField(data, "indications")
	return len(list)
}
