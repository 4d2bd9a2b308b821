package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prepflow/possync/internal/constants"
	"prepflow/possync/internal/models/gorm"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// LocalRecord is the uniform view of one local catalog entity handed to the
// sync engine. Key carries the natural key used for first-time matching.
type LocalRecord struct {
	ID        string
	Key       string
	UpdatedAt time.Time
	Fields    map[string]interface{}
}

// CatalogRepo is the transactional read/write interface over the account's
// syncable entities (recipes, dishes, staff, sales)
type CatalogRepo struct {
	db *gormlib.DB
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(db *gormlib.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// Snapshot returns a read-consistent view of all entities of one type for an
// account. A single query per call, so a half-written remote batch is never
// diffed against a torn local read.
func (r *CatalogRepo) Snapshot(ctx context.Context, accountID string, entityType string) ([]LocalRecord, error) {
	switch entityType {
	case constants.EntityTypeRecipe:
		var rows []gorm.Recipe
		if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]LocalRecord, 0, len(rows))
		for _, row := range rows {
			records = append(records, LocalRecord{
				ID:        row.ID,
				Key:       strings.ToLower(strings.TrimSpace(row.Name)),
				UpdatedAt: row.UpdatedAt,
				Fields: map[string]interface{}{
					"name":        row.Name,
					"price_cents": row.PriceCents,
					"is_active":   row.IsActive,
				},
			})
		}
		return records, nil

	case constants.EntityTypeDish:
		var rows []gorm.Dish
		if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]LocalRecord, 0, len(rows))
		for _, row := range rows {
			records = append(records, LocalRecord{
				ID:        row.ID,
				Key:       strings.ToLower(strings.TrimSpace(row.Name)),
				UpdatedAt: row.UpdatedAt,
				Fields: map[string]interface{}{
					"name":        row.Name,
					"price_cents": row.PriceCents,
					"category":    row.Category,
					"is_active":   row.IsActive,
				},
			})
		}
		return records, nil

	case constants.EntityTypeStaff:
		var rows []gorm.StaffMember
		if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]LocalRecord, 0, len(rows))
		for _, row := range rows {
			key := strings.ToLower(row.Email)
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(row.Name))
			}
			records = append(records, LocalRecord{
				ID:        row.ID,
				Key:       key,
				UpdatedAt: row.UpdatedAt,
				Fields: map[string]interface{}{
					"name":      row.Name,
					"email":     row.Email,
					"role":      row.Role,
					"is_active": row.IsActive,
				},
			})
		}
		return records, nil

	case constants.EntityTypeSale:
		var rows []gorm.SaleRecord
		if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Find(&rows).Error; err != nil {
			return nil, err
		}
		records := make([]LocalRecord, 0, len(rows))
		for _, row := range rows {
			records = append(records, LocalRecord{
				ID:        row.ID,
				Key:       strings.ToLower(row.Reference),
				UpdatedAt: row.UpdatedAt,
				Fields: map[string]interface{}{
					"reference":   row.Reference,
					"total_cents": row.TotalCents,
					"sold_at":     row.SoldAt,
				},
			})
		}
		return records, nil
	}

	return nil, fmt.Errorf("unknown entity type: %s", entityType)
}

// ApplyRemoteTx writes remote fields onto a local entity inside an open
// transaction. An empty localID creates the entity; the stored ID is
// returned either way. UpdatedAt is set to the pass timestamp so the next
// classification sees the row as in sync.
func (r *CatalogRepo) ApplyRemoteTx(ctx context.Context, tx *gormlib.DB, accountID string, entityType string, localID string, fields map[string]interface{}, at time.Time) (string, error) {
	switch entityType {
	case constants.EntityTypeRecipe:
		row := gorm.Recipe{
			ID:         localID,
			AccountID:  accountID,
			Name:       fieldString(fields, "name"),
			PriceCents: fieldInt64(fields, "price_cents"),
			IsActive:   fieldBool(fields, "is_active", true),
			UpdatedAt:  at,
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
			return row.ID, tx.WithContext(ctx).Create(&row).Error
		}
		return row.ID, tx.WithContext(ctx).
			Model(&gorm.Recipe{}).
			Where("id = ? AND account_id = ?", row.ID, accountID).
			Updates(map[string]interface{}{
				"name":        row.Name,
				"price_cents": row.PriceCents,
				"is_active":   row.IsActive,
				"updated_at":  at,
			}).Error

	case constants.EntityTypeDish:
		row := gorm.Dish{
			ID:         localID,
			AccountID:  accountID,
			Name:       fieldString(fields, "name"),
			PriceCents: fieldInt64(fields, "price_cents"),
			Category:   fieldString(fields, "category"),
			IsActive:   fieldBool(fields, "is_active", true),
			UpdatedAt:  at,
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
			return row.ID, tx.WithContext(ctx).Create(&row).Error
		}
		return row.ID, tx.WithContext(ctx).
			Model(&gorm.Dish{}).
			Where("id = ? AND account_id = ?", row.ID, accountID).
			Updates(map[string]interface{}{
				"name":        row.Name,
				"price_cents": row.PriceCents,
				"category":    row.Category,
				"is_active":   row.IsActive,
				"updated_at":  at,
			}).Error

	case constants.EntityTypeStaff:
		row := gorm.StaffMember{
			ID:        localID,
			AccountID: accountID,
			Name:      fieldString(fields, "name"),
			Email:     fieldString(fields, "email"),
			Role:      fieldString(fields, "role"),
			IsActive:  fieldBool(fields, "is_active", true),
			UpdatedAt: at,
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
			return row.ID, tx.WithContext(ctx).Create(&row).Error
		}
		return row.ID, tx.WithContext(ctx).
			Model(&gorm.StaffMember{}).
			Where("id = ? AND account_id = ?", row.ID, accountID).
			Updates(map[string]interface{}{
				"name":       row.Name,
				"email":      row.Email,
				"role":       row.Role,
				"is_active":  row.IsActive,
				"updated_at": at,
			}).Error

	case constants.EntityTypeSale:
		row := gorm.SaleRecord{
			ID:         localID,
			AccountID:  accountID,
			Reference:  fieldString(fields, "reference"),
			TotalCents: fieldInt64(fields, "total_cents"),
			SoldAt:     fieldTime(fields, "sold_at"),
			UpdatedAt:  at,
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
			return row.ID, tx.WithContext(ctx).Create(&row).Error
		}
		return row.ID, tx.WithContext(ctx).
			Model(&gorm.SaleRecord{}).
			Where("id = ? AND account_id = ?", row.ID, accountID).
			Updates(map[string]interface{}{
				"reference":   row.Reference,
				"total_cents": row.TotalCents,
				"sold_at":     row.SoldAt,
				"updated_at":  at,
			}).Error
	}

	return "", fmt.Errorf("unknown entity type: %s", entityType)
}

// Field coercion helpers. Values arrive either from JSON decoding (float64)
// or from typed local reads (int64), so both shapes are accepted.

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt64(fields map[string]interface{}, key string) int64 {
	switch v := fields[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func fieldBool(fields map[string]interface{}, key string, def bool) bool {
	if v, ok := fields[key].(bool); ok {
		return v
	}
	return def
}

func fieldTime(fields map[string]interface{}, key string) time.Time {
	switch v := fields[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
