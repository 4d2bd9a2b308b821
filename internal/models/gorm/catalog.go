package gorm

import "time"

// Recipe is a costed recipe in the PrepFlow catalog
type Recipe struct {
	ID         string    `gorm:"column:id;primaryKey;type:uuid"`
	AccountID  string    `gorm:"column:account_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;type:varchar(120);not null"`
	PriceCents int64     `gorm:"column:price_cents;not null;default:0"`
	CostCents  int64     `gorm:"column:cost_cents;not null;default:0"`
	IsActive   bool      `gorm:"column:is_active;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// Dish is a sellable menu item built from recipes
type Dish struct {
	ID         string    `gorm:"column:id;primaryKey;type:uuid"`
	AccountID  string    `gorm:"column:account_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;type:varchar(120);not null"`
	PriceCents int64     `gorm:"column:price_cents;not null;default:0"`
	Category   string    `gorm:"column:category;type:varchar(60)"`
	IsActive   bool      `gorm:"column:is_active;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (Dish) TableName() string {
	return "dishes"
}

// StaffMember is an employee on the roster
type StaffMember struct {
	ID             string    `gorm:"column:id;primaryKey;type:uuid"`
	AccountID      string    `gorm:"column:account_id;type:uuid;not null;index"`
	Name           string    `gorm:"column:name;type:varchar(120);not null"`
	Email          string    `gorm:"column:email;type:varchar(120)"`
	Role           string    `gorm:"column:role;type:varchar(60)"`
	HourlyRateCent int64     `gorm:"column:hourly_rate_cents;not null;default:0"`
	IsActive       bool      `gorm:"column:is_active;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (StaffMember) TableName() string {
	return "staff_members"
}

// SaleRecord is a sale pulled from the POS. Sales only flow inward, the
// orchestrator never pushes them back.
type SaleRecord struct {
	ID         string    `gorm:"column:id;primaryKey;type:uuid"`
	AccountID  string    `gorm:"column:account_id;type:uuid;not null;index"`
	Reference  string    `gorm:"column:reference;type:varchar(64);not null"`
	TotalCents int64     `gorm:"column:total_cents;not null;default:0"`
	SoldAt     time.Time `gorm:"column:sold_at"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (SaleRecord) TableName() string {
	return "sale_records"
}
