package guide

import "time"

// Button is one labeled "orientador" entry. Position orders buttons in the
// UI; reordering is a plain position update.
type Button struct {
	ID        int64     `gorm:"primaryKey"`
	Label     string    `gorm:"not null"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Button) TableName() string { return "guide_buttons" }

// Table is the spreadsheet-like payload attached to a button. The cell
// grid, merges, and formulas are an opaque JSON document edited client-side;
// the server stores and returns it verbatim.
type Table struct {
	ID        int64     `gorm:"primaryKey"`
	ButtonID  int64     `gorm:"column:button_id;uniqueIndex;not null"`
	Payload   string    `gorm:"type:text;not null;default:'{}'"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Table) TableName() string { return "guide_tables" }
