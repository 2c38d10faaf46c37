package model

// AlertModel is one journaled alert row. Append-only: the monitor writes
// every alert it attempts to deliver and never reads the table back for
// diffing.
type AlertModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	TraceID   string `gorm:"size:64;uniqueIndex"`
	Kind      string `gorm:"size:32;index"`
	Asset     string `gorm:"size:32;index"`
	Body      string `gorm:"type:text"`
	Delivered bool
	CreatedAt int64 `gorm:"index"` // unix milliseconds
}

func (AlertModel) TableName() string { return "alerts" }
