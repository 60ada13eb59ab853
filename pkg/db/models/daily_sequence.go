package models

// DailySequence backs the per-day transaction code counter. Values are only
// ever advanced through an atomic upsert-increment, never read-then-written.
type DailySequence struct {
	Day   string `gorm:"column:day;primaryKey"`
	Value int64  `gorm:"column:value;not null"`
}

// TableName pins the table name GORM uses.
func (DailySequence) TableName() string {
	return "daily_sequences"
}
