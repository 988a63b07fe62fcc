package models

import "time"

// HistoryEntry is one append-only row of a request's status trajectory.
type HistoryEntry struct {
	HistoryID int       `gorm:"primaryKey;column:id" json:"id"`
	RequestID int       `gorm:"column:pqrssi_id;index" json:"pqrssi_id"`
	StatusID  int       `gorm:"column:estado_id" json:"estado_id"`
	Comment   string    `gorm:"column:comentario" json:"comentario"`
	CreatedAt time.Time `gorm:"column:fecha" json:"fecha"`

	Request Request `gorm:"foreignKey:RequestID" json:"-"`
	Status  Status  `gorm:"foreignKey:StatusID" json:"-"`
}

// HistoryView is a history entry with its status name resolved.
type HistoryView struct {
	HistoryID  int       `gorm:"column:id" json:"id"`
	RequestID  int       `gorm:"column:pqrssi_id" json:"pqrssi_id"`
	StatusID   int       `gorm:"column:estado_id" json:"estado_id"`
	StatusName string    `gorm:"column:estado" json:"estado"`
	Comment    string    `gorm:"column:comentario" json:"comentario"`
	CreatedAt  time.Time `gorm:"column:fecha" json:"fecha"`
}

// TableName specifies the table for HistoryEntry.
func (HistoryEntry) TableName() string {
	return "historial"
}

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Status{},
		&Request{},
		&HistoryEntry{},
		&Session{},
	}
}
