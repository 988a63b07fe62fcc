package models

import "time"

// Request is one PQRSSI record in the ledger. Only StatusID changes after creation.
type Request struct {
	RequestID   int       `gorm:"primaryKey;column:id" json:"id"`
	Type        string    `gorm:"column:tipo" json:"tipo"`
	Description string    `gorm:"column:descripcion" json:"descripcion"`
	SubmittedAt time.Time `gorm:"column:fecha" json:"fecha"`
	UserID      int       `gorm:"column:usuario_id;index" json:"usuario_id"`
	CategoryID  int       `gorm:"column:categoria_id" json:"categoria_id"`
	StatusID    int       `gorm:"column:estado_id" json:"estado_id"`

	// Relations
	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
	Status   Status   `gorm:"foreignKey:StatusID" json:"-"`
}

// RequestSummary is a request joined with the names of its category, status and owner.
type RequestSummary struct {
	RequestID   int       `gorm:"column:id" json:"id"`
	Type        string    `gorm:"column:tipo" json:"tipo"`
	Description string    `gorm:"column:descripcion" json:"descripcion"`
	Status      string    `gorm:"column:estado" json:"estado"`
	SubmittedAt time.Time `gorm:"column:fecha" json:"fecha"`
	Category    string    `gorm:"column:categoria" json:"categoria"`
	Owner       string    `gorm:"column:usuario" json:"usuario"`
}

// TableName overrides
func (Request) TableName() string {
	return "pqrssi"
}
