package models

// Category classifies a request. Reference data, never written by request handling.
type Category struct {
	CategoryID int    `gorm:"primaryKey;column:id" json:"id"`
	Name       string `gorm:"column:nombre" json:"nombre"`
}

// Status is a lifecycle state of a request. Reference data, never written by request handling.
type Status struct {
	StatusID int    `gorm:"primaryKey;column:id" json:"id"`
	Name     string `gorm:"column:nombre" json:"nombre"`
}

// StatusSubmitted is the status every new request starts in.
const StatusSubmitted = 1

// TableName overrides
func (Category) TableName() string {
	return "categorias"
}

func (Status) TableName() string {
	return "estados"
}
