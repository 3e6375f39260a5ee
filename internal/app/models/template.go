package models

import "time"

// DocumentTemplate holds html/template source used for document generation
type DocumentTemplate struct {
	ID        int64        `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Kind      TemplateKind `json:"kind" db:"kind"`
	Content   string       `json:"content" db:"content"`
	CreatedBy *int64       `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// Setting is one key/value application setting
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Well-known setting keys
const (
	SettingCompanyName    = "company_name"
	SettingCompanyAddress = "company_address"
	SettingSignatory      = "signatory_name"
)
