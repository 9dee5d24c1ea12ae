package models

import "time"

// Document is one JSON document of a collection in the realtime store.
type Document struct {
	Collection string    `gorm:"primaryKey;size:64"`
	ID         string    `gorm:"primaryKey;size:128"`
	Body       string    `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (Document) TableName() string { return "documents" }
