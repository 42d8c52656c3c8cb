// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// ImportReceipt represents the recorded outcome of a previously processed
// gacha-log upload, keyed by (user_id, account_id, key). It enables safe
// retries of import requests: replaying the same Idempotency-Key returns the
// originally reported counts without re-running the import pipeline.
type ImportReceipt struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_account_key,priority:1"`
	AccountID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_account_key,priority:2"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_account_key,priority:3"`
	Source     string    `gorm:"type:TEXT NOT NULL"`
	NewRecords int       `gorm:"type:INTEGER NOT NULL"`
	Status     int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (ImportReceipt) TableName() string { return "import_receipts" }
