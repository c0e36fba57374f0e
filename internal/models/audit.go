package models

import "time"

// Audit is embedded in every stored document. CreatedBy holds the tenant
// (system) name for tenant-owned records and the watcher username for activities.
type Audit struct {
	CreatedBy string    `bson:"created_by" json:"created_by"`
	UpdatedBy string    `bson:"updated_by" json:"updated_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewAudit stamps both audit pairs with the same actor and time.
func NewAudit(actor string, now time.Time) Audit {
	return Audit{CreatedBy: actor, UpdatedBy: actor, CreatedAt: now, UpdatedAt: now}
}
