package entity

import "time"

// DailyQuota is the durable record of capacity and consumption for one ledger
// scope on one date. ScopeKey is "clinic:{code}" or "doctor:{uuid}". Rows are
// created lazily on the first booking of the day unless pre-seeded.
//
// Allocated is owned by the quota ledger: written through after each Redis
// reservation/release and recomputed from tickets on startup re-sync. The
// Redis side is the admission authority at runtime.
type DailyQuota struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ScopeKey  string    `gorm:"type:varchar(60);not null;uniqueIndex:ux_scope_date,priority:1" json:"scope_key"`
	QuotaDate time.Time `gorm:"type:date;not null;uniqueIndex:ux_scope_date,priority:2" json:"quota_date"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Allocated int       `gorm:"not null;default:0" json:"allocated"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DailyQuota) TableName() string {
	return "daily_quotas"
}
