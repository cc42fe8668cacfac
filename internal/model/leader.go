package model

import (
	"time"
)

// LeaderBinding holds a leader's per-wave state. 開團商品 is the comma-joined
// list of raw product names the leader has opened for purchase; the flat
// representation is shared with the admin path and must stay comma-joined.
//
// At most one row should exist per (團長, 場次). Legacy data may contain
// duplicates, so the column pair carries a plain index rather than a unique
// one; the engine tolerates duplicates on read and never creates new ones.
type LeaderBinding struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	LeaderID   string    `json:"leaderId" gorm:"column:團長;type:varchar(64);index:idx_leader_wave;not null"`
	Wave       string    `json:"waveId" gorm:"column:場次;type:varchar(32);index:idx_leader_wave;not null"`
	LeaderName string    `json:"leaderName" gorm:"column:團長名稱;type:varchar(128)"`
	Enabled    string    `json:"enabled" gorm:"column:開團商品;type:text"`
	BoundAt    time.Time `json:"boundAt" gorm:"column:綁定時間"`
}

// TableName keeps the table identifier shared with the admin path.
func (LeaderBinding) TableName() string { return "開團綁定" }

// LeaderProfile binds a leader alias to the external identity provider's user
// id. Leader-scoped writes are only accepted when the verified token identity
// matches ExternalID for the claimed alias.
type LeaderProfile struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	LeaderID   string    `json:"leaderId" gorm:"column:團長代號;type:varchar(64);uniqueIndex;not null"`
	ExternalID string    `json:"externalId" gorm:"column:外部用戶ID;type:varchar(64);index;not null"`
	Name       string    `json:"name" gorm:"column:團長名稱;type:varchar(128)"`
	Avatar     string    `json:"avatar" gorm:"column:頭像;type:text"`
	BoundAt    time.Time `json:"boundAt" gorm:"column:綁定時間"`
}

// TableName keeps the table identifier shared with the admin path.
func (LeaderProfile) TableName() string { return "團長身份" }
