package model

import (
	"time"
)

// Intent is one member's registered purchase intent for one product in one
// wave. At most one live row exists per composite key (唯一鍵); repeated
// submissions mutate 數量 in place. A withdrawn intent is a row driven to
// quantity zero, never a deleted row.
type Intent struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	Key        string    `json:"key" gorm:"column:唯一鍵;type:varchar(255);uniqueIndex;not null"`
	LeaderID   string    `json:"leaderId" gorm:"column:團長;type:varchar(64);index;not null"`
	Wave       string    `json:"waveId" gorm:"column:場次;type:varchar(32);index;not null"`
	UserID     string    `json:"userId" gorm:"column:用戶ID;type:varchar(64);not null"`
	UserName   string    `json:"userName" gorm:"column:用戶名稱;type:varchar(128)"`
	UserAvatar string    `json:"userAvatar" gorm:"column:頭像;type:text"`
	ProdName   string    `json:"prodName" gorm:"column:商品名;type:varchar(255);not null"`
	Quantity   int       `json:"qty" gorm:"column:數量;default:0"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"column:更新時間"`
}

// TableName keeps the table identifier shared with the admin path.
func (Intent) TableName() string { return "跟團意願" }
