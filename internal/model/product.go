package model

import (
	"time"
)

// Product represents one entry in a wave's catalog. The rows are shared with
// the administrative write path through the record store, and the non-ASCII
// column identifiers are a wire contract with that path; they must not be
// renamed.
//
// The four window columns hold free-typed timestamps exactly as the admin
// entered them; parsing (and tolerating garbage) is the phase package's job.
type Product struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Wave        string    `json:"waveId" gorm:"column:場次;type:varchar(32);index;not null"`
	Name        string    `json:"name" gorm:"column:商品名稱;type:varchar(255);not null"`
	Price       float64   `json:"price" gorm:"column:特價"`
	OrigPrice   float64   `json:"origPrice" gorm:"column:原價"`
	MOQ         int       `json:"moq" gorm:"column:成團數;default:0"`
	Img         string    `json:"img" gorm:"column:圖片;type:text"`
	Description string    `json:"description" gorm:"column:說明;type:text"`
	Link        string    `json:"link" gorm:"column:購買連結;type:text"`
	SelectStart string    `json:"selectStart" gorm:"column:收單開始;type:varchar(64)"`
	SelectEnd   string    `json:"selectEnd" gorm:"column:收單結束;type:varchar(64)"`
	SaleStart   string    `json:"saleStart" gorm:"column:開賣開始;type:varchar(64)"`
	SaleEnd     string    `json:"saleEnd" gorm:"column:開賣結束;type:varchar(64)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the table identifier shared with the admin path.
func (Product) TableName() string { return "商品總表" }
