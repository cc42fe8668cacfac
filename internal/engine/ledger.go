package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"

	"groupbuy-service/internal/model"
	"groupbuy-service/internal/normalize"
)

// IntentLedger accumulates member purchase intents. One row lives per
// (leader, wave, member, normalized product name); repeated submissions for
// the same tuple mutate the quantity in place, clamped at zero. Withdrawal is
// a large negative delta, never a delete.
type IntentLedger struct {
	db *gorm.DB
}

func NewIntentLedger(db *gorm.DB) *IntentLedger {
	return &IntentLedger{db: db}
}

// IntentKey builds the deterministic composite row key.
func IntentKey(leaderID, wave, userID, normalizedName string) string {
	return fmt.Sprintf("%s_%s_%s_%s", leaderID, wave, userID, normalizedName)
}

// Submit applies one cart line item. Quantities accumulate: +1 then +1 yields
// 2. The increment runs as a single UPDATE so concurrent submissions for the
// same key cannot lose each other's delta. A negative delta against a
// non-existent row is a no-op.
func (l *IntentLedger) Submit(ctx context.Context, leaderID, wave, userID, userName, userAvatar, rawName string, qty int) error {
	if l.db == nil {
		return configError("record store not initialized")
	}
	name := normalize.Name(rawName)
	if name == "" {
		return validationError("product name is empty")
	}
	key := IntentKey(leaderID, wave, userID, name)

	res := l.db.WithContext(ctx).Model(&model.Intent{}).
		Where("唯一鍵 = ?", key).
		Updates(map[string]interface{}{
			// UpdatedAt rides along via the usual gorm callback
			"數量":   gorm.Expr("CASE WHEN 數量 + ? < 0 THEN 0 ELSE 數量 + ? END", qty, qty),
			"用戶名稱": userName,
			"頭像":   userAvatar,
		})
	if res.Error != nil {
		return storeError("failed to update intent", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if qty <= 0 {
		// nothing to withdraw from
		return nil
	}

	row := model.Intent{
		Key:        key,
		LeaderID:   leaderID,
		Wave:       wave,
		UserID:     userID,
		UserName:   userName,
		UserAvatar: userAvatar,
		ProdName:   rawName,
		Quantity:   qty,
		UpdatedAt:  time.Now(),
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		return storeError("failed to create intent", err)
	}
	return nil
}

// Voter is one member's live contribution to a product's total.
type Voter struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Qty    int    `json:"qty"`
}

// Demand is the aggregated purchase intent for one normalized product name.
type Demand struct {
	Total   int
	Voters  []Voter
	Avatars []string
}

// Aggregate folds the leader's intent rows for the given waves into
// per-normalized-name demand. Zero-quantity rows are skipped, so withdrawn
// members vanish from the roster without a delete.
func (l *IntentLedger) Aggregate(ctx context.Context, leaderID string, waves []string) (map[string]*Demand, error) {
	if l.db == nil {
		return nil, configError("record store not initialized")
	}
	if len(waves) == 0 {
		return map[string]*Demand{}, nil
	}
	rows, err := l.rows(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	include := make(map[string]bool, len(waves))
	for _, w := range waves {
		include[w] = true
	}
	return foldIntents(rows, include), nil
}

// rows scans all intent rows belonging to one leader in submission order.
func (l *IntentLedger) rows(ctx context.Context, leaderID string) ([]model.Intent, error) {
	var rows []model.Intent
	if err := l.db.WithContext(ctx).
		Where("團長 = ?", leaderID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, storeError("failed to scan intents", err)
	}
	return rows, nil
}

// foldIntents is the pure aggregation step, keyed by normalized name. Voter
// entries preserve encounter order; avatars are deduplicated.
func foldIntents(rows []model.Intent, waves map[string]bool) map[string]*Demand {
	out := make(map[string]*Demand)
	for _, r := range rows {
		if !waves[r.Wave] || r.Quantity <= 0 {
			continue
		}
		name := normalize.Name(r.ProdName)
		d := out[name]
		if d == nil {
			d = &Demand{}
			out[name] = d
		}
		d.Total += r.Quantity
		d.Voters = append(d.Voters, Voter{UserID: r.UserID, Name: r.UserName, Qty: r.Quantity})
		if r.UserAvatar != "" && !slices.Contains(d.Avatars, r.UserAvatar) {
			d.Avatars = append(d.Avatars, r.UserAvatar)
		}
	}
	return out
}
