package engine

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"groupbuy-service/internal/model"
	"groupbuy-service/internal/normalize"
)

// listDelimiter joins the enabled-product names on the binding row. The flat
// comma-joined column is a wire contract with the administrative write path,
// so names carrying the delimiter are rejected up front instead of corrupting
// the list.
const listDelimiter = ","

// EnablementSet maintains the per-(leader, wave) set of products a leader has
// opened for purchase.
type EnablementSet struct {
	db *gorm.DB
}

func NewEnablementSet(db *gorm.DB) *EnablementSet {
	return &EnablementSet{db: db}
}

// splitEnabled parses the stored column into raw entries.
func splitEnabled(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listDelimiter) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinEnabled(names []string) string {
	return strings.Join(names, listDelimiter)
}

// pickBinding chooses one row when legacy duplicates exist for a
// (leader, wave) pair: the row with the longest enabled list wins, newest
// binding time breaking ties.
func pickBinding(rows []model.LeaderBinding) *model.LeaderBinding {
	var best *model.LeaderBinding
	for i := range rows {
		r := &rows[i]
		if best == nil ||
			len(r.Enabled) > len(best.Enabled) ||
			(len(r.Enabled) == len(best.Enabled) && r.BoundAt.After(best.BoundAt)) {
			best = r
		}
	}
	return best
}

// enabledNames returns the normalized membership set of a binding row.
func enabledNames(b *model.LeaderBinding) map[string]bool {
	out := make(map[string]bool)
	if b == nil {
		return out
	}
	for _, raw := range splitEnabled(b.Enabled) {
		if n := normalize.Name(raw); n != "" {
			out[n] = true
		}
	}
	return out
}

func (e *EnablementSet) binding(ctx context.Context, leaderID, wave string) (*model.LeaderBinding, error) {
	var rows []model.LeaderBinding
	if err := e.db.WithContext(ctx).
		Where("團長 = ? AND 場次 = ?", leaderID, wave).
		Find(&rows).Error; err != nil {
		return nil, storeError("failed to load leader binding", err)
	}
	return pickBinding(rows), nil
}

// IsEnabled reports whether the product is open for purchase, comparing both
// sides in normalized form.
func (e *EnablementSet) IsEnabled(ctx context.Context, leaderID, wave, name string) (bool, error) {
	if e.db == nil {
		return false, configError("record store not initialized")
	}
	b, err := e.binding(ctx, leaderID, wave)
	if err != nil {
		return false, err
	}
	return enabledNames(b)[normalize.Name(name)], nil
}

// SetEnabled opens or closes one product for the wave. Enabling is idempotent
// and lazily creates the binding row; disabling a wave that was never bound
// is a domain error, not a silent row creation.
func (e *EnablementSet) SetEnabled(ctx context.Context, leaderID, wave, leaderName, rawName string, enable bool) error {
	if e.db == nil {
		return configError("record store not initialized")
	}
	if strings.Contains(rawName, listDelimiter) {
		return validationError("product name must not contain the list delimiter \",\"")
	}
	name := normalize.Name(rawName)
	if name == "" {
		return validationError("product name is empty")
	}

	b, err := e.binding(ctx, leaderID, wave)
	if err != nil {
		return err
	}

	if enable {
		if b == nil {
			row := model.LeaderBinding{
				LeaderID:   leaderID,
				Wave:       wave,
				LeaderName: leaderName,
				Enabled:    strings.TrimSpace(rawName),
				BoundAt:    time.Now(),
			}
			if err := e.db.WithContext(ctx).Create(&row).Error; err != nil {
				return storeError("failed to create leader binding", err)
			}
			return nil
		}
		if enabledNames(b)[name] {
			return nil
		}
		entries := append(splitEnabled(b.Enabled), strings.TrimSpace(rawName))
		return e.saveList(ctx, b, entries, leaderName)
	}

	if b == nil {
		return notFoundError(http.StatusBadRequest, "cannot disable a product for a wave that was never bound")
	}
	var kept []string
	for _, entry := range splitEnabled(b.Enabled) {
		if normalize.Name(entry) != name {
			kept = append(kept, entry)
		}
	}
	return e.saveList(ctx, b, kept, leaderName)
}

func (e *EnablementSet) saveList(ctx context.Context, b *model.LeaderBinding, entries []string, leaderName string) error {
	updates := map[string]interface{}{
		"開團商品": joinEnabled(entries),
	}
	if leaderName != "" {
		updates["團長名稱"] = leaderName
	}
	if err := e.db.WithContext(ctx).Model(&model.LeaderBinding{}).
		Where("id = ?", b.ID).
		Updates(updates).Error; err != nil {
		return storeError("failed to update leader binding", err)
	}
	return nil
}
