package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupbuy-service/internal/model"
	"groupbuy-service/internal/phase"
)

const scheduleLayout = "2006-01-02 15:04:05"

func fmtOffset(d time.Duration) string {
	return time.Now().Add(d).Format(scheduleLayout)
}

func TestStorefrontScenario(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// wave 3: one product collecting, one closed; wave 4: one active
	require.NoError(t, db.Create(&model.Product{
		Wave: "3", Name: "花枝排", Price: 250, OrigPrice: 300, MOQ: 10,
		SelectStart: fmtOffset(-24 * time.Hour),
		SelectEnd:   fmtOffset(24 * time.Hour),
		SaleEnd:     fmtOffset(72 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&model.Product{
		Wave: "3", Name: "過期商品",
		SelectStart: fmtOffset(-72 * time.Hour),
		SelectEnd:   fmtOffset(-48 * time.Hour),
		SaleEnd:     fmtOffset(-24 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&model.Product{
		Wave: "4", Name: "烏魚子", Price: 800, MOQ: 5,
		SelectStart: fmtOffset(-72 * time.Hour),
		SelectEnd:   fmtOffset(-24 * time.Hour),
		SaleEnd:     fmtOffset(48 * time.Hour),
	}).Error)

	// member U1 registered with a trailing space in the product name
	ledger := NewIntentLedger(db)
	require.NoError(t, ledger.Submit(ctx, "L1", "3", "U1", "Amy", "http://a/1.png", "花枝排 ", 2))
	// zero-quantity rows stay invisible
	require.NoError(t, ledger.Submit(ctx, "L1", "3", "U2", "Ben", "", "花枝排", 4))
	require.NoError(t, ledger.Submit(ctx, "L1", "3", "U2", "Ben", "", "花枝排", -9999))
	// another leader's demand never leaks in
	require.NoError(t, ledger.Submit(ctx, "L2", "3", "U3", "Cat", "", "花枝排", 7))

	set := NewEnablementSet(db)
	require.NoError(t, set.SetEnabled(ctx, "L1", "3", "團媽小美", "花枝排", true))

	require.NoError(t, db.Create(&model.LeaderProfile{
		LeaderID: "L1", ExternalID: "U9", Name: "團媽小美", Avatar: "http://a/leader.png",
		BoundAt: time.Now(),
	}).Error)

	view, err := NewReadModelAssembler(db).Storefront(ctx, "L1", "U9")
	require.NoError(t, err)

	assert.True(t, view.Success)
	assert.Equal(t, "L1", view.LeaderID)
	assert.Equal(t, "團媽小美", view.LeaderName)
	assert.Equal(t, "http://a/leader.png", view.LeaderAvatar)
	assert.True(t, view.IsLeader)

	require.Len(t, view.ActiveWaves, 2, "closed products leave no trace")

	collecting := view.ActiveWaves[0]
	assert.Equal(t, "3", collecting.Wave)
	assert.Equal(t, phase.Collecting, collecting.Phase)
	require.Len(t, collecting.Products, 1, "the closed product is invisible, not flagged")

	card := collecting.Products[0]
	assert.Equal(t, "花枝排", card.Name)
	assert.Equal(t, 2, card.CurrentQty, "trailing-space submission still aggregates")
	assert.True(t, card.IsEnabled)
	require.Len(t, card.Voters, 1, "withdrawn member left the roster")
	assert.Equal(t, Voter{UserID: "U1", Name: "Amy", Qty: 2}, card.Voters[0])
	assert.Equal(t, []string{"http://a/1.png"}, card.BuyerAvatars)
	assert.NotEmpty(t, card.EndDate)
	assert.Equal(t, "3", card.WaveID)

	active := view.ActiveWaves[1]
	assert.Equal(t, "4", active.Wave)
	assert.Equal(t, phase.Active, active.Phase)
	require.Len(t, active.Products, 1)
	assert.Equal(t, "烏魚子", active.Products[0].Name)
	assert.False(t, active.Products[0].IsEnabled)
	assert.Zero(t, active.Products[0].CurrentQty)
}

func TestStorefrontVisitorIsNotLeader(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.LeaderProfile{
		LeaderID: "L1", ExternalID: "U9", Name: "團媽小美", BoundAt: time.Now(),
	}).Error)

	view, err := NewReadModelAssembler(db).Storefront(context.Background(), "L1", "U1")
	require.NoError(t, err)
	assert.False(t, view.IsLeader)
	assert.Equal(t, "團媽小美", view.LeaderName)
}

func TestStorefrontUnscheduledProductCollects(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&model.Product{Wave: "1", Name: "常態商品"}).Error)

	view, err := NewReadModelAssembler(db).Storefront(context.Background(), "L1", "")
	require.NoError(t, err)
	require.Len(t, view.ActiveWaves, 1)
	assert.Equal(t, phase.Collecting, view.ActiveWaves[0].Phase)
	assert.Empty(t, view.ActiveWaves[0].Products[0].EndDate)
}

func TestStorefrontSplitPhaseWave(t *testing.T) {
	db := newTestDB(t)
	// same wave, one product still collecting and one already purchasable
	require.NoError(t, db.Create(&model.Product{
		Wave: "3", Name: "甲",
		SelectStart: fmtOffset(-time.Hour),
		SelectEnd:   fmtOffset(time.Hour),
	}).Error)
	require.NoError(t, db.Create(&model.Product{
		Wave: "3", Name: "乙",
		SelectStart: fmtOffset(-48 * time.Hour),
		SelectEnd:   fmtOffset(-24 * time.Hour),
		SaleEnd:     fmtOffset(24 * time.Hour),
	}).Error)

	view, err := NewReadModelAssembler(db).Storefront(context.Background(), "L1", "")
	require.NoError(t, err)
	require.Len(t, view.ActiveWaves, 2, "one wave can carry two phase buckets")
	assert.Equal(t, phase.Collecting, view.ActiveWaves[0].Phase)
	assert.Equal(t, phase.Active, view.ActiveWaves[1].Phase)
	for _, wv := range view.ActiveWaves {
		assert.Equal(t, "3", wv.Wave)
		assert.Len(t, wv.Products, 1)
	}
}
