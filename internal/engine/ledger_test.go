package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupbuy-service/internal/model"
)

func TestSubmitAccumulates(t *testing.T) {
	db := newTestDB(t)
	l := NewIntentLedger(db)
	ctx := context.Background()

	require.NoError(t, l.Submit(ctx, "L1", "3", "U1", "Amy", "http://a/1.png", "花枝排", 3))
	require.NoError(t, l.Submit(ctx, "L1", "3", "U1", "Amy", "http://a/1.png", "花枝排", -1))

	var rows []model.Intent
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1, "repeated submissions mutate one row")
	assert.Equal(t, 2, rows[0].Quantity)
	assert.Equal(t, IntentKey("L1", "3", "U1", "花枝排"), rows[0].Key)

	agg, err := l.Aggregate(ctx, "L1", []string{"3"})
	require.NoError(t, err)
	require.Contains(t, agg, "花枝排")
	assert.Equal(t, 2, agg["花枝排"].Total)
	require.Len(t, agg["花枝排"].Voters, 1, "one live row means one voter entry")
	assert.Equal(t, Voter{UserID: "U1", Name: "Amy", Qty: 2}, agg["花枝排"].Voters[0])
}

func TestSubmitLargeNegativeZeroesRow(t *testing.T) {
	db := newTestDB(t)
	l := NewIntentLedger(db)
	ctx := context.Background()

	require.NoError(t, l.Submit(ctx, "L1", "3", "U1", "Amy", "", "花枝排", 5))
	require.NoError(t, l.Submit(ctx, "L1", "3", "U1", "Amy", "", "花枝排", -9999))

	var row model.Intent
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, 0, row.Quantity, "withdraw clamps at zero, row survives")

	agg, err := l.Aggregate(ctx, "L1", []string{"3"})
	require.NoError(t, err)
	assert.NotContains(t, agg, "花枝排", "zero-quantity rows vanish from the read side")
}

func TestSubmitNegativeOnMissingRowIsNoop(t *testing.T) {
	db := newTestDB(t)
	l := NewIntentLedger(db)

	require.NoError(t, l.Submit(context.Background(), "L1", "3", "U1", "Amy", "", "花枝排", -2))

	var count int64
	require.NoError(t, db.Model(&model.Intent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitJoinsOnNormalizedName(t *testing.T) {
	db := newTestDB(t)
	l := NewIntentLedger(db)
	ctx := context.Background()

	require.NoError(t, l.Submit(ctx, "L1", "3", "U1", "Amy", "", "花枝排 ", 2))
	require.NoError(t, l.Submit(ctx, "L1", "3", "U1", "Amy", "", "花枝排", 1))

	var count int64
	require.NoError(t, db.Model(&model.Intent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "spacing variants share one composite key")

	agg, err := l.Aggregate(ctx, "L1", []string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, agg["花枝排"].Total)
}

func TestSubmitRejectsEmptyName(t *testing.T) {
	db := newTestDB(t)
	l := NewIntentLedger(db)

	err := l.Submit(context.Background(), "L1", "3", "U1", "Amy", "", "   ", 1)
	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "validation_error", de.Code)
}

func TestAggregateScoping(t *testing.T) {
	db := newTestDB(t)
	l := NewIntentLedger(db)
	ctx := context.Background()

	require.NoError(t, l.Submit(ctx, "L1", "3", "U1", "Amy", "http://a/1.png", "花枝排", 2))
	require.NoError(t, l.Submit(ctx, "L1", "3", "U2", "Ben", "http://a/2.png", "花枝排", 4))
	require.NoError(t, l.Submit(ctx, "L1", "9", "U3", "Cat", "", "花枝排", 7))   // wave not requested
	require.NoError(t, l.Submit(ctx, "L2", "3", "U4", "Dan", "", "花枝排", 5))   // other leader
	require.NoError(t, l.Submit(ctx, "L1", "3", "U5", "Eve", "", "烏魚子", 1))

	agg, err := l.Aggregate(ctx, "L1", []string{"3"})
	require.NoError(t, err)
	require.Contains(t, agg, "花枝排")
	assert.Equal(t, 6, agg["花枝排"].Total)
	require.Len(t, agg["花枝排"].Voters, 2)
	assert.Equal(t, "U1", agg["花枝排"].Voters[0].UserID, "voters keep encounter order")
	assert.Equal(t, "U2", agg["花枝排"].Voters[1].UserID)
	assert.Equal(t, []string{"http://a/1.png", "http://a/2.png"}, agg["花枝排"].Avatars)
	assert.Equal(t, 1, agg["烏魚子"].Total)
}

func TestAggregateNoWaves(t *testing.T) {
	db := newTestDB(t)
	l := NewIntentLedger(db)

	agg, err := l.Aggregate(context.Background(), "L1", nil)
	require.NoError(t, err)
	assert.Empty(t, agg)
}

func TestAggregateDeduplicatesAvatars(t *testing.T) {
	db := newTestDB(t)
	l := NewIntentLedger(db)
	ctx := context.Background()

	require.NoError(t, l.Submit(ctx, "L1", "3", "U1", "Amy", "http://a/1.png", "花枝排", 1))
	require.NoError(t, l.Submit(ctx, "L1", "3", "U1", "Amy", "http://a/1.png", "烏魚子", 1))

	agg, err := l.Aggregate(ctx, "L1", []string{"3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a/1.png"}, agg["花枝排"].Avatars)
	assert.Equal(t, []string{"http://a/1.png"}, agg["烏魚子"].Avatars)
}
