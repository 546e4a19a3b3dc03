package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"foodplaza/internal/domain/model"
	infrarepo "foodplaza/internal/infra/repository"
	"foodplaza/internal/testutil"
	"foodplaza/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type flow struct {
	db     *gorm.DB
	orders *usecase.OrderUsecase
	query  *usecase.OrderQueryUsecase
	local  model.Local
}

func newFlow(t *testing.T) *flow {
	t.Helper()
	db := testutil.OpenDB(t)
	tx := infrarepo.NewTxManagerGorm(db)
	return &flow{
		db:     db,
		orders: usecase.NewOrderUsecase(tx, usecase.NewOrderValidator(usecase.PriceFromCatalog), nil, nil, nil),
		query:  usecase.NewOrderQueryUsecase(tx, nil),
		local:  testutil.SeedLocal(t, db, nil),
	}
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func TestOrderFlow_TotalAndEstimate(t *testing.T) {
	f := newFlow(t)
	taco := testutil.SeedProduct(t, f.db, "Taco", "45.00", true)
	agua := testutil.SeedProduct(t, f.db, "Agua", "30.00", true)

	out, err := f.orders.Create(context.Background(), 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items: []usecase.ProposedItem{
			{ProductID: taco.ID, Quantity: 2},
			{ProductID: agua.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "120.00", out.Total)
	assert.Equal(t, 40, out.EstimatedMinutes)
	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, int64(3), out.UserID)
}

func TestOrderFlow_EstimateForThreeLines(t *testing.T) {
	f := newFlow(t)
	a := testutil.SeedProduct(t, f.db, "A", "10.00", true)
	b := testutil.SeedProduct(t, f.db, "B", "10.00", true)
	c := testutil.SeedProduct(t, f.db, "C", "10.00", true)

	out, err := f.orders.Create(context.Background(), 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items: []usecase.ProposedItem{
			{ProductID: a.ID, Quantity: 1},
			{ProductID: b.ID, Quantity: 1},
			{ProductID: c.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 45, out.EstimatedMinutes)
}

func TestOrderFlow_EmptyOrderPersistsNothing(t *testing.T) {
	f := newFlow(t)

	_, err := f.orders.Create(context.Background(), 3, usecase.CreateOrderInput{LocalID: f.local.ID})
	assert.ErrorIs(t, err, usecase.ErrEmptyOrder)
	assert.Equal(t, int64(0), countRows(t, f.db, &model.Order{}))
	assert.Equal(t, int64(0), countRows(t, f.db, &model.OrderItem{}))
}

func TestOrderFlow_AtomicOnUnavailableItem(t *testing.T) {
	f := newFlow(t)
	a := testutil.SeedProduct(t, f.db, "A", "10.00", true)
	b := testutil.SeedProduct(t, f.db, "B", "10.00", false)
	c := testutil.SeedProduct(t, f.db, "C", "10.00", true)

	_, err := f.orders.Create(context.Background(), 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items: []usecase.ProposedItem{
			{ProductID: a.ID, Quantity: 1},
			{ProductID: b.ID, Quantity: 1},
			{ProductID: c.ID, Quantity: 1},
		},
	})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.ErrorIs(t, err, usecase.ErrProductUnavailable)

	assert.Equal(t, int64(0), countRows(t, f.db, &model.Order{}))
	assert.Equal(t, int64(0), countRows(t, f.db, &model.OrderItem{}))
}

func TestOrderFlow_UnknownLocal(t *testing.T) {
	f := newFlow(t)

	_, err := f.orders.Create(context.Background(), 3, usecase.CreateOrderInput{
		LocalID: f.local.ID + 100,
		Items:   []usecase.ProposedItem{{ProductID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, usecase.ErrLocalNotFound)
}

func TestOrderFlow_PriceSnapshotSurvivesCatalogChange(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, "Torta", "50.00", true)

	created, err := f.orders.Create(ctx, 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items:   []usecase.ProposedItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("price", "60.00").Error)

	got, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "50.00", got.Items[0].UnitPrice)
	assert.Equal(t, "50.00", got.Total)
	assert.Equal(t, "Torta", got.Items[0].Name)
}

func TestOrderFlow_GetIsIdempotent(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, "Torta", "50.00", true)

	created, err := f.orders.Create(ctx, 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items:   []usecase.ProposedItem{{ProductID: p.ID, Quantity: 2, Instructions: "bien dorada"}},
	})
	require.NoError(t, err)

	first, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	second, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, created.ID, first.ID)
	assert.Equal(t, "bien dorada", first.Items[0].Instructions)
}

func TestOrderFlow_FilterConjunction(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	other := testutil.SeedLocal(t, f.db, nil)
	p := testutil.SeedProduct(t, f.db, "Taco", "10.00", true)

	place := func(userID, localID int64) usecase.OrderOutput {
		out, err := f.orders.Create(ctx, userID, usecase.CreateOrderInput{
			LocalID: localID,
			Items:   []usecase.ProposedItem{{ProductID: p.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		return out
	}

	want := place(3, f.local.ID)
	place(3, other.ID)
	place(4, f.local.ID)
	moved := place(3, f.local.ID)
	_, err := f.orders.Update(ctx, 1, moved.ID, usecase.UpdateOrderInput{Status: strPtr("in_preparation")})
	require.NoError(t, err)

	outs, err := f.query.List(ctx, usecase.ListOrdersInput{
		Status:  "pending",
		LocalID: &f.local.ID,
		UserID:  i64Ptr(3),
	})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, want.ID, outs[0].ID)

	all, err := f.query.List(ctx, usecase.ListOrdersInput{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	page, err := f.query.List(ctx, usecase.ListOrdersInput{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[1].ID, page[0].ID)
}

func TestOrderFlow_PartialUpdate(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, "Taco", "45.00", true)

	created, err := f.orders.Create(ctx, 3, usecase.CreateOrderInput{
		LocalID:      f.local.ID,
		Instructions: "para llevar",
		Items:        []usecase.ProposedItem{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	updated, err := f.orders.Update(ctx, 1, created.ID, usecase.UpdateOrderInput{Status: strPtr("in_preparation")})
	require.NoError(t, err)
	assert.Equal(t, "in_preparation", updated.Status)
	assert.Equal(t, "para llevar", updated.Instructions)
	assert.Equal(t, created.EstimatedMinutes, updated.EstimatedMinutes)
	assert.Equal(t, created.Total, updated.Total)
	assert.Equal(t, created.Items, updated.Items)

	updated, err = f.orders.Update(ctx, 1, created.ID, usecase.UpdateOrderInput{EstimatedMinutes: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, "in_preparation", updated.Status)
	assert.Equal(t, 20, updated.EstimatedMinutes)

	var logs []model.AuditLog
	require.NoError(t, f.db.Order("id asc").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, model.AuditActionUpdateOrderStatus, logs[0].Action)
	assert.Equal(t, model.AuditActionUpdateOrder, logs[1].Action)
	assert.Equal(t, created.ID, logs[0].ResourceID)
}

func TestOrderFlow_UpdateUnknownOrder(t *testing.T) {
	f := newFlow(t)

	_, err := f.orders.Update(context.Background(), 1, 999, usecase.UpdateOrderInput{Status: strPtr("cancelled")})
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)
}

func TestOrderFlow_TerminalStatusIsFinal(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, "Taco", "45.00", true)

	created, err := f.orders.Create(ctx, 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items:   []usecase.ProposedItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.orders.Update(ctx, 1, created.ID, usecase.UpdateOrderInput{Status: strPtr("cancelled")})
	require.NoError(t, err)

	_, err = f.orders.Update(ctx, 1, created.ID, usecase.UpdateOrderInput{Status: strPtr("in_preparation")})
	assert.ErrorIs(t, err, usecase.ErrIllegalTransition)
	assert.ErrorIs(t, err, usecase.ErrOrderClosed)
}

func TestOrderFlow_DeleteRemovesItems(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, "Taco", "45.00", true)

	created, err := f.orders.Create(ctx, 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items:   []usecase.ProposedItem{{ProductID: p.ID, Quantity: 1}, {ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	require.NoError(t, f.orders.Delete(ctx, 1, created.ID))
	assert.Equal(t, int64(0), countRows(t, f.db, &model.Order{}))
	assert.Equal(t, int64(0), countRows(t, f.db, &model.OrderItem{}))
	assert.Equal(t, int64(1), countRows(t, f.db, &model.AuditLog{}))

	_, err = f.orders.Get(ctx, created.ID)
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)
}

func TestOrderFlow_ListByLocal(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, "Taco", "45.00", true)

	_, err := f.orders.Create(ctx, 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items:   []usecase.ProposedItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	outs, err := f.query.ListByLocal(ctx, f.local.ID, usecase.ListOrdersInput{})
	require.NoError(t, err)
	assert.Len(t, outs, 1)

	_, err = f.query.ListByLocal(ctx, f.local.ID+50, usecase.ListOrdersInput{})
	assert.ErrorIs(t, err, usecase.ErrLocalNotFound)
}

func TestOrderFlow_AuditTrailSurvivesDelete(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, "Taco", "45.00", true)

	created, err := f.orders.Create(ctx, 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items:   []usecase.ProposedItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.orders.Update(ctx, 2, created.ID, usecase.UpdateOrderInput{Status: strPtr("in_preparation")})
	require.NoError(t, err)
	require.NoError(t, f.orders.Delete(ctx, 1, created.ID))

	trail, err := f.query.AuditTrail(ctx, created.ID, usecase.AuditTrailInput{})
	require.NoError(t, err)
	require.Len(t, trail, 2)

	assert.Equal(t, string(model.AuditActionUpdateOrderStatus), trail[0].Action)
	assert.Equal(t, int64(2), trail[0].ActorUserID)
	assert.JSONEq(t, `{"status":"pending","instructions":"","estimated_minutes":35}`, string(trail[0].Before))
	assert.JSONEq(t, `{"status":"in_preparation","instructions":"","estimated_minutes":35}`, string(trail[0].After))

	assert.Equal(t, string(model.AuditActionDeleteOrder), trail[1].Action)
	assert.Equal(t, int64(1), trail[1].ActorUserID)
	assert.JSONEq(t, `{}`, string(trail[1].After))
}

func TestOrderFlow_UpdateRejectsStaleExpectedStatus(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, "Taco", "45.00", true)

	created, err := f.orders.Create(ctx, 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items:   []usecase.ProposedItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// 本人が pending を見てキャンセルする前に、gerente が調理を始めた
	_, err = f.orders.Update(ctx, 2, created.ID, usecase.UpdateOrderInput{Status: strPtr("in_preparation")})
	require.NoError(t, err)

	pending := model.OrderStatusPending
	_, err = f.orders.Update(ctx, 3, created.ID, usecase.UpdateOrderInput{
		Status:       strPtr("cancelled"),
		ExpectStatus: &pending,
	})
	assert.ErrorIs(t, err, usecase.ErrStaleOrder)
	assertHTTPStatus(t, err, http.StatusConflict)

	got, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_preparation", got.Status)
	assert.Equal(t, int64(1), countRows(t, f.db, &model.AuditLog{}))
}

func TestOrderFlow_UpdateTrimsInstructions(t *testing.T) {
	f := newFlow(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, "Taco", "45.00", true)

	created, err := f.orders.Create(ctx, 3, usecase.CreateOrderInput{
		LocalID: f.local.ID,
		Items:   []usecase.ProposedItem{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := f.orders.Update(ctx, 2, created.ID, usecase.UpdateOrderInput{Instructions: strPtr("  no onions  ")})
	require.NoError(t, err)
	assert.Equal(t, "no onions", updated.Instructions)
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "want *HTTPError, got %T", err)
	assert.Equal(t, want, he.Status)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func i64Ptr(i int64) *int64   { return &i }
