package authz

import (
	"testing"

	"foodplaza/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }

func status(s model.OrderStatus) *model.OrderStatus { return &s }

var (
	admin    = Principal{UserID: 1, Role: model.RoleAdmin}
	manager  = Principal{UserID: 2, Role: model.RoleManager}
	owner    = Principal{UserID: 3, Role: model.RoleCustomer}
	stranger = Principal{UserID: 4, Role: model.RoleCustomer}
	rider    = Principal{UserID: 5, Role: model.RoleDeliverer}

	managedLocal = &model.Local{ID: 10, ManagerID: i64(2)}
	otherLocal   = &model.Local{ID: 11, ManagerID: i64(99)}

	order = OrderRef{UserID: 3, LocalID: 10, Status: model.OrderStatusPending}
)

func TestCanView(t *testing.T) {
	assert.NoError(t, CanView(admin, order, otherLocal))
	assert.NoError(t, CanView(owner, order, managedLocal))
	assert.NoError(t, CanView(manager, order, managedLocal))

	assert.ErrorIs(t, CanView(manager, OrderRef{UserID: 3, LocalID: 11}, otherLocal), ErrForbidden)
	assert.ErrorIs(t, CanView(stranger, order, managedLocal), ErrForbidden)
	assert.ErrorIs(t, CanView(rider, order, nil), ErrForbidden)

	// gerente の役割がなければ店舗の manager_id が一致しても不可
	assert.ErrorIs(t, CanView(Principal{UserID: 2, Role: model.RoleCustomer}, order, managedLocal), ErrForbidden)
}

func TestCanUpdate(t *testing.T) {
	toPrep := Change{Status: status(model.OrderStatusInPreparation)}
	cancel := Change{Status: status(model.OrderStatusCancelled)}

	assert.NoError(t, CanUpdate(admin, order, nil, toPrep))
	assert.NoError(t, CanUpdate(manager, order, managedLocal, toPrep))
	assert.ErrorIs(t, CanUpdate(manager, order, otherLocal, toPrep), ErrForbidden)

	// 本人は pending のキャンセルだけ
	assert.NoError(t, CanUpdate(owner, order, managedLocal, cancel))
	assert.ErrorIs(t, CanUpdate(owner, order, managedLocal, toPrep), ErrForbidden)
	assert.ErrorIs(t, CanUpdate(owner, order, managedLocal, Change{Status: status(model.OrderStatusCancelled), OtherFields: true}), ErrForbidden)
	assert.ErrorIs(t, CanUpdate(owner, order, managedLocal, Change{OtherFields: true}), ErrForbidden)

	preparing := order
	preparing.Status = model.OrderStatusInPreparation
	assert.ErrorIs(t, CanUpdate(owner, preparing, managedLocal, cancel), ErrForbidden)

	assert.ErrorIs(t, CanUpdate(stranger, order, managedLocal, cancel), ErrForbidden)
}

func TestUpdatePrecondition(t *testing.T) {
	assert.Nil(t, UpdatePrecondition(admin, order, otherLocal))
	assert.Nil(t, UpdatePrecondition(manager, order, managedLocal))

	// 本人のキャンセルは pending のままであることが条件
	got := UpdatePrecondition(owner, order, managedLocal)
	require.NotNil(t, got)
	assert.Equal(t, model.OrderStatusPending, *got)

	got = UpdatePrecondition(manager, order, otherLocal)
	require.NotNil(t, got)
	assert.Equal(t, model.OrderStatusPending, *got)
}

func TestCanDelete(t *testing.T) {
	assert.NoError(t, CanDelete(admin))
	assert.ErrorIs(t, CanDelete(manager), ErrForbidden)
	assert.ErrorIs(t, CanDelete(owner), ErrForbidden)
}

func TestScopeList(t *testing.T) {
	t.Run("admin sees everything", func(t *testing.T) {
		s, err := ScopeList(admin, ListScope{}, nil)
		require.NoError(t, err)
		assert.Nil(t, s.UserID)
		assert.Nil(t, s.LocalID)
	})

	t.Run("manager on own local", func(t *testing.T) {
		s, err := ScopeList(manager, ListScope{LocalID: i64(10)}, managedLocal)
		require.NoError(t, err)
		assert.Equal(t, int64(10), *s.LocalID)
		assert.Nil(t, s.UserID)
	})

	t.Run("manager on foreign local", func(t *testing.T) {
		_, err := ScopeList(manager, ListScope{LocalID: i64(11)}, otherLocal)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("manager without local is scoped to self", func(t *testing.T) {
		s, err := ScopeList(manager, ListScope{}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(2), *s.UserID)
	})

	t.Run("customer is forced to self", func(t *testing.T) {
		s, err := ScopeList(owner, ListScope{LocalID: i64(10)}, managedLocal)
		require.NoError(t, err)
		assert.Equal(t, int64(3), *s.UserID)
		assert.Equal(t, int64(10), *s.LocalID)
	})

	t.Run("customer asking for another user", func(t *testing.T) {
		_, err := ScopeList(rider, ListScope{UserID: i64(3)}, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("customer asking for self", func(t *testing.T) {
		s, err := ScopeList(owner, ListScope{UserID: i64(3)}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), *s.UserID)
	})
}
