package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/pkg/errors"
)

// Grant 30, buy for 30, replay the same key, then try a fresh key on an
// empty balance.
func TestEntitlementService_PurchaseScenario(t *testing.T) {
	e := setupEnv(t)
	admin := e.createAdmin(t)
	user := e.createUser(t, 0, true)

	_, err := e.ledger.GrantAlba(user.ID, 30, models.ReasonAdminGrant, &admin.ID)
	require.NoError(t, err)

	first, err := e.entitlement.Purchase(user.ID, models.CardTypeProduct, "key-1")
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.Equal(t, models.EntitlementStatusAvailable, first.Entitlement.Status)
	require.NotNil(t, first.Transaction)
	assert.Equal(t, int64(-30), first.Transaction.Amount)
	assert.Equal(t, int64(0), e.reloadUser(t, user.ID).AlbaBalance)

	replay, err := e.entitlement.Purchase(user.ID, models.CardTypeProduct, "key-1")
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, first.Entitlement.ID, replay.Entitlement.ID)
	assert.Equal(t, int64(0), e.reloadUser(t, user.ID).AlbaBalance)

	var ents int64
	require.NoError(t, e.db.Model(&models.Entitlement{}).
		Where("owner_id = ?", user.ID).Count(&ents).Error)
	assert.Equal(t, int64(1), ents)

	_, err = e.entitlement.Purchase(user.ID, models.CardTypeProduct, "key-2")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInsufficientFunds, errors.CodeOf(err))
}

func TestEntitlementService_Purchase_InvalidType(t *testing.T) {
	e := setupEnv(t)
	user := e.createUser(t, 30, true)

	_, err := e.entitlement.Purchase(user.ID, models.CardTypeBanner, "key-1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
	assert.Equal(t, int64(30), e.reloadUser(t, user.ID).AlbaBalance)
}

// An omitted key gets a generated one: two such calls are independent
// purchases.
func TestEntitlementService_Purchase_EmptyKey(t *testing.T) {
	e := setupEnv(t)
	user := e.createUser(t, 60, true)

	first, err := e.entitlement.Purchase(user.ID, models.CardTypeProduct, "")
	require.NoError(t, err)
	second, err := e.entitlement.Purchase(user.ID, models.CardTypeProduct, "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Entitlement.ID, second.Entitlement.ID)
	assert.Equal(t, int64(0), e.reloadUser(t, user.ID).AlbaBalance)
}

func TestEntitlementService_GetAvailableAndConsume(t *testing.T) {
	e := setupEnv(t)
	user := e.createUser(t, 60, true)

	res, err := e.entitlement.Purchase(user.ID, models.CardTypeService, "key-1")
	require.NoError(t, err)

	available, err := e.entitlement.GetAvailable(user.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)

	consumed, err := e.entitlement.Consume(res.Entitlement.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EntitlementStatusConsumed, consumed.Status)

	_, err = e.entitlement.Consume(res.Entitlement.ID)
	assert.Equal(t, errors.ErrCodeAlreadyConsumed, errors.CodeOf(err))

	available, err = e.entitlement.GetAvailable(user.ID)
	require.NoError(t, err)
	assert.Empty(t, available)
}
