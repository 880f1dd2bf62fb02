package repositories

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/pkg/errors"
)

func TestLedgerRepository_Credit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	user := createTestUser(t, db, 0)

	rec, err := repo.Credit(user.ID, 30, models.AlbaTransaction{
		Type:   models.TxTypeGrant,
		Reason: models.ReasonAdminGrant,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(30), rec.Amount)
	assert.Equal(t, user.ID, rec.UserID)
	assert.Equal(t, int64(30), reloadUser(t, db, user.ID).AlbaBalance)
	assert.Equal(t, int64(1), countTransactions(t, db, user.ID))
}

func TestLedgerRepository_Credit_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)

	_, err := repo.Credit(9999, 30, models.AlbaTransaction{
		Type:   models.TxTypeGrant,
		Reason: models.ReasonAdminGrant,
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestLedgerRepository_Debit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	user := createTestUser(t, db, 50)

	rec, err := repo.Debit(user.ID, 30, models.AlbaTransaction{
		Type:   models.TxTypeSpend,
		Reason: models.ReasonCardEntitlementPurchase,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(-30), rec.Amount)
	assert.Equal(t, int64(20), reloadUser(t, db, user.ID).AlbaBalance)
	assert.Equal(t, int64(1), countTransactions(t, db, user.ID))
}

func TestLedgerRepository_Debit_InsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	user := createTestUser(t, db, 20)

	_, err := repo.Debit(user.ID, 30, models.AlbaTransaction{
		Type:   models.TxTypeSpend,
		Reason: models.ReasonCardEntitlementPurchase,
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInsufficientFunds, errors.CodeOf(err))
	// No mutation on rejection: balance untouched, nothing appended.
	assert.Equal(t, int64(20), reloadUser(t, db, user.ID).AlbaBalance)
	assert.Equal(t, int64(0), countTransactions(t, db, user.ID))
}

func TestLedgerRepository_Debit_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)

	_, err := repo.Debit(9999, 30, models.AlbaTransaction{
		Type:   models.TxTypeSpend,
		Reason: models.ReasonCardEntitlementPurchase,
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

// Two concurrent spends must never both pass the balance check. With a
// balance of 50 and ten concurrent debits of 10, exactly five may win and
// the balance must end at zero, never below.
func TestLedgerRepository_Debit_ConcurrentSpends(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	user := createTestUser(t, db, 50)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Debit(user.ID, 10, models.AlbaTransaction{
				Type:   models.TxTypeSpend,
				Reason: models.ReasonCardEntitlementPurchase,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, errors.ErrCodeInsufficientFunds, errors.CodeOf(err))
		}
	}

	assert.Equal(t, 5, succeeded)
	final := reloadUser(t, db, user.ID)
	assert.Equal(t, int64(0), final.AlbaBalance)
	assert.GreaterOrEqual(t, final.AlbaBalance, int64(0))
	assert.Equal(t, int64(5), countTransactions(t, db, user.ID))
}

func TestLedgerRepository_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	user := createTestUser(t, db, 0)

	for i := 1; i <= 3; i++ {
		_, err := repo.Credit(user.ID, int64(i), models.AlbaTransaction{
			Type:   models.TxTypeGrant,
			Reason: models.ReasonAdminGrant,
		})
		require.NoError(t, err)
	}

	page, err := repo.ListByUser(user.ID, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	// Newest first.
	assert.Equal(t, int64(3), page[0].Amount)
	assert.Equal(t, int64(2), page[1].Amount)
}

func TestLedgerRepository_GetBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLedgerRepository(db)
	user := createTestUser(t, db, 42)

	balance, err := repo.GetBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance)

	_, err = repo.GetBalance(9999)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}
