package receipt

import (
	"path/filepath"
	"testing"

	"order-tracking-api/config"
	"order-tracking-api/models"
	"order-tracking-api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *models.Company {
	t.Helper()
	config.OpenDB(filepath.Join(t.TempDir(), "receipt_test.db"))
	company := models.Company{Name: "Test Cafe"}
	require.NoError(t, config.DB.Create(&company).Error)
	return &company
}

func TestTokenRoundTrip(t *testing.T) {
	token := Token("1700000000000")
	assert.Equal(t, "ORDER-RECEIPT-1700000000000", token)

	id, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", id)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"GARBAGE",
		"",
		"ORDER-RECEIPT-",               // prefix with no id
		"order-receipt-1700000000000",  // prefix is case-sensitive
		" ORDER-RECEIPT-1700000000000", // no leading noise allowed
		"RECEIPT-ORDER-1700000000000",
	} {
		_, err := ParseToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "raw=%q", raw)
	}
}

func TestValidateDeliversPendingAndReadyItems(t *testing.T) {
	company := setupDB(t)

	// internal order: prep item starts pending, non-prep starts ready
	order, err := store.PlaceOrder(company.ID, nil, models.TargetTable, "8", models.SourceInternal, []store.NewItem{
		{ProductID: 1, Name: "Espresso", Price: 2.5, Quantity: 1, RequiresPreparation: true},
		{ProductID: 2, Name: "Bottled Water", Price: 1.0, Quantity: 1, RequiresPreparation: false},
		{ProductID: 3, Name: "Omelette", Price: 6.0, Quantity: 1, RequiresPreparation: true},
	})
	require.NoError(t, err)
	// move the third item into preparing; the protocol must leave it alone
	require.NoError(t, store.UpdateOrderItemStatus(order.ID, 2, models.ItemPreparing, nil, nil))

	result, err := Validate(Token(order.ID), company.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, result.OrderID)
	assert.Equal(t, 2, result.ItemsDelivered)
	assert.Contains(t, result.Message, order.ID[len(order.ID)-4:])

	got, err := store.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemDelivered, got.Items[0].Status)
	assert.Equal(t, models.ItemDelivered, got.Items[1].Status)
	assert.Equal(t, models.ItemPreparing, got.Items[2].Status)
	// placed + manual preparing + one entry per delivered item
	assert.Len(t, got.History, 4)
}

func TestValidateInvalidTokenMutatesNothing(t *testing.T) {
	company := setupDB(t)
	order, err := store.PlaceOrder(company.ID, nil, models.TargetTable, "8", models.SourceInternal, []store.NewItem{
		{ProductID: 1, Name: "Espresso", Price: 2.5, Quantity: 1, RequiresPreparation: true},
	})
	require.NoError(t, err)

	_, err = Validate("GARBAGE", company.ID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	got, err := store.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemPending, got.Items[0].Status)
	assert.Len(t, got.History, 1)
}

func TestValidateOrderNotFoundOutsideScope(t *testing.T) {
	company := setupDB(t)
	other := models.Company{Name: "Other Cafe"}
	require.NoError(t, config.DB.Create(&other).Error)

	order, err := store.PlaceOrder(other.ID, nil, models.TargetTable, "2", models.SourceInternal, []store.NewItem{
		{ProductID: 1, Name: "Espresso", Price: 2.5, Quantity: 1, RequiresPreparation: true},
	})
	require.NoError(t, err)

	// unknown id
	_, err = Validate(Token("999999999999"), company.ID)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)

	// another tenant's order: same answer, no wider fallback
	_, err = Validate(Token(order.ID), company.ID)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)

	got, err := store.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemPending, got.Items[0].Status)
}

func TestValidateSkipsArchivedOrders(t *testing.T) {
	company := setupDB(t)
	order, err := store.PlaceOrder(company.ID, nil, models.TargetTable, "4", models.SourceInternal, []store.NewItem{
		{ProductID: 1, Name: "Bottled Water", Price: 1.0, Quantity: 1, RequiresPreparation: false},
	})
	require.NoError(t, err)
	require.NoError(t, store.UpdateOrderItemStatus(order.ID, 0, models.ItemDelivered, nil, nil))
	_, err = store.ArchiveCompletedOrders(company.ID)
	require.NoError(t, err)

	_, err = Validate(Token(order.ID), company.ID)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestQRPNG(t *testing.T) {
	png, err := QRPNG("1700000000000", 256)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
