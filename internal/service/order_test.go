package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/receipt"
)

func TestOrders_ListGetReceipt(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	ctx := context.Background()
	p := dbtest.Product(t, f.gdb, "Oxford", "100.00", 10)

	var numbers []string
	for i := 0; i < 2; i++ {
		_, err := f.cart.Add(ctx, alice, p.ID, "", 1)
		require.NoError(t, err)
		res, err := f.checkout.Checkout(ctx, alice, validRequest())
		require.NoError(t, err)
		numbers = append(numbers, res.OrderNumber)
	}

	orders := &OrderService{Repo: f.checkout.Repo, Receipts: f.checkout.Receipts}

	page, err := orders.List(ctx, alice, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Total)

	page, err = orders.List(ctx, bob, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	o, err := orders.Get(ctx, alice, numbers[0])
	require.NoError(t, err)
	require.Len(t, o.Items, 1)

	_, err = orders.Get(ctx, bob, numbers[0])
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = orders.Receipt(ctx, bob, numbers[0])
	assert.ErrorIs(t, err, ErrNotFound)

	// a lost receipt is rebuilt from the order
	path := filepath.Join(f.dir, receipt.FileName(numbers[1]))
	require.NoError(t, os.Remove(path))

	body, err := orders.Receipt(ctx, alice, numbers[1])
	require.NoError(t, err)
	assert.Contains(t, string(body), numbers[1])
	assert.Contains(t, string(body), "1 pcs × 100.00 = 100.00")
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOrders_RegenerateReceipts(t *testing.T) {
	t.Parallel()

	f := newCheckoutFixture(t)
	ctx := context.Background()
	p := dbtest.Product(t, f.gdb, "Oxford", "100.00", 10)

	_, err := f.cart.Add(ctx, alice, p.ID, "", 2)
	require.NoError(t, err)
	res, err := f.checkout.Checkout(ctx, alice, validRequest())
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := receipt.NewStore(dir)
	require.NoError(t, err)
	orders := &OrderService{Repo: f.checkout.Repo, Receipts: &ReceiptIssuer{Store: store, StoreName: "TEST"}}

	n, err := orders.RegenerateReceipts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	body, err := store.Open(res.OrderNumber)
	require.NoError(t, err)
	assert.Contains(t, string(body), "TEST")

	_, err = orders.RegenerateReceipts(ctx, []string{"ORD-missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}
