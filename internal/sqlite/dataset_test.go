package sqlite

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

func TestDataset_AppendFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, testConfig(dir))
	stock := openDataset(t, b, types.DatasetStock)

	require.NoError(t, stock.Append(types.Record{
		types.ColBarcode:      "6001",
		types.ColProductName:  "USB-C Cable",
		types.ColSellingPrice: "25.50",
	}))

	rows, err := stock.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 25.5, rows[0][types.ColSellingPrice])
	assert.Equal(t, 0.0, rows[0][types.ColStock])
	assert.Equal(t, types.DefaultMinStock, rows[0][types.ColMinStock])
	assert.Equal(t, "N/A", rows[0][types.ColCategory])
	assert.Equal(t, "", rows[0][types.ColImageURL])

	assert.Contains(t, readFile(t, dir, "stock.csv"), "6001,USB-C Cable,N/A,25.5,0,5,,\n")
}

func TestDataset_AppendValidation(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	stock := openDataset(t, b, types.DatasetStock)

	err := stock.Append(types.Record{"Colour": "red"})
	assert.ErrorIs(t, err, types.ErrUnknownColumn)

	err = stock.Append(types.Record{types.ColStock: "plenty"})
	assert.ErrorIs(t, err, types.ErrInvalidRecord)

	rows, err := stock.Fetch(nil)
	require.NoError(t, err)
	assert.Empty(t, rows, "rejected records are not stored")
}

func TestDataset_AppendNormalizesIdentity(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	users := openDataset(t, b, types.DatasetUsers)

	require.NoError(t, users.Append(types.Record{types.ColUsername: "  kofi ", types.ColPassword: "x"}))

	rows, err := users.Fetch(map[string]any{types.ColUsername: "Kofi"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "KOFI", rows[0][types.ColUsername])
	assert.Equal(t, types.RoleStaff, rows[0][types.ColRole])
}

func TestDataset_FetchFilters(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	stock := openDataset(t, b, types.DatasetStock)
	for _, rec := range []types.Record{
		{types.ColBarcode: "A", types.ColCategory: "Phones", types.ColStock: 3},
		{types.ColBarcode: "B", types.ColCategory: "Phones", types.ColStock: 10},
		{types.ColBarcode: "C", types.ColCategory: "Cables", types.ColStock: 3},
	} {
		require.NoError(t, stock.Append(rec))
	}

	tests := []struct {
		name   string
		filter map[string]any
		want   []string
	}{
		{"no filter", nil, []string{"A", "B", "C"}},
		{"text", map[string]any{types.ColCategory: "Phones"}, []string{"A", "B"}},
		{"numeric as string", map[string]any{types.ColStock: "3.0"}, []string{"A", "C"}},
		{"combined", map[string]any{types.ColCategory: "Phones", types.ColStock: 3}, []string{"A"}},
		{"no match", map[string]any{types.ColCategory: "Laptops"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := stock.Fetch(tt.filter)
			require.NoError(t, err)
			var got []string
			for _, r := range rows {
				got = append(got, r[types.ColBarcode].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := stock.Fetch(map[string]any{"Colour": "red"})
	assert.ErrorIs(t, err, types.ErrUnknownColumn)
}

func TestDataset_FetchReturnsCopies(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	stock := openDataset(t, b, types.DatasetStock)
	require.NoError(t, stock.Append(types.Record{types.ColBarcode: "A"}))

	rows, err := stock.Fetch(nil)
	require.NoError(t, err)
	rows[0][types.ColBarcode] = "mutated"

	rows, err = stock.Fetch(nil)
	require.NoError(t, err)
	assert.Equal(t, "A", rows[0][types.ColBarcode])
}

func TestDataset_UpdateAndDelete(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, testConfig(dir))
	repairs := openDataset(t, b, types.DatasetRepairs)
	require.NoError(t, repairs.Append(types.Record{types.ColRepairID: "REP-1", types.ColDevice: "Phone"}))
	require.NoError(t, repairs.Append(types.Record{types.ColRepairID: "REP-2", types.ColDevice: "Tablet"}))

	n, err := repairs.Update(map[string]any{types.ColRepairID: "REP-1"},
		types.Record{types.ColStatus: "Fixed", types.ColPrice: "80"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := repairs.Fetch(map[string]any{types.ColStatus: "Fixed"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 80.0, rows[0][types.ColPrice])

	n, err = repairs.Update(map[string]any{types.ColRepairID: "REP-9"}, types.Record{types.ColStatus: "Fixed"})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repairs.Update(nil, types.Record{types.ColPrice: "free"})
	assert.ErrorIs(t, err, types.ErrInvalidRecord)

	n, err = repairs.Delete(map[string]any{types.ColDevice: "Tablet"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, readFile(t, dir, "repairs.csv"), "REP-2")
}

func TestDataset_Reset(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, testConfig(dir))

	stock := openDataset(t, b, types.DatasetStock)
	require.NoError(t, stock.Append(types.Record{types.ColBarcode: "A"}))
	require.NoError(t, stock.Reset())
	rows, err := stock.Fetch(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	users := openDataset(t, b, types.DatasetUsers)
	require.NoError(t, users.Append(types.Record{types.ColUsername: "kofi"}))
	require.NoError(t, users.Reset())
	rows, err = users.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, rows, 1, "reset users keeps only the administrator")
	assert.Equal(t, "ADMIN", rows[0][types.ColUsername])
}

func TestDataset_ExternalEditsAreSeen(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, testConfig(dir))

	writeFile(t, dir, "stock.csv", "Barcode,Stock\nZ9,2\n")

	rows, err := openDataset(t, b, types.DatasetStock).Fetch(map[string]any{types.ColBarcode: "Z9"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0][types.ColStock])
	assert.True(t, strings.HasPrefix(readFile(t, dir, "stock.csv"), "Barcode,Stock,Product Name"))
}

func TestDataset_ConcurrentAppendsLoseNothing(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	sales := openDataset(t, b, types.DatasetSales)

	const workers, perWorker = 8, 10
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				errs <- sales.Append(types.Record{
					types.ColInvoiceID: fmt.Sprintf("INV-%d-%d", w, i),
					types.ColTotal:     1,
				})
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows, err := sales.Fetch(nil)
	require.NoError(t, err)
	assert.Len(t, rows, workers*perWorker)

	sum, err := b.SalesSummary()
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, sum.Count)
}

func TestDataset_AppendBatchIsAllOrNothing(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	stock := openDataset(t, b, types.DatasetStock)

	err := stock.Append(
		types.Record{types.ColBarcode: "A", types.ColStock: 1},
		types.Record{types.ColBarcode: "B", types.ColStock: "lots"},
	)
	assert.ErrorIs(t, err, types.ErrInvalidRecord)
	rows, err := stock.Fetch(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, stock.Append(
		types.Record{types.ColBarcode: "A", types.ColStock: 1},
		types.Record{types.ColBarcode: "B", types.ColStock: 2},
	))
	rows, err = stock.Fetch(nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDataset_Adjust(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	stock := openDataset(t, b, types.DatasetStock)
	require.NoError(t, stock.Append(types.Record{types.ColBarcode: "A", types.ColStock: 10}))

	n, err := stock.Adjust(map[string]any{types.ColBarcode: "A"}, types.ColStock, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = stock.Adjust(map[string]any{types.ColBarcode: "Z"}, types.ColStock, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = stock.Adjust(nil, types.ColProductName, 1)
	assert.ErrorIs(t, err, types.ErrInvalidRecord)

	rows, err := stock.Fetch(map[string]any{types.ColBarcode: "A"})
	require.NoError(t, err)
	assert.Equal(t, 7.0, rows[0][types.ColStock])
}

func TestDataset_ConcurrentAdjustsLoseNothing(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	stock := openDataset(t, b, types.DatasetStock)
	require.NoError(t, stock.Append(types.Record{types.ColBarcode: "A", types.ColStock: 100}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := stock.Adjust(map[string]any{types.ColBarcode: "A"}, types.ColStock, -1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows, err := stock.Fetch(map[string]any{types.ColBarcode: "A"})
	require.NoError(t, err)
	assert.Equal(t, 80.0, rows[0][types.ColStock])
}

func TestDataset_AppendUnique(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	users := openDataset(t, b, types.DatasetUsers)

	require.NoError(t, users.AppendUnique(types.ColUsername, types.Record{types.ColUsername: " ama "}))
	err := users.AppendUnique(types.ColUsername, types.Record{types.ColUsername: "AMA"})
	assert.ErrorIs(t, err, types.ErrDuplicateKey)
	assert.ErrorIs(t, err, types.ErrInvalidRecord)

	err = users.AppendUnique("nickname", types.Record{types.ColUsername: "yaw"})
	assert.ErrorIs(t, err, types.ErrUnknownColumn)

	rows, err := users.Fetch(map[string]any{types.ColUsername: "ama"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDataset_ConcurrentAppendUniqueStoresOnce(t *testing.T) {
	b := attach(t, testConfig(t.TempDir()))
	stock := openDataset(t, b, types.DatasetStock)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- stock.AppendUnique(types.ColBarcode, types.Record{types.ColBarcode: "6001"})
		}()
	}
	wg.Wait()
	close(errs)

	var stored int
	for err := range errs {
		if err == nil {
			stored++
			continue
		}
		require.ErrorIs(t, err, types.ErrDuplicateKey)
	}
	assert.Equal(t, 1, stored)

	rows, err := stock.Fetch(map[string]any{types.ColBarcode: "6001"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
