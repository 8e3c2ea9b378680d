package shoppinglist_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/drstein77/shoppinglist/internal/dbkeeper"
	"github.com/drstein77/shoppinglist/internal/models"
	"github.com/drstein77/shoppinglist/internal/shoppinglist"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func str(s string) *string { return &s }

func testItems() []models.Item {
	return []models.Item{
		{ID: 1, Name: "First Item", Price: "1.00", DateAdded: time.Date(2029, 1, 22, 16, 28, 32, 615000000, time.UTC), Checked: true, Category: "Main"},
		{ID: 2, Name: "Second Item", Price: "2.00", DateAdded: time.Date(2100, 5, 22, 16, 28, 32, 615000000, time.UTC), Checked: false, Category: "Snack"},
		{ID: 3, Name: "Third Item", Price: "3.00", DateAdded: time.Date(1919, 12, 22, 16, 28, 32, 615000000, time.UTC), Checked: true, Category: "Lunch"},
		{ID: 4, Name: "Fourth Item", Price: "4.00", DateAdded: time.Date(1919, 12, 22, 16, 28, 32, 615000000, time.UTC), Checked: false, Category: "Breakfast"},
	}
}

// setupLiveDB connects to TEST_DB_URL, applies migrations and leaves
// shopping_list empty with its id sequence reset before and after the test.
func setupLiveDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL is not set")
	}

	ctx := context.Background()
	keeper, err := dbkeeper.NewDBKeeper(ctx, func() string { return dsn }, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { keeper.Close() })

	require.NoError(t, keeper.Migrate("../../migrations"))

	truncate := func() {
		_, err := keeper.Pool().Exec(ctx, `TRUNCATE shopping_list RESTART IDENTITY`)
		require.NoError(t, err)
	}
	truncate()
	t.Cleanup(truncate)

	return keeper.Pool()
}

func seed(t *testing.T, db *pgxpool.Pool, items []models.Item) {
	t.Helper()
	for _, it := range items {
		_, err := db.Exec(context.Background(),
			`INSERT INTO shopping_list (id, name, price, date_added, checked, category) VALUES ($1, $2, $3::text::numeric, $4, $5, $6)`,
			it.ID, it.Name, it.Price, it.DateAdded, it.Checked, it.Category)
		require.NoError(t, err)
	}
}

func normalize(items ...models.Item) []models.Item {
	for i := range items {
		items[i].DateAdded = items[i].DateAdded.UTC()
	}
	return items
}

func TestLiveWithData(t *testing.T) {
	ctx := context.Background()
	svc := shoppinglist.NewService(zap.NewNop())

	t.Run("GetAllItems resolves every row", func(t *testing.T) {
		db := setupLiveDB(t)
		seed(t, db, testItems())

		items, err := svc.GetAllItems(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, testItems(), normalize(items...))
	})

	t.Run("GetByID resolves an item by id", func(t *testing.T) {
		db := setupLiveDB(t)
		seed(t, db, testItems())

		item, err := svc.GetByID(ctx, db, 3)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, testItems()[2], normalize(*item)[0])

		missing, err := svc.GetByID(ctx, db, 9999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("DeleteItem removes an item by id", func(t *testing.T) {
		db := setupLiveDB(t)
		seed(t, db, testItems())

		n, err := svc.DeleteItem(ctx, db, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		items, err := svc.GetAllItems(ctx, db)
		require.NoError(t, err)

		var expected []models.Item
		for _, it := range testItems() {
			if it.ID != 3 {
				expected = append(expected, it)
			}
		}
		assert.Equal(t, expected, normalize(items...))

		n, err = svc.DeleteItem(ctx, db, 9999)
		require.NoError(t, err)
		assert.Zero(t, n)

		after, err := svc.GetAllItems(ctx, db)
		require.NoError(t, err)
		assert.Len(t, after, len(expected))
	})

	t.Run("UpdateItem replaces every field", func(t *testing.T) {
		db := setupLiveDB(t)
		seed(t, db, testItems())

		fields := models.ItemFields{
			Name:      "updated name",
			Price:     "7.00",
			DateAdded: time.Now().UTC().Truncate(time.Microsecond),
			Checked:   true,
			Category:  "Lunch",
		}
		n, err := svc.UpdateItem(ctx, db, 2, fields)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		item, err := svc.GetByID(ctx, db, 2)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, models.Item{
			ID:        2,
			Name:      fields.Name,
			Price:     fields.Price,
			DateAdded: fields.DateAdded,
			Checked:   fields.Checked,
			Category:  fields.Category,
		}, normalize(*item)[0])

		n, err = svc.UpdateItem(ctx, db, 9999, fields)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestLiveWithoutData(t *testing.T) {
	ctx := context.Background()
	svc := shoppinglist.NewService(zap.NewNop())

	t.Run("GetAllItems resolves an empty slice", func(t *testing.T) {
		db := setupLiveDB(t)

		items, err := svc.GetAllItems(ctx, db)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("InsertItem resolves the new item with an id", func(t *testing.T) {
		db := setupLiveDB(t)
		added := time.Date(1919, 12, 22, 16, 28, 32, 615000000, time.UTC)

		item, err := svc.InsertItem(ctx, db, models.NewItem{
			Name:      str("Inserted Item"),
			Price:     str("27.00"),
			DateAdded: &added,
			Category:  str("Breakfast"),
		})
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, models.Item{
			ID:        1,
			Name:      "Inserted Item",
			Price:     "27.00",
			DateAdded: added,
			Checked:   false,
			Category:  "Breakfast",
		}, normalize(*item)[0])
	})

	t.Run("InsertItem defaults date_added to now", func(t *testing.T) {
		db := setupLiveDB(t)
		before := time.Now().Add(-time.Minute)

		item, err := svc.InsertItem(ctx, db, models.NewItem{Name: str("Bread"), Price: str("2.5"), Category: str("Bakery")})
		require.NoError(t, err)
		assert.Equal(t, "2.50", item.Price)
		assert.True(t, item.DateAdded.After(before))
	})

	t.Run("InsertItem keeps an empty name", func(t *testing.T) {
		db := setupLiveDB(t)

		item, err := svc.InsertItem(ctx, db, models.NewItem{Name: str(""), Price: str("1.00"), Category: str("")})
		require.NoError(t, err)
		assert.Equal(t, "", item.Name)
		assert.Equal(t, "", item.Category)
	})

	t.Run("InsertItem without a category is rejected by the store", func(t *testing.T) {
		db := setupLiveDB(t)

		item, err := svc.InsertItem(ctx, db, models.NewItem{Name: str("Milk"), Price: str("1.00")})
		assert.Nil(t, item)

		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "23502", pgErr.Code)
	})
}
