package numbering

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_numbering_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Counter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// sqlite allows one writer; funnel concurrent tests through a single conn.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db
}

func TestNextIsMonotonicPerOwnerAndKind(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{Log: zap.NewNop()})
	ownerID := node.Generate()
	at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	var orders []string
	for i := 0; i < 3; i++ {
		num, err := svc.Next(ctx, db, ownerID, KindOrder, at)
		require.NoError(t, err)
		orders = append(orders, num)
	}
	assert.Equal(t, []string{"ORD/2603/0001", "ORD/2603/0002", "ORD/2603/0003"}, orders)

	// Sequences are independent per kind.
	num, err := svc.Next(ctx, db, ownerID, KindInvoice, at)
	require.NoError(t, err)
	assert.Equal(t, "INV/260315/0001", num)

	// And independent per owner.
	num, err = svc.Next(ctx, db, node.Generate(), KindOrder, at)
	require.NoError(t, err)
	assert.Equal(t, "ORD/2603/0001", num)
}

func TestNextRejectsZeroOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := New(Params{Log: zap.NewNop()})

	_, err := svc.Next(context.Background(), db, 0, KindOrder, time.Now())
	assert.ErrorIs(t, err, ErrInvalidOwner)
}

func TestNextConcurrentAllocationsAreDistinct(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := New(Params{Log: zap.NewNop()})
	ownerID := node.Generate()
	at := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	const n = 50
	results := make(chan string, n)
	errs := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.Next(ctx, db, ownerID, KindOrder, at)
			if err != nil {
				errs <- err
				return
			}
			results <- num
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent next: %v", err)
	}

	seen := make(map[string]bool, n)
	for num := range results {
		if seen[num] {
			t.Fatalf("duplicate document number %s", num)
		}
		seen[num] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen[fmt.Sprintf("ORD/2606/%04d", n)])
}
