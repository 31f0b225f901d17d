package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/types"
)

func openRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	ddl := []string{
		`CREATE TABLE "cart" (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			lines TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE "clothing_item" (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price_cents INTEGER NOT NULL,
			image_url TEXT,
			sizes TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		if err := gdb.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return gdb
}

func repoTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestCartRepo_GetByUserID_NoRow(t *testing.T) {
	repo := NewCartRepo(openRepoTestDB(t), repoTestLogger(t))

	_, err := repo.GetByUserID(context.Background(), nil, uuid.New())
	if !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartRepo_SaveRoundTrip(t *testing.T) {
	repo := NewCartRepo(openRepoTestDB(t), repoTestLogger(t))
	userID := uuid.New()
	itemID := uuid.New()

	cart := &types.Cart{
		UserID: userID,
		Lines: datatypes.NewJSONType([]types.CartLine{
			{ItemID: itemID, Size: "M", Quantity: 2},
		}),
	}
	if err := repo.Save(context.Background(), nil, cart); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if cart.ID == uuid.Nil {
		t.Fatal("Save should assign an ID to a new cart")
	}

	got, err := repo.GetByUserID(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	lines := got.Lines.Data()
	if len(lines) != 1 || lines[0].ItemID != itemID || lines[0].Size != "M" || lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", lines)
	}

	// Mutate and save again; the whole document is replaced.
	lines[0].Quantity = 5
	got.Lines = datatypes.NewJSONType(lines)
	if err := repo.Save(context.Background(), nil, got); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	again, err := repo.GetByUserID(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("GetByUserID after update: %v", err)
	}
	if again.ID != got.ID {
		t.Fatalf("update must not create a new row: %s vs %s", again.ID, got.ID)
	}
	if q := again.Lines.Data()[0].Quantity; q != 5 {
		t.Fatalf("expected quantity 5, got %d", q)
	}
}

func TestClothingRepo_ListAndLookup(t *testing.T) {
	gdb := openRepoTestDB(t)
	repo := NewClothingRepo(gdb, repoTestLogger(t))

	first := &types.ClothingItem{
		ID:    uuid.New(),
		Name:  "denim jacket",
		Price: 12900,
		Sizes: datatypes.NewJSONType([]string{"S", "M", "L"}),
	}
	second := &types.ClothingItem{
		ID:    uuid.New(),
		Name:  "linen shirt",
		Price: 5900,
		Sizes: datatypes.NewJSONType([]string{"M"}),
	}
	if _, err := repo.Create(context.Background(), nil, []*types.ClothingItem{first, second}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := repo.ListAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}

	found, err := repo.GetByIDs(context.Background(), nil, []uuid.UUID{second.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(found) != 1 || found[0].Name != "linen shirt" {
		t.Fatalf("unexpected lookup result: %+v", found)
	}
	if !found[0].HasSize("M") || found[0].HasSize("XL") {
		t.Fatal("HasSize mismatch")
	}
}
