package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stitchfade/boutique-backend/internal/platform/apierr"
	"github.com/stitchfade/boutique-backend/internal/platform/logger"
	"github.com/stitchfade/boutique-backend/internal/repos"
	"github.com/stitchfade/boutique-backend/internal/requestdata"
	"github.com/stitchfade/boutique-backend/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// sqlite cannot take concurrent writers; one connection serializes.
	sqlDB.SetMaxOpenConns(1)

	ddl := []string{
		`CREATE TABLE "user" (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			gender TEXT,
			photo_url TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE "user_token" (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			access_token TEXT NOT NULL UNIQUE,
			refresh_token TEXT NOT NULL UNIQUE,
			expires_at DATETIME,
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
		`CREATE TABLE "cart" (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			lines TEXT,
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

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func newCartFixture(t *testing.T, strictSizes bool) (CartService, repos.ClothingRepo, *gorm.DB) {
	t.Helper()
	gdb := openTestDB(t)
	log := testLogger(t)
	cartRepo := repos.NewCartRepo(gdb, log)
	clothingRepo := repos.NewClothingRepo(gdb, log)
	svc := NewCartService(gdb, log, cartRepo, clothingRepo, strictSizes)
	return svc, clothingRepo, gdb
}

func seedShirt(t *testing.T, clothingRepo repos.ClothingRepo, name string, sizes ...string) uuid.UUID {
	t.Helper()
	item := &types.ClothingItem{
		ID:       uuid.New(),
		Name:     name,
		Price:    4500,
		ImageURL: "/uploads/" + name + ".png",
		Sizes:    datatypes.NewJSONType(sizes),
	}
	if _, err := clothingRepo.Create(context.Background(), nil, []*types.ClothingItem{item}); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item.ID
}

func authedCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

func TestAddItem_MergesRepeatedPairs(t *testing.T) {
	svc, clothingRepo, _ := newCartFixture(t, false)
	shirtID := seedShirt(t, clothingRepo, "oxford", "M", "L")
	ctx := authedCtx(uuid.New())

	for i := 0; i < 3; i++ {
		if err := svc.AddItem(ctx, shirtID, "M"); err != nil {
			t.Fatalf("AddItem #%d: %v", i+1, err)
		}
	}
	if err := svc.AddItem(ctx, shirtID, "L"); err != nil {
		t.Fatalf("AddItem L: %v", err)
	}

	views, err := svc.GetCart(ctx)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(views), views)
	}
	if views[0].Size != "M" || views[0].Quantity != 3 {
		t.Fatalf("expected first line {M, 3}, got {%s, %d}", views[0].Size, views[0].Quantity)
	}
	if views[1].Size != "L" || views[1].Quantity != 1 {
		t.Fatalf("expected second line {L, 1}, got {%s, %d}", views[1].Size, views[1].Quantity)
	}
	if views[0].Name != "oxford" || views[0].Price != 4500 {
		t.Fatalf("expected enriched catalog fields, got %+v", views[0])
	}
}

func TestAddItem_DistinctSizesStayDistinct(t *testing.T) {
	svc, clothingRepo, _ := newCartFixture(t, false)
	shirtID := seedShirt(t, clothingRepo, "oxford", "M", "L")
	ctx := authedCtx(uuid.New())

	if err := svc.AddItem(ctx, shirtID, "M"); err != nil {
		t.Fatalf("AddItem M: %v", err)
	}
	if err := svc.AddItem(ctx, shirtID, "L"); err != nil {
		t.Fatalf("AddItem L: %v", err)
	}

	views, err := svc.GetCart(ctx)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 distinct lines, got %d", len(views))
	}
}

func TestGetCart_BeforeAnyAddIsEmpty(t *testing.T) {
	svc, _, _ := newCartFixture(t, false)

	views, err := svc.GetCart(authedCtx(uuid.New()))
	if err != nil {
		t.Fatalf("GetCart on missing cart: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty cart, got %+v", views)
	}
}

func TestAddItem_IsolatedPerUser(t *testing.T) {
	svc, clothingRepo, _ := newCartFixture(t, false)
	shirtID := seedShirt(t, clothingRepo, "oxford", "M")
	userA := uuid.New()
	userB := uuid.New()

	if err := svc.AddItem(authedCtx(userA), shirtID, "M"); err != nil {
		t.Fatalf("AddItem for userA: %v", err)
	}

	viewsB, err := svc.GetCart(authedCtx(userB))
	if err != nil {
		t.Fatalf("GetCart for userB: %v", err)
	}
	if len(viewsB) != 0 {
		t.Fatalf("userB cart should be empty, got %+v", viewsB)
	}

	viewsA, err := svc.GetCart(authedCtx(userA))
	if err != nil {
		t.Fatalf("GetCart for userA: %v", err)
	}
	if len(viewsA) != 1 || viewsA[0].Quantity != 1 {
		t.Fatalf("userA cart wrong: %+v", viewsA)
	}
}

func TestAddItem_UnauthenticatedFailsWithoutStateChange(t *testing.T) {
	svc, clothingRepo, gdb := newCartFixture(t, false)
	shirtID := seedShirt(t, clothingRepo, "oxford", "M")

	err := svc.AddItem(context.Background(), shirtID, "M")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != apierr.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}

	var count int64
	if err := gdb.Model(&types.Cart{}).Count(&count).Error; err != nil {
		t.Fatalf("count carts: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no cart rows, got %d", count)
	}

	if _, err := svc.GetCart(context.Background()); err == nil {
		t.Fatal("expected GetCart without identity to fail")
	}
}

func TestAddItem_UnknownItemFails(t *testing.T) {
	svc, _, _ := newCartFixture(t, false)
	ctx := authedCtx(uuid.New())

	err := svc.AddItem(ctx, uuid.New(), "M")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != apierr.CodeItemNotFound {
		t.Fatalf("expected item_not_found, got %v", err)
	}

	views, err := svc.GetCart(ctx)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("failed add must leave no line, got %+v", views)
	}
}

func TestAddItem_SizeValidation(t *testing.T) {
	cases := []struct {
		name     string
		strict   bool
		size     string
		wantCode string
	}{
		{name: "lenient_accepts_any_size", strict: false, size: "XXXL", wantCode: ""},
		{name: "strict_rejects_unknown_size", strict: true, size: "XXXL", wantCode: apierr.CodeValidationFailure},
		{name: "strict_accepts_offered_size", strict: true, size: "M", wantCode: ""},
		{name: "empty_size_always_rejected", strict: false, size: "  ", wantCode: apierr.CodeValidationFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, clothingRepo, _ := newCartFixture(t, tc.strict)
			shirtID := seedShirt(t, clothingRepo, "oxford", "M", "L")

			err := svc.AddItem(authedCtx(uuid.New()), shirtID, tc.size)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			var ae *apierr.Error
			if !errors.As(err, &ae) || ae.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestAddItem_ConcurrentIncrementsAreExact(t *testing.T) {
	svc, clothingRepo, _ := newCartFixture(t, false)
	shirtID := seedShirt(t, clothingRepo, "oxford", "M")
	ctx := authedCtx(uuid.New())

	const n = 25
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return svc.AddItem(ctx, shirtID, "M")
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddItem failed: %v", err)
	}

	views, err := svc.GetCart(ctx)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(views))
	}
	if views[0].Quantity != n {
		t.Fatalf("expected quantity %d, got %d", n, views[0].Quantity)
	}
}

func TestGetCart_KeepsLineWhenItemVanished(t *testing.T) {
	svc, clothingRepo, gdb := newCartFixture(t, false)
	shirtID := seedShirt(t, clothingRepo, "oxford", "M")
	ctx := authedCtx(uuid.New())

	if err := svc.AddItem(ctx, shirtID, "M"); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := gdb.Exec(`DELETE FROM "clothing_item"`).Error; err != nil {
		t.Fatalf("delete items: %v", err)
	}

	views, err := svc.GetCart(ctx)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("line must survive catalog removal, got %+v", views)
	}
	if views[0].Name != "" || views[0].Quantity != 1 {
		t.Fatalf("expected bare line, got %+v", views[0])
	}
}
