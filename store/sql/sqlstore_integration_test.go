package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-confirm/core"
	confirmmigrations "github.com/goliatone/go-confirm/migrations"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool                { return false }
func (c testPersistenceConfig) GetDriver() string             { return c.driver }
func (c testPersistenceConfig) GetServer() string             { return c.server }
func (c testPersistenceConfig) GetPingTimeout() time.Duration { return time.Second }
func (c testPersistenceConfig) GetOtelIdentifier() string     { return "go-confirm-tests" }

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:confirm-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{driver: "sqlite3", server: dsn}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = confirmmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != confirmmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, confirmmigrations.WithDialects(confirmmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

func newTestFactory(t *testing.T) (*RepositoryFactory, func()) {
	t.Helper()
	client, cleanup := newSQLiteClient(t)
	factory, err := NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		cleanup()
		t.Fatalf("new repository factory: %v", err)
	}
	return factory, cleanup
}

func seedTransaction(t *testing.T, store *TransactionStore, ownerID string) core.Transaction {
	t.Helper()
	txn, err := store.Create(context.Background(), core.Transaction{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Amount:   1500,
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return txn
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{"confirm_transactions", "confirm_profiles", "confirm_proof_files"} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master: %v", err)
		}
		if tableName != table {
			t.Fatalf("expected %s table, got %q", table, tableName)
		}
	}
}

func TestTransactionStore_GetAndNotFound(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	store := factory.Transactions()

	seeded := seedTransaction(t, store, "owner_1")

	loaded, err := store.Get(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if loaded.OwnerID != "owner_1" || loaded.Status != core.TransactionStatusPending {
		t.Fatalf("unexpected row: %#v", loaded)
	}

	_, err = store.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestTransactionStore_SetConfirmationSupersedes(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	store := factory.Transactions()
	ctx := context.Background()

	seeded := seedTransaction(t, store, "owner_1")
	expiry := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	first, err := store.SetConfirmation(ctx, core.SetConfirmationInput{
		TransactionID: seeded.ID,
		Commitment:    "commitment-one",
		ExpiresAt:     expiry,
	})
	if err != nil {
		t.Fatalf("first set confirmation: %v", err)
	}
	if first.TokenCommitment == nil || *first.TokenCommitment != "commitment-one" {
		t.Fatalf("expected commitment-one, got %#v", first.TokenCommitment)
	}

	second, err := store.SetConfirmation(ctx, core.SetConfirmationInput{
		TransactionID: seeded.ID,
		Commitment:    "commitment-two",
		ExpiresAt:     expiry,
	})
	if err != nil {
		t.Fatalf("second set confirmation: %v", err)
	}
	if second.TokenCommitment == nil || *second.TokenCommitment != "commitment-two" {
		t.Fatalf("expected commitment-two, got %#v", second.TokenCommitment)
	}
	if second.TokenUsed {
		t.Fatalf("fresh confirmation must reset used flag")
	}

	// the superseded commitment no longer resolves
	if _, err := store.GetByCommitment(ctx, seeded.ID, "commitment-one"); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected superseded commitment to miss, got %v", err)
	}
	if _, err := store.GetByCommitment(ctx, seeded.ID, "commitment-two"); err != nil {
		t.Fatalf("expected live commitment to resolve: %v", err)
	}

	_, err = store.SetConfirmation(ctx, core.SetConfirmationInput{
		TransactionID: uuid.NewString(),
		Commitment:    "commitment-three",
		ExpiresAt:     expiry,
	})
	if !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound for unknown row, got %v", err)
	}
}

func TestTransactionStore_RedeemConditions(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	store := factory.Transactions()
	ctx := context.Background()

	seeded := seedTransaction(t, store, "owner_1")
	now := time.Now().UTC()

	if _, err := store.SetConfirmation(ctx, core.SetConfirmationInput{
		TransactionID: seeded.ID,
		Commitment:    "commitment-live",
		ExpiresAt:     now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("set confirmation: %v", err)
	}

	redeemed, err := store.Redeem(ctx, core.RedeemAttempt{
		TransactionID: seeded.ID,
		Commitment:    "commitment-wrong",
		Now:           now,
	})
	if err != nil {
		t.Fatalf("redeem with wrong commitment: %v", err)
	}
	if redeemed {
		t.Fatalf("wrong commitment must not redeem")
	}

	redeemed, err = store.Redeem(ctx, core.RedeemAttempt{
		TransactionID: seeded.ID,
		Commitment:    "commitment-live",
		Now:           now,
	})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !redeemed {
		t.Fatalf("expected live token to redeem")
	}

	row, err := store.Get(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if row.Status != core.TransactionStatusVerified || !row.TokenUsed {
		t.Fatalf("expected verified and used row, got %#v", row)
	}

	redeemed, err = store.Redeem(ctx, core.RedeemAttempt{
		TransactionID: seeded.ID,
		Commitment:    "commitment-live",
		Now:           now,
	})
	if err != nil {
		t.Fatalf("second redeem: %v", err)
	}
	if redeemed {
		t.Fatalf("used token must not redeem again")
	}
}

func TestTransactionStore_RedeemRespectsStoredExpiry(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	store := factory.Transactions()
	ctx := context.Background()

	seeded := seedTransaction(t, store, "owner_1")
	now := time.Now().UTC()

	if _, err := store.SetConfirmation(ctx, core.SetConfirmationInput{
		TransactionID: seeded.ID,
		Commitment:    "commitment-stale",
		ExpiresAt:     now.Add(-time.Minute),
	}); err != nil {
		t.Fatalf("set confirmation: %v", err)
	}

	redeemed, err := store.Redeem(ctx, core.RedeemAttempt{
		TransactionID: seeded.ID,
		Commitment:    "commitment-stale",
		Now:           now,
	})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if redeemed {
		t.Fatalf("expired token must not redeem")
	}
}

func TestTransactionStore_ConcurrentRedeemSingleWinner(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	store := factory.Transactions()
	ctx := context.Background()

	seeded := seedTransaction(t, store, "owner_1")
	now := time.Now().UTC()

	if _, err := store.SetConfirmation(ctx, core.SetConfirmationInput{
		TransactionID: seeded.ID,
		Commitment:    "commitment-race",
		ExpiresAt:     now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("set confirmation: %v", err)
	}

	const attempts = 8
	var wg sync.WaitGroup
	wins := make([]bool, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			wins[slot], errs[slot] = store.Redeem(ctx, core.RedeemAttempt{
				TransactionID: seeded.ID,
				Commitment:    "commitment-race",
				Now:           now,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Fatalf("attempt %d: %v", i, errs[i])
		}
		if wins[i] {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning redemption, got %d", winners)
	}
}

func TestTransactionStore_ListVerifiedByOwner(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	store := factory.Transactions()
	ctx := context.Background()

	mine := seedTransaction(t, store, "owner_1")
	seedTransaction(t, store, "owner_1")
	foreign := seedTransaction(t, store, "owner_2")

	markVerified(t, store, mine.ID)
	markVerified(t, store, foreign.ID)

	verified, err := store.ListVerifiedByOwner(ctx, "owner_1")
	if err != nil {
		t.Fatalf("list verified: %v", err)
	}
	if len(verified) != 1 {
		t.Fatalf("expected one verified row, got %d", len(verified))
	}
	if verified[0].ID != mine.ID {
		t.Fatalf("expected %s, got %s", mine.ID, verified[0].ID)
	}
}

func TestProfileStore_UpsertAndGet(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	profiles := factory.Profiles()
	ctx := context.Background()

	_, err := profiles.GetByOwner(ctx, "owner_1")
	if !errors.Is(err, core.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}

	if _, err := profiles.Upsert(ctx, core.Profile{
		OwnerID:      "owner_1",
		BusinessName: "Acme",
		Email:        "acme@example.com",
	}); err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
	if _, err := profiles.Upsert(ctx, core.Profile{
		OwnerID:      "owner_1",
		BusinessName: "Acme Renamed",
		Email:        "acme@example.com",
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	profile, err := profiles.GetByOwner(ctx, "owner_1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.BusinessName != "Acme Renamed" {
		t.Fatalf("expected renamed profile, got %q", profile.BusinessName)
	}
}

func TestProofFileStore_SaveAndList(t *testing.T) {
	factory, cleanup := newTestFactory(t)
	defer cleanup()
	store := factory.Transactions()
	proofs := factory.ProofFiles()
	ctx := context.Background()

	seeded := seedTransaction(t, store, "owner_1")

	receipt, err := proofs.Save(ctx, core.SaveProofInput{
		TransactionID: seeded.ID,
		FileName:      "receipt.png",
		ContentType:   "image/png",
		Size:          4,
		Digest:        "digest-1",
		Payload:       []byte("data"),
	})
	if err != nil {
		t.Fatalf("save proof: %v", err)
	}
	if receipt.ID == "" {
		t.Fatalf("expected generated receipt id")
	}

	receipts, err := proofs.ListByTransaction(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("list proofs: %v", err)
	}
	if len(receipts) != 1 || receipts[0].Digest != "digest-1" {
		t.Fatalf("unexpected receipts: %#v", receipts)
	}
}

func TestRepositoryFactory_BuildStoresResolvesClient(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory := NewRepositoryFactory()
	provider, err := factory.BuildStores(client)
	if err != nil {
		t.Fatalf("build stores: %v", err)
	}
	if provider.TransactionStore() == nil || provider.ProfileStore() == nil || provider.ProofFileStore() == nil {
		t.Fatalf("expected all stores to be built")
	}

	if _, err := factory.BuildStores(nil); err != nil {
		t.Fatalf("expected cached stores on second build, got %v", err)
	}
}

func markVerified(t *testing.T, store *TransactionStore, id string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	if _, err := store.SetConfirmation(ctx, core.SetConfirmationInput{
		TransactionID: id,
		Commitment:    "commitment-" + id,
		ExpiresAt:     now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("set confirmation: %v", err)
	}
	redeemed, err := store.Redeem(ctx, core.RedeemAttempt{
		TransactionID: id,
		Commitment:    "commitment-" + id,
		Now:           now,
	})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !redeemed {
		t.Fatalf("expected redemption to verify %s", id)
	}
}
