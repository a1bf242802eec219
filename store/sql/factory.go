package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-confirm/core"
)

type RepositoryFactory struct {
	db *bun.DB

	transactionStore *TransactionStore
	profileStore     *ProfileStore
	proofFileStore   *ProofFileStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.transactionStore != nil && f.profileStore != nil && f.proofFileStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) TransactionStore() core.TransactionStore {
	if f == nil {
		return nil
	}
	return f.transactionStore
}

func (f *RepositoryFactory) ProfileStore() core.ProfileStore {
	if f == nil {
		return nil
	}
	return f.profileStore
}

func (f *RepositoryFactory) ProofFileStore() core.ProofFileStore {
	if f == nil {
		return nil
	}
	return f.proofFileStore
}

// Transactions exposes the concrete store for hosts that need the seeding
// helpers outside the core contracts.
func (f *RepositoryFactory) Transactions() *TransactionStore {
	if f == nil {
		return nil
	}
	return f.transactionStore
}

func (f *RepositoryFactory) Profiles() *ProfileStore {
	if f == nil {
		return nil
	}
	return f.profileStore
}

func (f *RepositoryFactory) ProofFiles() *ProofFileStore {
	if f == nil {
		return nil
	}
	return f.proofFileStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	transactionStore, err := NewTransactionStore(f.db)
	if err != nil {
		return err
	}
	f.transactionStore = transactionStore

	profileStore, err := NewProfileStore(f.db)
	if err != nil {
		return err
	}
	f.profileStore = profileStore

	proofFileStore, err := NewProofFileStore(f.db)
	if err != nil {
		return err
	}
	f.proofFileStore = proofFileStore

	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

var _ core.StoreProvider = (*RepositoryFactory)(nil)
