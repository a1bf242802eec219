// Package confirm re-exports the confirmation service surface so hosts can
// depend on a single import path.
package confirm

import "github.com/goliatone/go-confirm/core"

type Config = core.Config
type VerifierConfig = core.VerifierConfig
type UploadConfig = core.UploadConfig

type Option = core.Option

type Service = core.Service

type Principal = core.Principal
type Transaction = core.Transaction
type Profile = core.Profile
type ProofUpload = core.ProofUpload
type ProofReceipt = core.ProofReceipt
type ConfirmationLink = core.ConfirmationLink
type Report = core.Report

type IdentityVerifier = core.IdentityVerifier
type TransactionStore = core.TransactionStore
type ProfileStore = core.ProfileStore
type ProofFileStore = core.ProofFileStore
type TokenEngine = core.TokenEngine
type SecretProvider = core.SecretProvider
type StoreProvider = core.StoreProvider

var (
	WithLogger           = core.WithLogger
	WithLoggerProvider   = core.WithLoggerProvider
	WithErrorFactory     = core.WithErrorFactory
	WithErrorMapper      = core.WithErrorMapper
	WithConfigProvider   = core.WithConfigProvider
	WithOptionsResolver  = core.WithOptionsResolver
	WithIdentityVerifier = core.WithIdentityVerifier
	WithTokenEngine      = core.WithTokenEngine
	WithSecretProvider   = core.WithSecretProvider
	WithStoreProvider    = core.WithStoreProvider
	WithTransactionStore = core.WithTransactionStore
	WithProfileStore     = core.WithProfileStore
	WithProofFileStore   = core.WithProofFileStore
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewService builds the confirmation service from runtime config plus
// functional options.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}
