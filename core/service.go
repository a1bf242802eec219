package core

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service wires the authorization guard, the token engine and the upload
// policy around the store and verifier collaborators. It holds no mutable
// cross-request state: everything durable lives in the stores and is read
// fresh per request.
type Service struct {
	config           Config
	logger           Logger
	loggerProvider   LoggerProvider
	errorFactory     ErrorFactory
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
	identityVerifier IdentityVerifier
	tokenEngine      TokenEngine
	uploadPolicy     UploadPolicy
	secretProvider   SecretProvider
	transactionStore TransactionStore
	profileStore     ProfileStore
	proofFileStore   ProofFileStore
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("confirm", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("confirm"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.errorMapper == nil {
		builder.errorMapper = confirmErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.storeProvider != nil {
		if builder.transactionStore == nil {
			builder.transactionStore = builder.storeProvider.TransactionStore()
		}
		if builder.profileStore == nil {
			builder.profileStore = builder.storeProvider.ProfileStore()
		}
		if builder.proofFileStore == nil {
			builder.proofFileStore = builder.storeProvider.ProofFileStore()
		}
	}

	tokenEngine := builder.tokenEngine
	if tokenEngine == nil {
		engine, engineErr := NewHS256TokenEngine(
			finalConfig.SigningSecret,
			WithTokenValidity(finalConfig.TokenTTL),
		)
		if engineErr != nil {
			return nil, mapBuildError(builder.errorMapper, engineErr)
		}
		tokenEngine = engine
	}

	return &Service{
		config:           finalConfig,
		logger:           logger,
		loggerProvider:   provider,
		errorFactory:     builder.errorFactory,
		errorMapper:      builder.errorMapper,
		configProvider:   builder.configProvider,
		optionsResolver:  builder.optionsResolver,
		identityVerifier: builder.identityVerifier,
		tokenEngine:      tokenEngine,
		uploadPolicy:     NewUploadPolicy(finalConfig.Upload),
		secretProvider:   builder.secretProvider,
		transactionStore: builder.transactionStore,
		profileStore:     builder.profileStore,
		proofFileStore:   builder.proofFileStore,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return confirmErrorMapper(err)
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper != nil {
		if mapped := mapper(err); mapped != nil {
			return mapped
		}
	}
	return confirmErrorMapper(err)
}
