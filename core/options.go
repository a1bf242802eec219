package core

import (
	"context"
	"fmt"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig    Config
	logger           Logger
	loggerProvider   LoggerProvider
	errorFactory     ErrorFactory
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
	identityVerifier IdentityVerifier
	tokenEngine      TokenEngine
	secretProvider   SecretProvider
	storeProvider    StoreProvider
	transactionStore TransactionStore
	profileStore     ProfileStore
	proofFileStore   ProofFileStore
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithIdentityVerifier(verifier IdentityVerifier) Option {
	return func(b *serviceBuilder) {
		b.identityVerifier = verifier
	}
}

func WithTokenEngine(engine TokenEngine) Option {
	return func(b *serviceBuilder) {
		b.tokenEngine = engine
	}
}

func WithSecretProvider(provider SecretProvider) Option {
	return func(b *serviceBuilder) {
		b.secretProvider = provider
	}
}

func WithStoreProvider(provider StoreProvider) Option {
	return func(b *serviceBuilder) {
		b.storeProvider = provider
	}
}

func WithTransactionStore(store TransactionStore) Option {
	return func(b *serviceBuilder) {
		b.transactionStore = store
	}
}

func WithProfileStore(store ProfileStore) Option {
	return func(b *serviceBuilder) {
		b.profileStore = store
	}
}

func WithProofFileStore(store ProofFileStore) Option {
	return func(b *serviceBuilder) {
		b.proofFileStore = store
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("confirm", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		errorFactory:    goerrors.New,
		errorMapper:     confirmErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	setLayerValue(layer, "service_name", cfg.ServiceName, includeZero)
	setLayerValue(layer, "base_url", cfg.BaseURL, includeZero)
	setLayerValue(layer, "signing_secret", cfg.SigningSecret, includeZero)
	if includeZero || cfg.TokenTTL > 0 {
		layer["token_ttl"] = cfg.TokenTTL
	}

	verifier := map[string]any{}
	setLayerValue(verifier, "endpoint", cfg.Verifier.Endpoint, includeZero)
	setLayerValue(verifier, "api_key", cfg.Verifier.APIKey, includeZero)
	if includeZero || cfg.Verifier.Timeout > 0 {
		verifier["timeout"] = cfg.Verifier.Timeout
	}
	if len(verifier) > 0 {
		layer["verifier"] = verifier
	}

	upload := map[string]any{}
	if includeZero || cfg.Upload.MaxBytes > 0 {
		upload["max_bytes"] = cfg.Upload.MaxBytes
	}
	if includeZero || len(cfg.Upload.AllowedTypes) > 0 {
		upload["allowed_types"] = append([]string(nil), cfg.Upload.AllowedTypes...)
	}
	if len(upload) > 0 {
		layer["upload"] = upload
	}

	return layer
}

func setLayerValue(layer map[string]any, key string, value string, includeZero bool) {
	if includeZero || value != "" {
		layer[key] = value
	}
}
