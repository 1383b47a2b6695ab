package debrid

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"boxstream/models"
)

var (
	// ErrConfigMissing is returned when no account credential is configured.
	ErrConfigMissing = errors.New("content account credential not configured")
	// ErrUpstreamUnavailable is returned for transport failures and
	// non-success responses from the content account.
	ErrUpstreamUnavailable = errors.New("content account unavailable")
)

//go:generate mockgen -destination=mocks/provider_mock.go -package=mocks boxstream/services/debrid Provider

// Provider is the content account the inventory is mirrored from.
type Provider interface {
	// Name returns the provider identifier (e.g., "torbox").
	Name() string

	// ListTorrents returns a fresh snapshot of every torrent in the account,
	// bypassing any server-side cache.
	ListTorrents(ctx context.Context) ([]models.InventoryEntry, error)

	// RequestDownloadLink issues an ephemeral playback URL for a torrent, or
	// for one file of it when fileID is not empty.
	RequestDownloadLink(ctx context.Context, torrentID, fileID string) (string, error)

	// GetAccountInfo returns plan and usage details for the account.
	GetAccountInfo(ctx context.Context) (*models.AccountInfo, error)
}

// Configurable is an optional interface for providers that support runtime configuration.
type Configurable interface {
	// Configure sets provider-specific options from a config map.
	Configure(config map[string]string)
}

// ProviderFactory is a function that creates a new Provider instance with the given API key.
type ProviderFactory func(apiKey string) Provider

// Registry manages registered provider factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

// Register adds a provider factory to the registry.
func (r *Registry) Register(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a provider factory by name and creates a new instance.
func (r *Registry) Get(name, apiKey string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	if !ok {
		return nil, false
	}
	return factory(apiKey), true
}

// MustGet retrieves a provider by name or returns an error.
func (r *Registry) MustGet(name, apiKey string) (Provider, error) {
	p, ok := r.Get(name, apiKey)
	if !ok {
		return nil, fmt.Errorf("provider %q not registered (available: %s)", name, strings.Join(r.List(), ", "))
	}
	return p, nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global provider registry.
var DefaultRegistry = NewRegistry()

// RegisterProvider registers a provider factory with the default registry.
func RegisterProvider(name string, factory ProviderFactory) {
	DefaultRegistry.Register(name, factory)
}

// GetProvider retrieves a provider from the default registry.
func GetProvider(name, apiKey string) (Provider, bool) {
	return DefaultRegistry.Get(name, apiKey)
}
