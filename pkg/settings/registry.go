package settings

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Registry holds the zone settings that can be selected by name.
type Registry struct {
	mu       sync.RWMutex
	settings map[string]Setting
}

// NewRegistry creates an empty settings registry
func NewRegistry() *Registry {
	return &Registry{
		settings: make(map[string]Setting),
	}
}

// NewDefaultRegistry registers every built-in setting, using sslCA as the
// Universal SSL certificate authority.
func NewDefaultRegistry(ctx context.Context, sslCA string) (*Registry, error) {
	sslSetting, err := SSLCertificateAuthority(sslCA)
	if err != nil {
		return nil, err
	}

	r := NewRegistry()
	for _, s := range []Setting{sslSetting, TieredCacheSmartTopology(), SSLRecommendationStrict()} {
		if err := r.Register(ctx, s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a setting under its name
func (r *Registry) Register(ctx context.Context, s Setting) error {
	tracer := otel.Tracer("cfzones")
	_, span := tracer.Start(ctx, "settings.Register")
	defer span.End()

	span.SetAttributes(attribute.String("setting.name", s.Name))

	if s.Name == "" || s.Path == "" {
		err := fmt.Errorf("setting name and path are required")
		span.RecordError(err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[s.Name]; exists {
		err := fmt.Errorf("setting %q is already registered", s.Name)
		span.RecordError(err)
		return err
	}

	r.settings[s.Name] = s
	return nil
}

// Get retrieves a setting by name
func (r *Registry) Get(ctx context.Context, name string) (Setting, error) {
	tracer := otel.Tracer("cfzones")
	_, span := tracer.Start(ctx, "settings.Get")
	defer span.End()

	span.SetAttributes(attribute.String("setting.name", name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.settings[name]
	if !exists {
		err := fmt.Errorf("setting %q is not registered", name)
		span.RecordError(err)
		return Setting{}, err
	}

	return s, nil
}

// Resolve returns the settings for names, in the given order.
func (r *Registry) Resolve(ctx context.Context, names []string) ([]Setting, error) {
	resolved := make([]Setting, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("setting %q listed more than once", name)
		}
		seen[name] = true

		s, err := r.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, s)
	}

	return resolved, nil
}

// List returns all registered setting names, sorted
func (r *Registry) List(ctx context.Context) []string {
	tracer := otel.Tracer("cfzones")
	_, span := tracer.Start(ctx, "settings.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.settings))
	for name := range r.settings {
		names = append(names, name)
	}
	sort.Strings(names)

	span.SetAttributes(attribute.Int("setting.count", len(names)))

	return names
}
