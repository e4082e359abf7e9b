package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/readiness"
)

type entry struct {
	def    *domain.NodeTypeDefinition
	active bool
}

// Registry holds the registered node type definitions. Built-in types load
// asynchronously at process start; every read path awaits the readiness gate
// first so an early lookup blocks instead of reporting a false "not found".
type Registry struct {
	mu    sync.RWMutex
	types map[string]*entry

	gate        *readiness.Gate
	loadOnce    sync.Once
	loadTimeout time.Duration

	logger *slog.Logger
}

func New(loadTimeout time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		types:       make(map[string]*entry),
		gate:        readiness.NewGate(),
		loadTimeout: loadTimeout,
		logger:      logger.With("component", "node-type-registry"),
	}
}

// LoadBuiltins registers the definitions produced by source on a background
// goroutine and then opens the readiness gate. Only the first call has any
// effect; concurrent callers never trigger a duplicate load.
func (r *Registry) LoadBuiltins(source func() []*domain.NodeTypeDefinition) {
	r.loadOnce.Do(func() {
		go func() {
			if source != nil {
				for _, def := range source() {
					if err := r.register(def); err != nil {
						r.logger.Error("builtin node type rejected",
							"type_name", defName(def),
							"error", err.Error(),
						)
					}
				}
			}

			r.logger.Debug("builtin node types loaded", "count", r.Count())
			r.gate.Open(nil)
		}()
	})
}

// Ready reports whether builtin loading has completed.
func (r *Registry) Ready() bool {
	return r.gate.IsOpen()
}

func (r *Registry) await(ctx context.Context) error {
	if r.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.loadTimeout)
		defer cancel()
	}
	return r.gate.Wait(ctx)
}

// Register adds or replaces a type by name. Replacement is atomic: readers
// observe either the previous or the new definition, never a mix.
func (r *Registry) Register(def *domain.NodeTypeDefinition) error {
	return r.register(def)
}

func (r *Registry) register(def *domain.NodeTypeDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.types[def.Name]
	r.types[def.Name] = &entry{def: def, active: true}

	r.logger.Debug("node type registered",
		"type_name", def.Name,
		"replaced", replaced,
		"computed_schema", def.Schema.IsComputed(),
		"total_types", len(r.types),
	)
	return nil
}

func (r *Registry) Unregister(typeName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[typeName]; !exists {
		return domain.NewNotFoundError("node type", typeName)
	}

	delete(r.types, typeName)
	r.logger.Debug("node type unregistered", "type_name", typeName, "remaining_types", len(r.types))
	return nil
}

// SetActive toggles whether the type may run in new executions. The
// definition itself is untouched.
func (r *Registry) SetActive(typeName string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.types[typeName]
	if !exists {
		return domain.NewNotFoundError("node type", typeName)
	}

	e.active = active
	r.logger.Debug("node type activation changed", "type_name", typeName, "active", active)
	return nil
}

// Get resolves a type definition, awaiting builtin loading first. Inactive
// types are still returned; activity is a separate question (see Active).
func (r *Registry) Get(ctx context.Context, typeName string) (*domain.NodeTypeDefinition, error) {
	if err := r.await(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.types[typeName]
	if !exists {
		return nil, domain.NewNotFoundError("node type", typeName)
	}
	return e.def, nil
}

// Active reports whether the named type may be used in new executions.
func (r *Registry) Active(ctx context.Context, typeName string) (bool, error) {
	if err := r.await(ctx); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.types[typeName]
	if !exists {
		return false, domain.NewNotFoundError("node type", typeName)
	}
	return e.active, nil
}

// ResolveSchema evaluates the type's property schema against the node's
// currently configured parameters. Computed schemas are evaluated eagerly on
// every call; they are pure functions of their argument, so this is what
// lets visible fields change when the caller picks a different operation.
func (r *Registry) ResolveSchema(ctx context.Context, typeName string, parameters map[string]interface{}) ([]domain.PropertyDescriptor, error) {
	def, err := r.Get(ctx, typeName)
	if err != nil {
		return nil, err
	}

	return def.Schema.Resolve(parameters), nil
}

func (r *Registry) Has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.types[typeName]
	return exists
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

func defName(def *domain.NodeTypeDefinition) string {
	if def == nil {
		return "<nil>"
	}
	return def.Name
}

// validateDefinition accepts schemas expressed as a fixed sequence or as a
// function. A function schema is validated by invoking it with an empty
// parameter set and shape-checking the resulting sequence.
func validateDefinition(def *domain.NodeTypeDefinition) error {
	if def == nil {
		return &domain.RegistrationError{TypeName: "<nil>", Reason: "definition cannot be nil"}
	}
	if def.Name == "" {
		return &domain.RegistrationError{TypeName: def.Name, Reason: "type name cannot be empty"}
	}
	if def.Execute == nil {
		return &domain.RegistrationError{TypeName: def.Name, Reason: "execute operation cannot be nil"}
	}
	if def.Schema.Fixed != nil && def.Schema.Compute != nil {
		return &domain.RegistrationError{TypeName: def.Name, Reason: "schema must be fixed or computed, not both"}
	}

	props := def.Schema.Resolve(map[string]interface{}{})
	if err := validateProperties(props); err != nil {
		return &domain.RegistrationError{TypeName: def.Name, Reason: err.Error()}
	}
	return nil
}

func validateProperties(props []domain.PropertyDescriptor) error {
	seen := make(map[string]struct{}, len(props))
	for i, p := range props {
		if p.Name == "" {
			return fmt.Errorf("property %d has an empty name", i)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("duplicate property name '%s'", p.Name)
		}
		seen[p.Name] = struct{}{}

		switch p.Type {
		case domain.PropertyTypeString, domain.PropertyTypeNumber, domain.PropertyTypeBoolean, domain.PropertyTypeJSON:
		case domain.PropertyTypeOptions:
			if len(p.Options) == 0 {
				return fmt.Errorf("options property '%s' declares no options", p.Name)
			}
		default:
			return fmt.Errorf("property '%s' has unknown type '%s'", p.Name, p.Type)
		}
	}
	return nil
}
