package ports

import (
	"context"

	"github.com/loomworks/weft/internal/domain"
)

// NodeTypeRegistry holds registered node type definitions. Read paths block
// until built-in loading has completed, so a lookup issued immediately after
// process start never reports a false "not found".
type NodeTypeRegistry interface {
	Register(def *domain.NodeTypeDefinition) error
	Unregister(typeName string) error
	SetActive(typeName string, active bool) error

	Get(ctx context.Context, typeName string) (*domain.NodeTypeDefinition, error)
	Active(ctx context.Context, typeName string) (bool, error)
	ResolveSchema(ctx context.Context, typeName string, parameters map[string]interface{}) ([]domain.PropertyDescriptor, error)

	Has(typeName string) bool
	List() []string
	Count() int
}
