package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/weft/internal/domain"
)

func noopExecute(_ context.Context, inputs domain.Envelope, _ map[string]interface{}, _ *domain.RunContext) (domain.Envelope, error) {
	return inputs, nil
}

func fixedType(name string, props ...domain.PropertyDescriptor) *domain.NodeTypeDefinition {
	return &domain.NodeTypeDefinition{
		Name:    name,
		Schema:  domain.FixedSchema(props...),
		Execute: noopExecute,
	}
}

func TestRegistry_LookupAwaitsBuiltinLoading(t *testing.T) {
	reg := New(0, nil)

	var initCalls int32
	release := make(chan struct{})

	reg.LoadBuiltins(func() []*domain.NodeTypeDefinition {
		atomic.AddInt32(&initCalls, 1)
		<-release
		return []*domain.NodeTypeDefinition{fixedType("builtin.echo")}
	})

	// Duplicate load requests are single-flight: only the first source runs.
	reg.LoadBuiltins(func() []*domain.NodeTypeDefinition {
		atomic.AddInt32(&initCalls, 1)
		return nil
	})

	const lookups = 20
	results := make(chan error, lookups)
	var wg sync.WaitGroup
	for i := 0; i < lookups; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Get(context.Background(), "builtin.echo")
			results <- err
		}()
	}

	// Let the lookups pile up against the gate before loading completes.
	time.Sleep(20 * time.Millisecond)
	assert.False(t, reg.Ready())
	close(release)
	wg.Wait()

	close(results)
	for err := range results {
		assert.NoError(t, err, "lookup during the initialization window must block, not miss")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&initCalls))
	assert.True(t, reg.Ready())
}

func TestRegistry_NotFoundAfterReady(t *testing.T) {
	reg := New(0, nil)
	reg.LoadBuiltins(nil)

	_, err := reg.Get(context.Background(), "no.such.type")
	assert.True(t, domain.IsNotFound(err))
}

func TestRegistry_LoadTimeout(t *testing.T) {
	reg := New(10*time.Millisecond, nil)
	// Gate never opens: no LoadBuiltins call.

	_, err := reg.Get(context.Background(), "anything")
	assert.Error(t, err)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	reg := New(0, nil)
	reg.LoadBuiltins(nil)
	ctx := context.Background()

	require.NoError(t, reg.Register(fixedType("demo", domain.PropertyDescriptor{Name: "a", Type: domain.PropertyTypeString})))
	require.NoError(t, reg.Register(fixedType("demo", domain.PropertyDescriptor{Name: "b", Type: domain.PropertyTypeString})))

	assert.Equal(t, 1, reg.Count())

	props, err := reg.ResolveSchema(ctx, "demo", nil)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "b", props[0].Name, "replacement swaps the whole definition")
}

func TestRegistry_Unregister(t *testing.T) {
	reg := New(0, nil)
	reg.LoadBuiltins(nil)

	require.NoError(t, reg.Register(fixedType("gone")))
	require.NoError(t, reg.Unregister("gone"))
	assert.False(t, reg.Has("gone"))

	err := reg.Unregister("gone")
	assert.True(t, domain.IsNotFound(err))
}

func TestRegistry_SetActive(t *testing.T) {
	reg := New(0, nil)
	reg.LoadBuiltins(nil)
	ctx := context.Background()

	require.NoError(t, reg.Register(fixedType("toggle")))

	active, err := reg.Active(ctx, "toggle")
	require.NoError(t, err)
	assert.True(t, active, "types start active")

	require.NoError(t, reg.SetActive("toggle", false))
	active, err = reg.Active(ctx, "toggle")
	require.NoError(t, err)
	assert.False(t, active)

	// The definition stays resolvable while inactive.
	_, err = reg.Get(ctx, "toggle")
	assert.NoError(t, err)

	err = reg.SetActive("absent", true)
	assert.True(t, domain.IsNotFound(err))
}

func TestRegistry_ComputedSchemaByOperation(t *testing.T) {
	reg := New(0, nil)
	reg.LoadBuiltins(nil)
	ctx := context.Background()

	def := &domain.NodeTypeDefinition{
		Name: "shaper",
		Schema: domain.ComputedSchema(func(params map[string]interface{}) []domain.PropertyDescriptor {
			props := []domain.PropertyDescriptor{
				{Name: "operation", Type: domain.PropertyTypeOptions, Options: []string{"Transform", "Aggregate"}, Required: true},
			}
			if op, _ := params["operation"].(string); op == "Aggregate" {
				props = append(props,
					domain.PropertyDescriptor{Name: "aggregateField", Type: domain.PropertyTypeString, Required: true},
					domain.PropertyDescriptor{Name: "aggregateOp", Type: domain.PropertyTypeOptions, Options: []string{"Sum", "Count"}},
				)
			}
			return props
		}),
		Execute: noopExecute,
	}
	require.NoError(t, reg.Register(def))

	names := func(props []domain.PropertyDescriptor) []string {
		out := make([]string, len(props))
		for i, p := range props {
			out[i] = p.Name
		}
		return out
	}

	transform, err := reg.ResolveSchema(ctx, "shaper", map[string]interface{}{"operation": "Transform"})
	require.NoError(t, err)
	assert.Equal(t, []string{"operation"}, names(transform), "Aggregate-only fields must not leak into other operations")

	aggregate, err := reg.ResolveSchema(ctx, "shaper", map[string]interface{}{"operation": "Aggregate"})
	require.NoError(t, err)
	assert.Equal(t, []string{"operation", "aggregateField", "aggregateOp"}, names(aggregate))

	// Same parameters, same sequence.
	again, err := reg.ResolveSchema(ctx, "shaper", map[string]interface{}{"operation": "Aggregate"})
	require.NoError(t, err)
	assert.Equal(t, aggregate, again)
}

func TestValidateDefinition(t *testing.T) {
	cases := []struct {
		name string
		def  *domain.NodeTypeDefinition
		ok   bool
	}{
		{"nil definition", nil, false},
		{"empty name", &domain.NodeTypeDefinition{Execute: noopExecute}, false},
		{"nil execute", &domain.NodeTypeDefinition{Name: "x"}, false},
		{"valid fixed", fixedType("x", domain.PropertyDescriptor{Name: "a", Type: domain.PropertyTypeString}), true},
		{
			"valid computed",
			&domain.NodeTypeDefinition{
				Name: "x",
				Schema: domain.ComputedSchema(func(map[string]interface{}) []domain.PropertyDescriptor {
					return []domain.PropertyDescriptor{{Name: "a", Type: domain.PropertyTypeString}}
				}),
				Execute: noopExecute,
			},
			true,
		},
		{
			"both schema variants",
			&domain.NodeTypeDefinition{
				Name: "x",
				Schema: domain.Schema{
					Fixed:   []domain.PropertyDescriptor{{Name: "a", Type: domain.PropertyTypeString}},
					Compute: func(map[string]interface{}) []domain.PropertyDescriptor { return nil },
				},
				Execute: noopExecute,
			},
			false,
		},
		{"duplicate property", fixedType("x",
			domain.PropertyDescriptor{Name: "a", Type: domain.PropertyTypeString},
			domain.PropertyDescriptor{Name: "a", Type: domain.PropertyTypeNumber},
		), false},
		{"empty property name", fixedType("x", domain.PropertyDescriptor{Type: domain.PropertyTypeString}), false},
		{"unknown property type", fixedType("x", domain.PropertyDescriptor{Name: "a", Type: "blob"}), false},
		{"options without options", fixedType("x", domain.PropertyDescriptor{Name: "a", Type: domain.PropertyTypeOptions}), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateDefinition(tc.def)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegistry_List(t *testing.T) {
	reg := New(0, nil)
	reg.LoadBuiltins(nil)

	require.NoError(t, reg.Register(fixedType("zeta")))
	require.NoError(t, reg.Register(fixedType("alpha")))

	assert.Equal(t, []string{"alpha", "zeta"}, reg.List())
}
