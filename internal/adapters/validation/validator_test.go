package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/weft/internal/domain"
)

func TestValidate_AppliesDefaults(t *testing.T) {
	v := New(nil)
	schema := []domain.PropertyDescriptor{
		{Name: "method", Type: domain.PropertyTypeString, Default: "GET"},
		{Name: "retries", Type: domain.PropertyTypeNumber, Default: 3},
	}

	params, err := v.Validate("n1", schema, map[string]interface{}{"retries": 5})
	require.NoError(t, err)

	assert.Equal(t, "GET", params["method"], "absent field gets the schema default")
	assert.Equal(t, 5, params["retries"], "configured value wins over the default")
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	v := New(nil)
	schema := []domain.PropertyDescriptor{
		{Name: "method", Type: domain.PropertyTypeString, Default: "GET"},
	}
	original := map[string]interface{}{}

	_, err := v.Validate("n1", schema, original)
	require.NoError(t, err)
	assert.Empty(t, original)
}

func TestValidate_Required(t *testing.T) {
	v := New(nil)
	schema := []domain.PropertyDescriptor{
		{Name: "url", Type: domain.PropertyTypeString, Required: true},
	}

	_, err := v.Validate("n1", schema, map[string]interface{}{})
	require.Error(t, err)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "n1", ve.NodeID)
	require.Len(t, ve.Issues, 1)
	assert.Equal(t, "url", ve.Issues[0].Field)
	assert.Equal(t, "required", ve.Issues[0].Rule)
}

func TestValidate_TypeChecks(t *testing.T) {
	v := New(nil)

	cases := []struct {
		name  string
		prop  domain.PropertyDescriptor
		value interface{}
		ok    bool
	}{
		{"string ok", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeString}, "x", true},
		{"string bad", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeString}, 1, false},
		{"number int", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeNumber}, 1, true},
		{"number float", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeNumber}, 1.5, true},
		{"number bad", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeNumber}, "1", false},
		{"boolean ok", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeBoolean}, true, true},
		{"boolean bad", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeBoolean}, "true", false},
		{"options ok", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeOptions, Options: []string{"a", "b"}}, "b", true},
		{"options bad value", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeOptions, Options: []string{"a", "b"}}, "c", false},
		{"options bad type", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeOptions, Options: []string{"a"}}, 1, false},
		{"json anything", domain.PropertyDescriptor{Name: "f", Type: domain.PropertyTypeJSON}, map[string]interface{}{"k": "v"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate("n1", []domain.PropertyDescriptor{tc.prop}, map[string]interface{}{"f": tc.value})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, domain.IsValidation(err))
			}
		})
	}
}

func TestValidate_ReportsAllIssues(t *testing.T) {
	v := New(nil)
	schema := []domain.PropertyDescriptor{
		{Name: "url", Type: domain.PropertyTypeString, Required: true},
		{Name: "timeout", Type: domain.PropertyTypeNumber},
	}

	_, err := v.Validate("n1", schema, map[string]interface{}{"timeout": "soon"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Issues, 2, "every offending field is named, not just the first")
}

func TestValidate_UnknownParametersPassThrough(t *testing.T) {
	v := New(nil)

	params, err := v.Validate("n1", nil, map[string]interface{}{"extra": 42})
	require.NoError(t, err)
	assert.Equal(t, 42, params["extra"])
}
