package toolsurface

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func TestSchemaValidateRejectsUnknownKey(t *testing.T) {
	s := Schema{"name": {Type: TypeString, Required: true}}
	err := s.Validate(map[string]any{"name": "x", "extra": 1})
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestSchemaValidateRequiresFields(t *testing.T) {
	s := Schema{"name": {Type: TypeString, Required: true}, "note": {Type: TypeString}}
	err := s.Validate(map[string]any{"note": "hi"})
	assert.True(t, types.IsKind(err, types.KindValidation))

	err = s.Validate(map[string]any{"name": "x"})
	assert.NoError(t, err)
}

func TestSchemaJSONSchemaMarksAdditionalPropertiesFalse(t *testing.T) {
	s := Schema{"name": {Type: TypeString, Required: true}}
	out := s.JSONSchema()
	assert.Equal(t, false, out["additionalProperties"])
	assert.Equal(t, []string{"name"}, out["required"])
}

func TestStringSliceArgIgnoresNonStringElements(t *testing.T) {
	args := map[string]any{"tags": []any{"a", 1, "b"}}
	assert.Equal(t, []string{"a", "b"}, StringSliceArg(args, "tags"))
}

func TestIntArgAcceptsJSONFloat(t *testing.T) {
	args := map[string]any{"limit": float64(5)}
	assert.Equal(t, 5, IntArg(args, "limit", 0))
	assert.Equal(t, 9, IntArg(map[string]any{}, "limit", 9))
}
