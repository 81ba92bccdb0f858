package toolsurface

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

func echoTool() Tool {
	return Tool{
		Name:   "echo",
		Schema: Schema{"value": {Type: TypeString, Required: true}},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return args["value"], nil
		},
	}
}

func TestDispatcherCallRunsRegisteredHandler(t *testing.T) {
	d := NewDispatcher()
	d.Register(echoTool())

	out, err := d.Call(context.Background(), "echo", map[string]any{"value": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestDispatcherCallUnknownToolIsToolNotFound(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Call(context.Background(), "create_status", nil)
	assert.True(t, types.IsKind(err, types.KindToolNotFound))
}

func TestDispatcherCallValidatesBeforeInvokingHandler(t *testing.T) {
	d := NewDispatcher()
	d.Register(echoTool())

	_, err := d.Call(context.Background(), "echo", map[string]any{"unexpected": true})
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestDispatcherRegisterPanicsOnDuplicateName(t *testing.T) {
	d := NewDispatcher()
	d.Register(echoTool())
	assert.Panics(t, func() { d.Register(echoTool()) })
}

func TestDispatcherListIsSortedByName(t *testing.T) {
	d := NewDispatcher()
	d.Register(Tool{Name: "zeta", Schema: Schema{}, Handler: func(context.Context, map[string]any) (any, error) { return nil, nil }})
	d.Register(Tool{Name: "alpha", Schema: Schema{}, Handler: func(context.Context, map[string]any) (any, error) { return nil, nil }})

	names := make([]string, 0, 2)
	for _, tool := range d.List() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}
