package task

import (
	"testing"

	"github.com/deppfellow/go-productivity/internal/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskShape(t *testing.T) {
	log := zerolog.Nop()
	p := validation.NewPipeline(&log)
	shape := CreateTaskPayload{}.Shape()

	tests := []struct {
		name    string
		in      map[string]any
		wantErr string
	}{
		{"valid", map[string]any{
			"flow_id":   1.0,
			"name":      "Write report",
			"deadline":  "2026-10-20T09:00:00Z",
			"sub_items": []any{"outline", "draft"},
			"pictures":  []any{"https://example.com/p.png"},
		}, ""},
		{"missing flow", map[string]any{"name": "x"}, "flow_id must be a positive number"},
		{"bad deadline", map[string]any{"flow_id": 1.0, "name": "x", "deadline": "tomorrow"}, "deadline must be an RFC 3339 timestamp"},
		{"sub items not a list", map[string]any{"flow_id": 1.0, "name": "x", "sub_items": "a"}, "sub_items must be a list of at most 50 entries"},
		{"empty sub item", map[string]any{"flow_id": 1.0, "name": "x", "sub_items": []any{"ok", ""}}, "each sub item must be a non-empty text of at most 100 characters"},
		{"bad picture", map[string]any{"flow_id": 1.0, "name": "x", "pictures": []any{"nope"}}, "each picture must be a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Transform(tt.in, shape)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, "Validation failed: "+tt.wantErr, err.Error())
		})
	}
}

func TestUpdateTaskShape(t *testing.T) {
	log := zerolog.Nop()
	p := validation.NewPipeline(&log)

	_, err := p.Transform(map[string]any{"id": "4", "complete": true}, UpdateTaskPayload{}.Shape())
	assert.NoError(t, err)

	_, err = p.Transform(map[string]any{"id": "4", "complete": "yes"}, UpdateTaskPayload{}.Shape())
	require.Error(t, err)
	assert.Equal(t, "Validation failed: complete must be a boolean", err.Error())
}

func TestTaskShapes_SortRange(t *testing.T) {
	log := zerolog.Nop()
	p := validation.NewPipeline(&log)
	const msg = "Validation failed: sort must be a number between -2147483648 and 2147483647"

	_, err := p.Transform(map[string]any{"flow_id": 1.0, "name": "x", "sort": 3e9}, CreateTaskPayload{}.Shape())
	require.Error(t, err)
	assert.Equal(t, msg, err.Error())

	_, err = p.Transform(map[string]any{"id": "4", "sort": -2147483649.0}, UpdateTaskPayload{}.Shape())
	require.Error(t, err)
	assert.Equal(t, msg, err.Error())

	_, err = p.Transform(map[string]any{"id": "4", "sort": "12"}, UpdateTaskPayload{}.Shape())
	assert.NoError(t, err)
}
