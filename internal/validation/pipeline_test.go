package validation

import (
	"bytes"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/deppfellow/go-productivity/internal/errs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var titleShape = NewShape("CreateNote",
	Rule{Field: "title", Tag: "required,is_string", Message: "title must not be empty"},
	Rule{Field: "title", Tag: "max=100", Message: "title must not exceed 100 characters"},
	Rule{Field: "content", Tag: "required,is_string", Message: "content must not be empty"},
)

func newTestPipeline(t *testing.T) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	return NewPipeline(&log), &buf
}

func TestTransform_PrimitiveShapesPassThrough(t *testing.T) {
	p, logs := newTestPipeline(t)

	candidates := []any{"anything", 42.0, true, []any{1, "x"}, map[string]any{"title": ""}, nil}
	for _, shape := range []*Shape{nil, String, Boolean, Number, Array, Object} {
		for _, c := range candidates {
			got, err := p.Transform(c, shape)
			require.NoError(t, err)
			assert.Equal(t, c, got)
		}
	}

	assert.Empty(t, logs.String())
}

func TestTransform_StringShapeAcceptsAnything(t *testing.T) {
	p, _ := newTestPipeline(t)

	got, err := p.Transform("anything", String)

	require.NoError(t, err)
	assert.Equal(t, "anything", got)
}

func TestTransform_RejectsEmptyTitle(t *testing.T) {
	p, logs := newTestPipeline(t)

	got, err := p.Transform(map[string]any{"title": "", "content": "hello"}, titleShape)

	assert.Nil(t, got)
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Validation failed: title must not be empty", httpErr.Message)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"level":"error"`)
	assert.Contains(t, lines[0], "title must not be empty")
}

func TestReject_SingleCallerField(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).With().Str("module", "ValidationPipe").Caller().Logger()
	p := NewPipeline(&log)

	err := p.Reject(titleShape, "title must not be empty")

	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), `"caller"`))
	assert.Contains(t, buf.String(), `"shape":"`+titleShape.Name+`"`)
}

func TestTransform_FirstViolatedFieldInDeclarationOrder(t *testing.T) {
	p, _ := newTestPipeline(t)

	// Both fields fail; title is declared first.
	_, err := p.Transform(map[string]any{"content": ""}, titleShape)
	require.Error(t, err)
	assert.Equal(t, "Validation failed: title must not be empty", err.Error())

	// Only content fails.
	_, err = p.Transform(map[string]any{"title": "ok"}, titleShape)
	require.Error(t, err)
	assert.Equal(t, "Validation failed: content must not be empty", err.Error())

	// Second rule of the first field.
	_, err = p.Transform(map[string]any{"title": strings.Repeat("a", 101), "content": ""}, titleShape)
	require.Error(t, err)
	assert.Equal(t, "Validation failed: title must not exceed 100 characters", err.Error())
}

func TestTransform_AcceptsOriginalReference(t *testing.T) {
	p, logs := newTestPipeline(t)
	candidate := map[string]any{"title": "Groceries", "content": "milk", "extra": 1}

	got, err := p.Transform(candidate, titleShape)

	require.NoError(t, err)
	gotMap, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, reflect.ValueOf(candidate).Pointer(), reflect.ValueOf(gotMap).Pointer())
	assert.Contains(t, gotMap, "extra")
	assert.Empty(t, logs.String())
}

func TestTransform_Idempotent(t *testing.T) {
	p, _ := newTestPipeline(t)
	candidate := map[string]any{"title": "a", "content": "b"}

	once, err := p.Transform(candidate, titleShape)
	require.NoError(t, err)
	twice, err := p.Transform(once, titleShape)
	require.NoError(t, err)

	assert.Equal(t, reflect.ValueOf(candidate).Pointer(), reflect.ValueOf(twice).Pointer())
}

func TestTransform_StructCandidate(t *testing.T) {
	type note struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	p, _ := newTestPipeline(t)

	in := &note{Title: "t", Content: "c"}
	got, err := p.Transform(in, titleShape)
	require.NoError(t, err)
	assert.Same(t, in, got)

	_, err = p.Transform(&note{Content: "c"}, titleShape)
	require.Error(t, err)
	assert.Equal(t, "Validation failed: title must not be empty", err.Error())
}

func TestTransform_MalformedCandidate(t *testing.T) {
	p, logs := newTestPipeline(t)

	_, err := p.Transform("not an object", titleShape)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Validation failed: CreateNote must be an object", httpErr.Message)
	assert.Contains(t, logs.String(), "CreateNote must be an object")
}

func TestTransform_NilCandidateChecksRequiredFields(t *testing.T) {
	p, _ := newTestPipeline(t)

	_, err := p.Transform(nil, titleShape)

	require.Error(t, err)
	assert.Equal(t, "Validation failed: title must not be empty", err.Error())
}

func TestTransform_TypeRules(t *testing.T) {
	p, _ := newTestPipeline(t)
	shape := NewShape("Typed",
		Rule{Field: "name", Tag: "omitempty,is_string"},
		Rule{Field: "tags", Tag: "omitempty,is_array,max=2"},
		Rule{Field: "meta", Tag: "omitempty,is_object"},
		Rule{Field: "sort", Tag: "omitempty,numeric"},
		Rule{Field: "done", Tag: "omitempty,boolean"},
		Rule{Field: "page", Tag: "omitempty,num_min=1,num_max=500"},
	)

	tests := []struct {
		name    string
		in      map[string]any
		wantErr string
	}{
		{"all absent", map[string]any{}, ""},
		{"all valid", map[string]any{"name": "x", "tags": []any{"a"}, "meta": map[string]any{}, "sort": 2.0, "done": true}, ""},
		{"numeric string", map[string]any{"sort": "3", "done": "false"}, ""},
		{"name not a string", map[string]any{"name": 5.0}, "name must be a string"},
		{"tags not an array", map[string]any{"tags": "a"}, "tags must be an array"},
		{"too many tags", map[string]any{"tags": []any{"a", "b", "c"}}, "tags must not exceed 2"},
		{"meta not an object", map[string]any{"meta": []any{}}, "meta must be an object"},
		{"sort not numeric", map[string]any{"sort": "abc"}, "sort must be a number"},
		{"done not boolean", map[string]any{"done": "maybe"}, "done must be a boolean"},
		{"page in range", map[string]any{"page": "3"}, ""},
		{"page below minimum", map[string]any{"page": "0"}, "page must be at least 1"},
		{"page number above maximum", map[string]any{"page": 1000.0}, "page must not exceed 500"},
		{"page not a number", map[string]any{"page": "x"}, "page must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Transform(tt.in, shape)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, errs.ValidationFailedPrefix+tt.wantErr, err.Error())
		})
	}
}

func TestViolations_OnePerField(t *testing.T) {
	p, _ := newTestPipeline(t)

	violations, err := p.Violations(map[string]any{"title": 7.0}, titleShape)

	require.NoError(t, err)
	require.Len(t, violations, 2)
	assert.Equal(t, Violation{Field: "title", Rule: "is_string", Message: "title must not be empty"}, violations[0])
	assert.Equal(t, "content", violations[1].Field)
	assert.Equal(t, "required", violations[1].Rule)
}

func TestShape_Fields(t *testing.T) {
	assert.Equal(t, []string{"title", "content"}, titleShape.Fields())
	assert.Nil(t, (*Shape)(nil).Fields())
	assert.True(t, (*Shape)(nil).IsPrimitive())
	assert.False(t, titleShape.IsPrimitive())
	assert.Equal(t, "struct", KindStruct.String())
	assert.Equal(t, "array", Array.Kind.String())
}

func TestConvert_ProjectsDeclaredFields(t *testing.T) {
	instance, err := Convert(map[string]any{"title": "a", "other": 1}, titleShape)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "a", "content": nil}, instance)
}
