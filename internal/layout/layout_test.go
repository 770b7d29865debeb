package layout

import (
	stderrors "errors"
	"testing"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/panels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var known = map[string]bool{"services": true, "caches": true, "members": true}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Expr
	}{
		{"rows and columns", "services,caches:members", Expr{{"services", "caches"}, {"members"}}},
		{"single", "members", Expr{{"members"}}},
		{"whitespace", " services , caches : members ", Expr{{"services", "caches"}, {"members"}}},
		{"three rows", "services:caches:members", Expr{{"services"}, {"caches"}, {"members"}}},
		{"repeat allowed", "members:members", Expr{{"members"}, {"members"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.expr, known)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("bogus-panel", map[string]bool{"services": true})
	var unknown *UnknownPanelError
	require.True(t, stderrors.As(err, &unknown))
	assert.Equal(t, "bogus-panel", unknown.ID)
	assert.True(t, errors.IsCode(err, errors.ErrLayout))

	for _, blank := range []string{"", "   "} {
		_, err = Parse(blank, known)
		var empty *EmptyLayoutError
		assert.True(t, stderrors.As(err, &empty), "%q", blank)
	}

	for _, bad := range []string{"services,,caches", "services:", ":members", ","} {
		_, err = Parse(bad, known)
		var syn *SyntaxError
		assert.True(t, stderrors.As(err, &syn), "%q", bad)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, expr := range []string{
		"services,caches:members",
		" members ",
		"services:caches,members,services",
		"caches",
	} {
		t.Run(expr, func(t *testing.T) {
			first, err := Parse(expr, known)
			require.NoError(t, err)
			second, err := Parse(first.String(), known)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestExprPanels(t *testing.T) {
	e := Expr{{"services", "caches"}, {"members", "services"}}
	assert.Equal(t, []string{"services", "caches", "members"}, e.Panels())
	assert.True(t, e.Contains("members"))
	assert.False(t, e.Contains("topics"))
}

func TestBuiltinPresetsParse(t *testing.T) {
	reg := panels.NewBuiltinRegistry()
	for _, p := range Builtin {
		t.Run(p.Name, func(t *testing.T) {
			_, err := Parse(p.Expr, reg.Known())
			assert.NoError(t, err)
		})
	}
}

func TestResolver_Presets(t *testing.T) {
	r, err := NewResolver(panels.NewBuiltinRegistry(), nil)
	require.NoError(t, err)

	l, err := r.Resolve("default", nil)
	require.NoError(t, err)
	assert.Equal(t, "default", l.Name)
	assert.Equal(t, Expr{{"cluster-overview"}, {"members", "machines"}, {"services", "caches"}}, l.Expr)
	assert.Len(t, l.Panels, 5)

	_, err = r.Resolve("default-cache", nil)
	var mp *panels.MissingParameterError
	require.True(t, stderrors.As(err, &mp))
	assert.Equal(t, "default-cache", mp.Panel)
	assert.Equal(t, panels.ParamCache, mp.Param)

	l, err = r.Resolve("default-cache", panels.Params{panels.ParamCache: "orders"})
	require.NoError(t, err)
	assert.Equal(t, "Cache Access (orders)", l.Panels["cache-access"].Title())
}

func TestResolver_LiteralExpression(t *testing.T) {
	r, err := NewResolver(panels.NewBuiltinRegistry(), nil)
	require.NoError(t, err)

	l, err := r.Resolve("services,caches:members", nil)
	require.NoError(t, err)
	assert.Equal(t, Expr{{"services", "caches"}, {"members"}}, l.Expr)

	_, err = r.Resolve("members:service-members", nil)
	var mp *panels.MissingParameterError
	require.True(t, stderrors.As(err, &mp))
	assert.Equal(t, "service-members", mp.Panel)

	_, err = r.Resolve("bogus-panel", nil)
	var unknown *UnknownPanelError
	assert.True(t, stderrors.As(err, &unknown))
}

func TestResolver_UserPresets(t *testing.T) {
	reg := panels.NewBuiltinRegistry()

	r, err := NewResolver(reg, map[string]string{"ops": "members:cache-access"})
	require.NoError(t, err)

	var ops Preset
	for _, p := range r.Presets() {
		if p.Name == "ops" {
			ops = p
		}
	}
	assert.True(t, ops.User)
	assert.Equal(t, []panels.Param{panels.ParamCache}, ops.Requires)

	_, err = r.Resolve("ops", nil)
	var mp *panels.MissingParameterError
	assert.True(t, stderrors.As(err, &mp))

	_, err = NewResolver(reg, map[string]string{"default": "members"})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	_, err = NewResolver(reg, map[string]string{"bad": "members:nope"})
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
