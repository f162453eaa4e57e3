package nginx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/imamik/erpdeploy/internal/testing"
)

const (
	available = "/etc/nginx/sites-available"
	enabled   = "/etc/nginx/sites-enabled"
)

func TestEnableSite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := testutil.NewFakeRunner()
	r.Files[available+"/odoo"] = []byte("server {}")
	p := New(r, available, enabled)

	ok, err := p.SiteEnabled(ctx, "odoo")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, p.EnableSite(ctx, "odoo"))
	assert.Equal(t, available+"/odoo", r.Links[enabled+"/odoo"])

	ok, err = p.SiteEnabled(ctx, "odoo")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnableSite_MissingDefinition(t *testing.T) {
	t.Parallel()
	r := testutil.NewFakeRunner()

	err := New(r, available, enabled).EnableSite(context.Background(), "odoo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
	assert.Empty(t, r.Links)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	r := testutil.NewFakeRunner()
	require.NoError(t, New(r, available, enabled).ValidateConfig(context.Background()))
	assert.Equal(t, []string{"nginx -t"}, r.Calls())

	r = testutil.NewFakeRunner().Fail("nginx -t", 1, `unknown directive "servr"`)
	err := New(r, available, enabled).ValidateConfig(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown directive")
}

func TestActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		setup  func(r *testutil.FakeRunner)
		want   bool
		hasErr bool
	}{
		{"active", func(r *testutil.FakeRunner) { r.On("systemctl is-active", "active\n", nil) }, true, false},
		{"inactive", func(r *testutil.FakeRunner) { r.Fail("systemctl is-active", 3, "inactive\n") }, false, false},
		{"systemctl missing", func(r *testutil.FakeRunner) { r.On("systemctl", "", errors.New("executable file not found")) }, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := testutil.NewFakeRunner()
			tt.setup(r)
			got, err := New(r, available, enabled).Active(context.Background())
			if tt.hasErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReload(t *testing.T) {
	t.Parallel()

	r := testutil.NewFakeRunner().On("systemctl is-active", "active\n", nil)
	require.NoError(t, New(r, available, enabled).Reload(context.Background()))
	assert.True(t, r.Ran("systemctl reload nginx"))

	r = testutil.NewFakeRunner().Fail("systemctl is-active", 3, "inactive\n")
	require.NoError(t, New(r, available, enabled).Reload(context.Background()))
	assert.True(t, r.Ran("systemctl start nginx"))
	assert.False(t, r.Ran("systemctl reload"))
}
