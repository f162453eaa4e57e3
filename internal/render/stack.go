package render

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDescriptor is wrapped by errors from descriptor validation.
var ErrInvalidDescriptor = errors.New("invalid stack descriptor")

// StackParams feeds the compose descriptor.
type StackParams struct {
	Project         string
	AppImage        string
	DBImage         string
	AppPort         int
	LongpollingPort int
	DBName          string
	DBUser          string
	DBPassword      string
	Network         string
	WebVolume       string
	DBVolume        string

	// ConfigDir and AddonsDir are host paths bind-mounted into the app container.
	ConfigDir string
	AddonsDir string
}

// StackDescriptor renders the compose descriptor for the application and
// database services. The network and volumes are declared external because
// earlier steps create them. The result is loaded with compose-go before it
// is returned.
func StackDescriptor(p StackParams) ([]byte, error) {
	if err := checkFields(
		field{"project", p.Project},
		field{"app image", p.AppImage},
		field{"db image", p.DBImage},
		field{"db name", p.DBName},
		field{"db user", p.DBUser},
		field{"db password", p.DBPassword},
		field{"network", p.Network},
		field{"web volume", p.WebVolume},
		field{"db volume", p.DBVolume},
		field{"config dir", p.ConfigDir},
		field{"addons dir", p.AddonsDir},
	); err != nil {
		return nil, fmt.Errorf("stack descriptor: %w", err)
	}
	if err := checkPort("app port", p.AppPort); err != nil {
		return nil, fmt.Errorf("stack descriptor: %w", err)
	}
	if err := checkPort("longpolling port", p.LongpollingPort); err != nil {
		return nil, fmt.Errorf("stack descriptor: %w", err)
	}
	if !filepath.IsAbs(p.ConfigDir) || !filepath.IsAbs(p.AddonsDir) {
		return nil, fmt.Errorf("stack descriptor: bind mount sources must be absolute paths")
	}

	out, err := render("docker-compose.yml.tmpl", p)
	if err != nil {
		return nil, err
	}
	if _, err := LoadStack(context.Background(), p.Project, out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadStack parses a descriptor with compose-go and checks that it defines
// the application and database services.
func LoadStack(ctx context.Context, project string, content []byte) (*types.Project, error) {
	var dict map[string]interface{}
	if err := yaml.Unmarshal(content, &dict); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if dict == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDescriptor)
	}

	proj, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{{
			Filename: "docker-compose.yml",
			Content:  content,
			Config:   dict,
		}},
		Environment: types.Mapping{},
	}, func(opts *loader.Options) {
		opts.SetProjectName(project, false)
		opts.SkipNormalization = true
		opts.SkipExtends = true
		opts.SkipResolveEnvironment = true
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	for _, name := range []string{DBServiceName, AppServiceName} {
		if _, ok := proj.Services[name]; !ok {
			return nil, fmt.Errorf("%w: service %q is not defined", ErrInvalidDescriptor, name)
		}
	}
	return proj, nil
}
