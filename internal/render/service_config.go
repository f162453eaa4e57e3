package render

import "fmt"

// Paths and endpoints inside the application container.
const (
	ContainerAddonsPath = "/mnt/extra-addons"
	ContainerDataDir    = "/var/lib/odoo"
	ContainerConfigDir  = "/etc/odoo"
	DBServiceName       = "db"
	AppServiceName      = "web"
	DBPort              = 5432

	// ContainerUID and ContainerGID own files the application reads through bind mounts.
	ContainerUID = 101
	ContainerGID = 101
)

// ServiceConfigParams feeds the application config file.
type ServiceConfigParams struct {
	AdminPassword   string
	DBHost          string
	DBPort          int
	DBUser          string
	DBPassword      string
	AddonsPath      string
	DataDir         string
	HTTPPort        int
	LongpollingPort int

	// Workers enables multi-process mode when positive.
	Workers int

	// ListDB exposes the database manager. Disabled for public deployments.
	ListDB bool
}

// ServiceConfig renders the application config in INI format.
// The admin password is written in plaintext; callers restrict the file mode.
func ServiceConfig(p ServiceConfigParams) ([]byte, error) {
	if err := checkFields(
		field{"admin password", p.AdminPassword},
		field{"db host", p.DBHost},
		field{"db user", p.DBUser},
		field{"db password", p.DBPassword},
		field{"addons path", p.AddonsPath},
		field{"data dir", p.DataDir},
	); err != nil {
		return nil, fmt.Errorf("service config: %w", err)
	}
	for _, port := range []struct {
		name  string
		value int
	}{
		{"db port", p.DBPort},
		{"http port", p.HTTPPort},
		{"longpolling port", p.LongpollingPort},
	} {
		if err := checkPort(port.name, port.value); err != nil {
			return nil, fmt.Errorf("service config: %w", err)
		}
	}
	if p.Workers < 0 {
		return nil, fmt.Errorf("service config: workers must not be negative")
	}
	return render("odoo.conf.tmpl", p)
}
