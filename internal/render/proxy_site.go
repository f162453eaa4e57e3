package render

import (
	"fmt"
	"regexp"
)

// DefaultMaxBodySize allows database backups to be uploaded through the proxy.
const DefaultMaxBodySize = "200m"

var (
	serverNameRegex = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)
	bodySizeRegex   = regexp.MustCompile(`^[0-9]+[kKmMgG]?$`)
)

// ProxySiteParams feeds the reverse proxy site definition.
type ProxySiteParams struct {
	Site            string
	Domain          string
	AppPort         int
	LongpollingPort int

	// MaxBodySize is an nginx size such as "200m". Empty means DefaultMaxBodySize.
	MaxBodySize string

	// TLS adds an HTTPS server and redirects plain HTTP to it.
	TLS             bool
	CertificatePath string
	KeyPath         string
}

// ProxySite renders the site definition. Without TLS the site serves plain
// HTTP on port 80, which is what certificate issuance needs.
func ProxySite(p ProxySiteParams) ([]byte, error) {
	if err := checkFields(field{"site", p.Site}, field{"domain", p.Domain}); err != nil {
		return nil, fmt.Errorf("proxy site: %w", err)
	}
	if !serverNameRegex.MatchString(p.Domain) {
		return nil, fmt.Errorf("proxy site: invalid server name %q", p.Domain)
	}
	if err := checkPort("app port", p.AppPort); err != nil {
		return nil, fmt.Errorf("proxy site: %w", err)
	}
	if err := checkPort("longpolling port", p.LongpollingPort); err != nil {
		return nil, fmt.Errorf("proxy site: %w", err)
	}
	if p.MaxBodySize == "" {
		p.MaxBodySize = DefaultMaxBodySize
	}
	if !bodySizeRegex.MatchString(p.MaxBodySize) {
		return nil, fmt.Errorf("proxy site: invalid body size %q", p.MaxBodySize)
	}
	if p.TLS {
		if err := checkFields(field{"certificate path", p.CertificatePath}, field{"key path", p.KeyPath}); err != nil {
			return nil, fmt.Errorf("proxy site: %w", err)
		}
	}
	return render("nginx-site.conf.tmpl", p)
}
