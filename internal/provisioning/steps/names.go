package steps

// Step names as they appear in reports.
const (
	InstallPackages      = "install-packages"
	CreateDirectories    = "create-directories"
	WriteServiceConfig   = "write-service-config"
	WriteStackDescriptor = "write-stack-descriptor"
	CreateNetwork        = "create-network"
	CreateVolumes        = "create-volumes"
	StartStack           = "start-stack"
	AwaitApplication     = "await-application"
	FirewallAllowSSH     = "firewall-allow-ssh"
	FirewallAllowWeb     = "firewall-allow-web"
	FirewallEnable       = "firewall-enable"
	WriteProxySite       = "write-proxy-site"
	EnableProxySite      = "enable-proxy-site"
	ValidateProxy        = "validate-proxy"
	ReloadProxy          = "reload-proxy"
	IssueCertificate     = "issue-certificate"
	ActivateTLS          = "activate-tls"
)
