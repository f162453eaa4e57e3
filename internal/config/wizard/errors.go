package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errDomainRequired = errors.New("domain is required")
	errDomainInvalid  = errors.New("domain must be a fully qualified host name such as erp.example.com")
	errEmailRequired  = errors.New("email is required for certificate issuance")
	errEmailInvalid   = errors.New("email must be a plain address such as admin@example.com")
	errHostRequired   = errors.New("host is required for a remote target")
	errPortInvalid    = errors.New("port must be between 1 and 65535")
)
