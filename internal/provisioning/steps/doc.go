// Package steps builds the ordered provisioning sequence for a deployment.
//
// The order is fixed: packages, deployment files, container resources, the
// running stack and its readiness, firewall rules, the proxy site and,
// last, the certificate and the TLS site. Every step declares its
// idempotency class, failure policy and, for fatal prerequisites, its
// dependencies, so the sequencer can validate the plan before running it.
package steps
