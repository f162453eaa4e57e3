// Package provisioning runs the ordered, idempotent step sequence that turns a
// bare host into a serving deployment.
//
// # Core Types
//
// Step declares one host mutation: the resource it owns, its idempotency
// class, its failure policy, a precondition Check and an Action.
// Sequencer validates a step list, checks privilege, then drives the steps
// strictly in order, skipping satisfied ones, aborting on fatal failures and
// recording tolerant ones with a remediation.
// Context carries the configuration, the host adapters, the run State and the
// Observer to every step.
// Report lists the outcome of every step reached.
//
// All host access goes through the adapter interfaces in interfaces.go; the
// concrete step list lives in the steps subpackage.
package provisioning
