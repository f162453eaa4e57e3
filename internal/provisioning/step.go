package provisioning

// Idempotency classifies why a step is safe to run again.
type Idempotency string

const (
	// ExistenceGated steps create a resource only when it is absent.
	ExistenceGated Idempotency = "existence-gated"
	// OverwriteSafe steps rewrite their resource with identical content.
	OverwriteSafe Idempotency = "overwrite-safe"
	// NativelyIdempotent steps rely on the external tool converging on its own.
	NativelyIdempotent Idempotency = "natively-idempotent"
)

// FailurePolicy decides what a step failure does to the run.
type FailurePolicy string

const (
	// Fatal failures abort the run immediately.
	Fatal FailurePolicy = "fatal"
	// Tolerant failures are reported with a remediation and the run continues.
	Tolerant FailurePolicy = "tolerant"
)

// CheckFunc reports whether a step's desired state already holds.
// The reason explains the answer and ends up in the report.
type CheckFunc func(ctx *Context) (satisfied bool, reason string, err error)

// ActionFunc performs a step's host mutation.
type ActionFunc func(ctx *Context) error

// Step is one unit of the provisioning sequence.
type Step struct {
	Name        string
	Description string

	// Resource identifies the host resource the step owns.
	Resource string

	Idempotency Idempotency
	Policy      FailurePolicy

	// DependsOn names earlier steps that must have completed.
	DependsOn []string

	// Check is optional; a nil Check always runs the action.
	Check  CheckFunc
	Action ActionFunc

	// Remediation is the manual fix reported when a tolerant step fails.
	// Errors implementing Remediator take precedence.
	Remediation string
}
