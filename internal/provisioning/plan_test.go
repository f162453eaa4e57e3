package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(*Context) error { return nil }

func planStep(name string, policy FailurePolicy, deps ...string) Step {
	return Step{
		Name:        name,
		Idempotency: ExistenceGated,
		Policy:      policy,
		DependsOn:   deps,
		Action:      noop,
	}
}

func TestValidatePlan_Valid(t *testing.T) {
	t.Parallel()

	steps := []Step{
		planStep("install-packages", Fatal),
		planStep("create-network", Fatal, "install-packages"),
		planStep("firewall-enable", Tolerant, "install-packages"),
	}
	assert.NoError(t, ValidatePlan(steps))
	assert.NoError(t, ValidatePlan(nil))
}

func TestValidatePlan_Problems(t *testing.T) {
	t.Parallel()

	noAction := planStep("b", Fatal)
	noAction.Action = nil
	badClass := planStep("c", Fatal)
	badClass.Idempotency = "sometimes"
	badPolicy := planStep("d", "maybe")

	tests := []struct {
		name    string
		steps   []Step
		wantErr string
	}{
		{"empty name", []Step{planStep("", Fatal)}, "step 1 has no name"},
		{"duplicate", []Step{planStep("a", Fatal), planStep("a", Fatal)}, `duplicate step name "a"`},
		{"no action", []Step{noAction}, `step "b" has no action`},
		{"unknown idempotency", []Step{badClass}, "unknown idempotency class"},
		{"unknown policy", []Step{badPolicy}, "unknown failure policy"},
		{"forward dependency", []Step{planStep("a", Fatal, "b"), planStep("b", Fatal)}, `depends on "b", which does not run before it`},
		{"missing dependency", []Step{planStep("a", Fatal, "ghost")}, `depends on "ghost"`},
		{"self dependency", []Step{planStep("a", Fatal, "a")}, `depends on "a"`},
		{"tolerant dependency", []Step{planStep("a", Tolerant), planStep("b", Fatal, "a")}, `depends on tolerant step "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePlan(tt.steps)
			require.Error(t, err)
			var planErr *PlanError
			require.ErrorAs(t, err, &planErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePlan_CollectsAllProblems(t *testing.T) {
	t.Parallel()

	err := ValidatePlan([]Step{planStep("", Fatal), planStep("a", Fatal, "ghost")})
	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Len(t, planErr.Problems, 2)
}
