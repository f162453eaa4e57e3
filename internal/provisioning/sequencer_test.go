package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/erpdeploy/internal/config"
)

type privilegeFunc func(ctx context.Context) error

func (f privilegeFunc) CheckPrivilege(ctx context.Context) error { return f(ctx) }

func newTestContext(t *testing.T, privErr error) (*Context, *MockObserver) {
	t.Helper()
	obs := NewMockObserver()
	ctx := NewContext(context.Background(), &config.Config{}, &Host{
		Privilege: privilegeFunc(func(context.Context) error { return privErr }),
	})
	ctx.Observer = obs
	return ctx, obs
}

// recorder builds steps that append their name to a shared log when run.
type recorder struct {
	ran []string
}

func (r *recorder) step(name string, policy FailurePolicy, actionErr error) Step {
	return Step{
		Name:        name,
		Description: "test step " + name,
		Resource:    "resource-" + name,
		Idempotency: NativelyIdempotent,
		Policy:      policy,
		Action: func(*Context) error {
			r.ran = append(r.ran, name)
			return actionErr
		},
	}
}

func satisfied(reason string) CheckFunc {
	return func(*Context) (bool, string, error) { return true, reason, nil }
}

func TestSequencer_AllExecuted(t *testing.T) {
	t.Parallel()
	ctx, obs := newTestContext(t, nil)
	rec := &recorder{}
	steps := []Step{rec.step("a", Fatal, nil), rec.step("b", Fatal, nil), rec.step("c", Tolerant, nil)}

	report, err := NewSequencer().Run(ctx, steps)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, rec.ran)
	assert.Equal(t, 3, report.Executed())
	assert.Zero(t, report.Skipped())
	assert.True(t, report.Succeeded())
	assert.True(t, ctx.State.Changed("a", "b", "c"))
	assert.Equal(t, EventSequenceStarted, obs.eventTypes()[0])
	assert.Equal(t, EventSequenceCompleted, obs.eventTypes()[len(obs.eventTypes())-1])
}

func TestSequencer_SkipsSatisfiedSteps(t *testing.T) {
	t.Parallel()
	ctx, _ := newTestContext(t, nil)
	rec := &recorder{}
	a := rec.step("a", Fatal, nil)
	a.Check = satisfied("network odoo-net exists")
	steps := []Step{a, rec.step("b", Fatal, nil)}

	report, err := NewSequencer().Run(ctx, steps)

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, rec.ran)
	res, ok := report.Result("a")
	require.True(t, ok)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, "network odoo-net exists", res.Reason)
	assert.Equal(t, NativelyIdempotent, res.Idempotency)
	assert.False(t, ctx.State.Changed("a"), "skipped steps change nothing")
}

func TestSequencer_FatalShortCircuit(t *testing.T) {
	t.Parallel()

	for failAt := 1; failAt <= 4; failAt++ {
		ctx, obs := newTestContext(t, nil)
		rec := &recorder{}
		cause := errors.New("apt-get exited 100")

		var steps []Step
		for i, name := range []string{"s1", "s2", "s3", "s4"} {
			var stepErr error
			if i+1 == failAt {
				stepErr = cause
			}
			steps = append(steps, rec.step(name, Fatal, stepErr))
		}

		report, err := NewSequencer().Run(ctx, steps)

		require.Error(t, err)
		var provErr *ProvisioningError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, steps[failAt-1].Name, provErr.Step)
		assert.ErrorIs(t, err, cause)

		assert.Len(t, report.Steps, failAt, "report holds exactly the steps reached")
		assert.Len(t, rec.ran, failAt, "no later step runs")
		assert.Equal(t, StatusFailed, report.Steps[failAt-1].Status)
		assert.Equal(t, steps[failAt-1].Name, report.AbortedAt)
		assert.False(t, report.Succeeded())
		assert.Contains(t, obs.eventTypes(), EventSequenceAborted)
	}
}

func TestSequencer_TolerantContinuation(t *testing.T) {
	t.Parallel()
	ctx, _ := newTestContext(t, nil)
	rec := &recorder{}
	cert := rec.step("issue-certificate", Tolerant, &CertificateIssuanceError{
		Domain: "a.example.com",
		Remedy: "certbot certonly --nginx -d a.example.com",
		Err:    errors.New("dns not propagated"),
	})
	fw := rec.step("firewall-enable", Tolerant, errors.New("ufw: command not found"))
	fw.Remediation = "ufw --force enable"
	plain := rec.step("other", Tolerant, errors.New("unknown"))
	steps := []Step{rec.step("a", Fatal, nil), cert, fw, plain, rec.step("z", Fatal, nil)}

	report, err := NewSequencer().Run(ctx, steps)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "issue-certificate", "firewall-enable", "other", "z"}, rec.ran)
	assert.Equal(t, 3, report.Failed())
	assert.Equal(t, 2, report.Executed())
	assert.True(t, report.Succeeded())

	res, _ := report.Result("issue-certificate")
	assert.Equal(t, "certbot certonly --nginx -d a.example.com", res.Remediation)
	assert.Contains(t, res.Error, "dns not propagated")
	res, _ = report.Result("firewall-enable")
	assert.Equal(t, "ufw --force enable", res.Remediation)
	res, _ = report.Result("other")
	assert.NotEmpty(t, res.Remediation)
	assert.False(t, ctx.State.Changed("issue-certificate"))
}

func TestSequencer_PrivilegeFailure(t *testing.T) {
	t.Parallel()
	ctx, _ := newTestContext(t, errors.New("uid 1000"))
	rec := &recorder{}

	report, err := NewSequencer().Run(ctx, []Step{rec.step("a", Fatal, nil)})

	require.Error(t, err)
	var privErr *PrivilegeError
	require.ErrorAs(t, err, &privErr)
	assert.Empty(t, report.Steps)
	assert.Empty(t, rec.ran)
}

func TestSequencer_PrivilegeErrorPassesThrough(t *testing.T) {
	t.Parallel()
	original := &PrivilegeError{Target: "10.0.0.5:22", Err: errors.New("sudo: a password is required")}
	ctx, _ := newTestContext(t, original)

	_, err := NewSequencer().Run(ctx, nil)

	var privErr *PrivilegeError
	require.ErrorAs(t, err, &privErr)
	assert.Same(t, original, privErr)
}

func TestSequencer_InvalidPlanRunsNothing(t *testing.T) {
	t.Parallel()
	privilegeChecked := false
	ctx, _ := newTestContext(t, nil)
	ctx.Host.Privilege = privilegeFunc(func(context.Context) error {
		privilegeChecked = true
		return nil
	})
	rec := &recorder{}
	steps := []Step{rec.step("a", Fatal, nil), rec.step("a", Fatal, nil)}

	report, err := NewSequencer().Run(ctx, steps)

	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	assert.Empty(t, report.Steps)
	assert.Empty(t, rec.ran)
	assert.False(t, privilegeChecked)
}

func TestSequencer_CheckErrorFollowsPolicy(t *testing.T) {
	t.Parallel()
	checkErr := errors.New("docker daemon not running")

	t.Run("tolerant", func(t *testing.T) {
		t.Parallel()
		ctx, _ := newTestContext(t, nil)
		rec := &recorder{}
		s := rec.step("t", Tolerant, nil)
		s.Check = func(*Context) (bool, string, error) { return false, "", checkErr }

		report, err := NewSequencer().Run(ctx, []Step{s, rec.step("after", Fatal, nil)})

		require.NoError(t, err)
		assert.Equal(t, []string{"after"}, rec.ran)
		res, _ := report.Result("t")
		assert.Equal(t, StatusFailed, res.Status)
		assert.ErrorIs(t, res.Err, checkErr)
	})

	t.Run("fatal", func(t *testing.T) {
		t.Parallel()
		ctx, _ := newTestContext(t, nil)
		rec := &recorder{}
		s := rec.step("f", Fatal, nil)
		s.Check = func(*Context) (bool, string, error) { return false, "", checkErr }

		report, err := NewSequencer().Run(ctx, []Step{s, rec.step("after", Fatal, nil)})

		require.Error(t, err)
		assert.ErrorIs(t, err, checkErr)
		assert.Empty(t, rec.ran)
		assert.Len(t, report.Steps, 1)
	})
}

func TestSequencer_DryRun(t *testing.T) {
	t.Parallel()
	ctx, obs := newTestContext(t, nil)
	rec := &recorder{}
	a := rec.step("a", Fatal, nil)
	a.Check = satisfied("present")
	b := rec.step("b", Fatal, nil)
	c := rec.step("c", Fatal, nil)
	// c is satisfied only when b changed nothing, like a stack apply after a config write
	c.Check = func(ctx *Context) (bool, string, error) {
		if ctx.State.Changed("b") {
			return false, "b changed", nil
		}
		return true, "unchanged", nil
	}

	report, err := NewSequencer(WithDryRun(true)).Run(ctx, []Step{a, b, c})

	require.NoError(t, err)
	assert.Empty(t, rec.ran, "dry run executes no action")
	assert.True(t, report.DryRun)
	assert.Equal(t, []string{"a"}, report.StepsWithStatus(StatusSkipped))
	assert.Equal(t, []string{"b", "c"}, report.StepsWithStatus(StatusPlanned))
	assert.Equal(t, 2, report.Planned())
	assert.Contains(t, obs.eventTypes(), EventStepPlanned)
}

func TestSequencer_DryRunPlansDependentsOfPlannedSteps(t *testing.T) {
	t.Parallel()
	ctx, _ := newTestContext(t, nil)
	rec := &recorder{}
	install := rec.step("install-packages", Fatal, nil)
	network := rec.step("create-network", Fatal, nil)
	network.DependsOn = []string{"install-packages"}
	network.Check = func(*Context) (bool, string, error) {
		return false, "", errors.New("docker: command not found")
	}
	stack := rec.step("start-stack", Fatal, nil)
	stack.DependsOn = []string{"create-network"}
	stack.Check = satisfied("running")

	report, err := NewSequencer(WithDryRun(true)).Run(ctx, []Step{install, network, stack})

	require.NoError(t, err)
	assert.Empty(t, rec.ran)
	assert.Equal(t, []string{"install-packages", "create-network", "start-stack"}, report.StepsWithStatus(StatusPlanned))
	res, _ := report.Result("create-network")
	assert.Equal(t, "depends on planned install-packages", res.Reason)
	assert.True(t, ctx.State.Changed("start-stack"))
}

func TestSequencer_RealRunStillEvaluatesChecks(t *testing.T) {
	t.Parallel()
	ctx, _ := newTestContext(t, nil)
	rec := &recorder{}
	install := rec.step("install-packages", Fatal, nil)
	network := rec.step("create-network", Fatal, nil)
	network.DependsOn = []string{"install-packages"}
	network.Check = satisfied("network exists")

	report, err := NewSequencer().Run(ctx, []Step{install, network})

	require.NoError(t, err)
	assert.Equal(t, []string{"install-packages"}, rec.ran)
	assert.Equal(t, []string{"create-network"}, report.StepsWithStatus(StatusSkipped))
}

func TestSequencer_MissingPrivilegeChecker(t *testing.T) {
	t.Parallel()
	rec := &recorder{}

	for name, host := range map[string]*Host{
		"no host":              nil,
		"no privilege checker": {},
	} {
		t.Run(name, func(t *testing.T) {
			ctx := NewContext(context.Background(), &config.Config{}, host)
			ctx.Observer = NewMockObserver()

			report, err := NewSequencer().Run(ctx, []Step{rec.step("a", Fatal, nil)})

			var planErr *PlanError
			require.ErrorAs(t, err, &planErr)
			assert.Empty(t, report.Steps)
			assert.Empty(t, rec.ran)
		})
	}
}

func TestSequencer_RuntimeDependencyGuard(t *testing.T) {
	t.Parallel()
	ctx, _ := newTestContext(t, nil)
	rec := &recorder{}
	ctx.State.setStatus("install-packages", StatusFailed)
	dependent := rec.step("start-stack", Tolerant, nil)
	dependent.DependsOn = []string{"install-packages"}

	result := NewSequencer().runStep(ctx, dependent)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Err.Error(), "dependency install-packages did not complete")
	assert.Empty(t, rec.ran)
}

func TestSequencer_Durations(t *testing.T) {
	t.Parallel()
	ctx, _ := newTestContext(t, nil)
	rec := &recorder{}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	report, err := NewSequencer(WithClock(clock)).Run(ctx, []Step{rec.step("a", Fatal, nil)})

	require.NoError(t, err)
	assert.Equal(t, time.Second, report.Steps[0].Duration)
	assert.Positive(t, report.Duration())
}
