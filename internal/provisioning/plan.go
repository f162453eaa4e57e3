package provisioning

import "fmt"

// ValidatePlan checks a step list before anything runs. Dependencies must name
// earlier fatal steps: a fatal step that did not abort the run has succeeded,
// so a dependent step never observes a half-done prerequisite.
func ValidatePlan(steps []Step) error {
	var problems []string
	index := make(map[string]int, len(steps))

	for i, step := range steps {
		if step.Name == "" {
			problems = append(problems, fmt.Sprintf("step %d has no name", i+1))
			continue
		}
		if _, dup := index[step.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate step name %q", step.Name))
			continue
		}
		if step.Action == nil {
			problems = append(problems, fmt.Sprintf("step %q has no action", step.Name))
		}
		switch step.Idempotency {
		case ExistenceGated, OverwriteSafe, NativelyIdempotent:
		default:
			problems = append(problems, fmt.Sprintf("step %q has unknown idempotency class %q", step.Name, step.Idempotency))
		}
		switch step.Policy {
		case Fatal, Tolerant:
		default:
			problems = append(problems, fmt.Sprintf("step %q has unknown failure policy %q", step.Name, step.Policy))
		}

		for _, dep := range step.DependsOn {
			j, ok := index[dep]
			if !ok {
				problems = append(problems, fmt.Sprintf("step %q depends on %q, which does not run before it", step.Name, dep))
				continue
			}
			if steps[j].Policy != Fatal {
				problems = append(problems, fmt.Sprintf("step %q depends on tolerant step %q", step.Name, dep))
			}
		}

		index[step.Name] = i
	}

	if len(problems) > 0 {
		return &PlanError{Problems: problems}
	}
	return nil
}
