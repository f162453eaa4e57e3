// Package testing provides test doubles, builders and fixtures shared by the
// unit tests.
//
//   - FakeHost: an in-memory host implementing every provisioning adapter,
//     with an ordered operation log and failure injection
//   - FakeRunner: a scripted runner.Runner with in-memory files
//   - ConfigBuilder and ScenarioConfig: valid deployment configs
//   - Mock*: testify mocks for the adapter interfaces
//
// Usage:
//
//	host := testing.NewFakeHost()
//	host.FailOn(testing.OpIssue, errors.New("rate limited"))
//	cfg := testing.NewConfigBuilder().WithFirewall(false).Build()
package testing
