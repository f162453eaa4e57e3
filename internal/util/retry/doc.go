// Package retry provides the two waiting strategies used by erpdeploy.
//
// [WithExponentialBackoff] retries a transient operation (an SSH dial to a
// host that is still booting) with growing delays. [Poll] checks a condition
// at a fixed interval until it holds or a deadline passes; it is used for the
// application readiness wait, where backoff would only delay detection.
package retry
