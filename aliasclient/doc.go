// Package aliasclient provides an HTTP client layer that transparently works
// around server-side URI length limits using short, server-issued aliases.
//
// Some HTTP servers reject requests whose URI exceeds a maximum length with
// 414 Request-URI Too Long. The client in this package substitutes such
// requests with a short alias URI pointing to the same logical resource,
// created through the server's alias-management endpoint, and recovers
// transparently when a previously created alias expires.
//
// # Quick Start
//
//	client := aliasclient.New(
//	    aliasclient.WithBaseURL("https://api.example.com"),
//	    aliasclient.WithBasicAuth("svc-user", "secret"),
//	)
//
//	res, err := client.Resolve(ctx, "reports/q?filter="+hugeFilter)
//	if err != nil {
//	    return err
//	}
//	if res.IsSuccess() {
//	    var report Report
//	    _ = res.DecodeJSON(&report)
//	}
//
// # Resolution Protocol
//
// Resolve decides per call how to reach the resource:
//
//   - A cached alias for the path is used when present. A 404 on the alias
//     is treated as alias expiry: the cache entry is dropped, the alias is
//     recreated once, and the fetch is repeated via the new alias.
//   - Without a cached alias, a joined URI at or above the configured length
//     limit (default 2000) is never fetched directly; an alias is created
//     first and the fetch goes through it.
//   - Short URIs are fetched directly. A 414 from the server triggers the
//     same alias-creation fallback, covering servers whose limit is tighter
//     than the configured one.
//
// Each top-level Resolve performs at most one alias-creation cycle and at
// most one expiry-recreation cycle, bounding it to three network round trips.
// Alias creation failures are fatal and surface as *AliasCreateError; every
// other status is returned to the caller untouched.
//
// Concurrent Resolve calls for the same path coalesce their alias creation
// through singleflight, so a given target produces one server-side alias.
//
// # Observability
//
// The client emits OpenTelemetry spans and metrics for every round trip and
// resolution, and can log full requests and responses with zerolog via
// WithDebug. Progress is additionally reported through an optional
// human-readable status callback (WithStatusReporter); the callback is a
// side channel and never affects control flow.
package aliasclient
