// Package aliasserver is a reference implementation of the alias-management
// service that aliasclient talks to.
//
// The service owns two routes:
//
//   - POST /api/query/alias creates an alias for a target path and answers
//     201 with the alias record {id, path, href, target}.
//   - ANY /a/{id} resolves an alias: the stored target replaces the request
//     URL and the request is delegated to the configured upstream handler.
//     An unknown or expired alias answers 404, which is exactly the signal
//     aliasclient recovers from by recreating the alias.
//
// Records live in a Store. MemoryStore keeps them in-process with per-record
// deadlines; RedisStore uses Redis native TTLs so several instances can share
// one alias space.
//
// A minimal deployment:
//
//	store := aliasserver.NewMemoryStore()
//	svc := aliasserver.NewService(upstream,
//	    aliasserver.WithStore(store),
//	    aliasserver.WithAliasTTL(15*time.Minute),
//	)
//
//	server := aliasserver.NewServer(
//	    aliasserver.WithAddr(":8080"),
//	    aliasserver.WithHandler(svc),
//	)
//	if err := server.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// The service exposes /healthz and Prometheus metrics on /metrics.
package aliasserver
