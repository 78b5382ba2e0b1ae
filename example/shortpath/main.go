// Demonstrates the full alias round trip: an alias service fronting a small
// report API, and a client resolving both short and over-long paths
// against it.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kroma-labs/shortpath-go/aliasclient"
	"github.com/kroma-labs/shortpath-go/aliasserver"
)

const addr = ":8080"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Logger()

	// A stand-in for the resource API. It answers with the URI it was asked
	// for, so the demo shows that aliased requests arrive fully expanded.
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"served":%q}`, r.URL.RequestURI())
	})

	svc := aliasserver.NewService(upstream,
		aliasserver.WithStore(aliasserver.NewMemoryStore()),
		aliasserver.WithAliasTTL(15*time.Minute),
		aliasserver.WithBaseURL("http://localhost"+addr),
		aliasserver.WithMaxURILength(aliasclient.DefaultMaxURILength),
		aliasserver.WithLogger(logger),
	)

	server := aliasserver.NewServer(
		aliasserver.WithAddr(addr),
		aliasserver.WithHandler(svc),
		aliasserver.WithServerLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.ListenAndServe(ctx)
	}()

	// Give the listener a moment to come up.
	time.Sleep(200 * time.Millisecond)

	client := aliasclient.New(
		aliasclient.WithBaseURL("http://localhost"+addr),
		aliasclient.WithBasicAuth("demo-user", "demo-secret"),
		aliasclient.WithRetryConfig(aliasclient.DefaultRetryConfig()),
		aliasclient.WithServiceName("shortpath-demo"),
		aliasclient.WithStatusReporter(aliasclient.ZerologReporter(logger)),
	)

	// Short path: a single direct fetch.
	res, err := client.Resolve(ctx, "reports/quarterly?year=2026")
	if err != nil {
		logger.Fatal().Err(err).Msg("direct resolve failed")
	}
	logger.Info().Int("status", res.Status).
		Str("body", string(res.Body)).Msg("short path resolved")

	// Over-long path: the client creates an alias behind the scenes and the
	// upstream still sees the full URI.
	longPath := "reports/quarterly?filter=" + strings.Repeat("x", 2500)
	res, err = client.Resolve(ctx, longPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("aliased resolve failed")
	}
	logger.Info().Int("status", res.Status).
		Int("body_len", len(res.Body)).
		Int("cached_aliases", client.Cache().Len()).
		Msg("long path resolved through alias")

	// Second resolve of the same path reuses the cached alias.
	if _, err := client.Resolve(ctx, longPath); err != nil {
		logger.Fatal().Err(err).Msg("cached resolve failed")
	}
	logger.Info().Msg("cached alias reused, no second creation")

	cancel()
	if err := <-serverDone; err != nil {
		logger.Error().Err(err).Msg("server exited with error")
	}
}
