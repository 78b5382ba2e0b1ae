package aliasserver_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroma-labs/shortpath-go/aliasclient"
	"github.com/kroma-labs/shortpath-go/aliasserver"
)

// newStack runs the alias service in front of an upstream that echoes the
// request URI, and returns a client pointed at it.
func newStack(t *testing.T, store aliasserver.Store, clientOpts ...aliasclient.Option) (*aliasclient.Client, *httptest.Server) {
	t.Helper()

	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(r.URL.RequestURI()))
	})

	svc := aliasserver.NewService(upstream,
		aliasserver.WithStore(store),
		aliasserver.WithLogger(zerolog.Nop()),
		aliasserver.WithMaxURILength(aliasclient.DefaultMaxURILength),
	)
	server := httptest.NewServer(svc)
	t.Cleanup(server.Close)

	opts := append([]aliasclient.Option{
		aliasclient.WithBaseURL(server.URL),
		aliasclient.WithBasicAuth("svc-user", "secret"),
	}, clientOpts...)

	return aliasclient.New(opts...), server
}

func longTestPath() string {
	return "reports/quarterly?filter=" + strings.Repeat("x", 2500)
}

func TestClientAgainstService(t *testing.T) {
	ctx := context.Background()

	t.Run("given short path, then direct fetch reaches the upstream", func(t *testing.T) {
		client, _ := newStack(t, aliasserver.NewMemoryStore())

		res, err := client.Resolve(ctx, "reports/quarterly?year=2026")

		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, "/reports/quarterly?year=2026", string(res.Body))
		assert.Zero(t, client.Cache().Len(), "short paths never create aliases")
	})

	t.Run("given long path, then alias round trip returns the target's payload", func(t *testing.T) {
		store := aliasserver.NewMemoryStore()
		client, _ := newStack(t, store)
		path := longTestPath()

		res, err := client.Resolve(ctx, path)

		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, "/"+path, string(res.Body), "upstream sees the full target URI")
		assert.Equal(t, 1, client.Cache().Len())
		assert.Equal(t, 1, store.Len())
	})

	t.Run("given resolved long path, then second resolve reuses the alias", func(t *testing.T) {
		store := aliasserver.NewMemoryStore()
		client, _ := newStack(t, store)
		path := longTestPath()

		_, err := client.Resolve(ctx, path)
		require.NoError(t, err)

		res, err := client.Resolve(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, 1, store.Len(), "no second alias is created")
	})

	t.Run("given server limit tighter than client's, then 414 triggers the alias fallback", func(t *testing.T) {
		client, _ := newStack(t, aliasserver.NewMemoryStore(),
			// Let URIs the service rejects through the client-side check.
			aliasclient.WithMaxURILength(10_000))
		path := longTestPath()

		res, err := client.Resolve(ctx, path)

		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, "/"+path, string(res.Body))
		assert.Equal(t, 1, client.Cache().Len())
	})

	t.Run("given expired alias, then the client recreates it transparently", func(t *testing.T) {
		store := aliasserver.NewMemoryStore()
		client, _ := newStack(t, store)
		path := longTestPath()

		_, err := client.Resolve(ctx, path)
		require.NoError(t, err)

		rec, ok := client.Cache().Get(path)
		require.True(t, ok)
		require.NoError(t, store.Delete(ctx, rec.ID))

		res, err := client.Resolve(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, "/"+path, string(res.Body))

		fresh, ok := client.Cache().Get(path)
		require.True(t, ok)
		assert.NotEqual(t, rec.ID, fresh.ID)
	})

	t.Run("given POST through an alias, then method and body reach the upstream", func(t *testing.T) {
		var gotMethod, gotBody string
		upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			data, _ := io.ReadAll(r.Body)
			gotBody = string(data)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("done"))
		})

		svc := aliasserver.NewService(upstream, aliasserver.WithLogger(zerolog.Nop()))
		server := httptest.NewServer(svc)
		t.Cleanup(server.Close)

		client := aliasclient.New(
			aliasclient.WithBaseURL(server.URL),
			aliasclient.WithBasicAuth("svc-user", "secret"),
		)

		res, err := client.Resolve(context.Background(), longTestPath(),
			aliasclient.Method(http.MethodPost),
			aliasclient.Body([]byte(`{"q":1}`)))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, `{"q":1}`, gotBody)
	})
}
