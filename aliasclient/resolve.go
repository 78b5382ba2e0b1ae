package aliasclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// Branch labels for resolve metrics.
const (
	branchDirect = "direct"
	branchAlias  = "alias"
	branchCreate = "create"
)

// Alias-creation reasons for metrics.
const (
	reasonLength       = "length"
	reasonServerReject = "server_reject"
	reasonExpired      = "expired"
)

// maxResolveAttempts bounds the resolution loop. The worst case is an
// expired cached alias followed by a server-side 414 on the direct retry:
// alias fetch, direct fetch plus creation, fetch via the new alias.
const maxResolveAttempts = 4

// Resolve fetches the logical resource at path, deciding per call whether to
// go direct, through a cached alias, or through a freshly created one.
//
// The returned Result carries the final response untouched; only 404 on an
// alias (expiry, recovered once) and 414 or an over-long URI (alias creation)
// are acted upon. A failed alias creation surfaces as *AliasCreateError.
func (c *Client) Resolve(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	init := newRequestInit(opts)
	start := time.Now()

	res, branch, err := c.resolve(ctx, path, init)

	c.config.Metrics.recordResolveDuration(
		ctx, time.Since(start), branch, c.config.baseAttributes())
	return res, err
}

// resolve runs the bounded decision loop.
//
// The recreate budget is spent on the first alias creation or expiry
// recovery, so each top-level call performs at most one creation cycle and
// at most one recreation cycle.
func (c *Client) resolve(
	ctx context.Context,
	path string,
	init *RequestInit,
) (*Result, string, error) {
	recreate := true
	expired := false

	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		if rec, ok := c.cache.Get(path); ok {
			c.report("using found alias " + rec.ID)
			c.config.Metrics.recordCacheHit(ctx, c.config.baseAttributes())

			res, err := c.send(ctx, rec.Path, init)
			if err != nil {
				return nil, branchAlias, err
			}
			if res.Status == http.StatusNotFound && recreate {
				c.report(fmt.Sprintf("alias %s expired, recreating", rec.ID))
				c.config.Metrics.recordAliasExpiration(ctx, c.config.baseAttributes())
				c.cache.Delete(path)
				recreate = false
				expired = true
				continue
			}
			c.report(fmt.Sprintf("alias fetch returned status %d", res.Status))
			return res, branchAlias, nil
		}

		if uriLen := len(c.endpointURI(path)); uriLen >= c.config.MaxURILength {
			c.report(fmt.Sprintf("uri length %d exceeds limit %d, creating alias",
				uriLen, c.config.MaxURILength))
			reason := reasonLength
			if expired {
				reason = reasonExpired
			}
			if err := c.ensureAlias(ctx, path, reason); err != nil {
				return nil, branchCreate, err
			}
			recreate = false
			continue
		}

		c.report("attempting direct fetch")
		res, err := c.send(ctx, path, init)
		if err != nil {
			return nil, branchDirect, err
		}
		if res.Status == http.StatusRequestURITooLong {
			// The server's limit is tighter than ours; fall back to an alias
			// even though the client-side length check passed.
			c.report("server rejected uri as too long, creating alias")
			if err := c.ensureAlias(ctx, path, reasonServerReject); err != nil {
				return nil, branchCreate, err
			}
			recreate = false
			continue
		}
		c.report(fmt.Sprintf("direct fetch returned status %d", res.Status))
		return res, branchDirect, nil
	}

	return nil, branchCreate, fmt.Errorf(
		"alias resolution for %q did not settle after %d attempts", path, maxResolveAttempts)
}

// ensureAlias creates and caches an alias for target unless one already
// exists. Creation for a given target is coalesced through singleflight, so
// concurrent resolves of the same path issue a single creation call.
func (c *Client) ensureAlias(ctx context.Context, target, reason string) error {
	_, err, _ := c.createGroup.Do(target, func() (any, error) {
		// A concurrent resolve may have created the alias while this call
		// waited on the flight group.
		if _, ok := c.cache.Get(target); ok {
			return nil, nil
		}

		res, err := c.createAlias(ctx, target)
		if err != nil {
			c.config.Metrics.recordAliasCreation(ctx, reason, false, c.config.baseAttributes())
			return nil, err
		}
		if !res.IsSuccess() || len(res.Body) == 0 {
			c.config.Metrics.recordAliasCreation(ctx, reason, false, c.config.baseAttributes())
			return nil, &AliasCreateError{Status: res.Status}
		}

		var rec AliasRecord
		if err := json.Unmarshal(res.Body, &rec); err != nil {
			return nil, fmt.Errorf("decode alias record: %w", err)
		}
		if rec.Target == "" {
			rec.Target = target
		}

		c.cache.Set(target, rec)
		c.config.Metrics.recordAliasCreation(ctx, reason, true, c.config.baseAttributes())
		c.report(fmt.Sprintf("created alias %s for %s", rec.ID, target))
		return nil, nil
	})
	return err
}
