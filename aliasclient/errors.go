package aliasclient

import "fmt"

// AliasCreateError reports a failed alias-creation call.
//
// Creation fails when the alias-management endpoint answers outside 2xx or
// with an empty body. The failure is fatal for the Resolve call that needed
// the alias; it is never retried.
//
//	res, err := client.Resolve(ctx, path)
//	var createErr *aliasclient.AliasCreateError
//	if errors.As(err, &createErr) {
//	    log.Printf("alias endpoint rejected us with %d", createErr.Status)
//	}
type AliasCreateError struct {
	// Status is the HTTP status returned by the alias-management endpoint.
	Status int
}

// Error implements the error interface.
func (e *AliasCreateError) Error() string {
	return fmt.Sprintf("alias creation failed with status %d", e.Status)
}
