package core

import "context"

// AllowAll is the default authorization capability: every caller may access
// every workflow. Hosts with real access control install their own
// implementation via WithAuthorizer.
type AllowAll struct{}

func (AllowAll) CanAccess(ctx context.Context, userID, workflowID string) (bool, error) {
	return true, nil
}
