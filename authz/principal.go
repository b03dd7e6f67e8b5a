/*
Package authz implements row-level authorization for payroll data.

PURPOSE:
  Decides, per operation and per row, whether the acting principal may see
  or change payroll records. The rules are expressed as explicit predicate
  functions keyed by (entity, operation), composed from the principal's
  roles and the row's ownership relation - never ambient session state, so
  the model is unit-testable without any UI or HTTP layer.

RULES:
  - admin: full read/insert/update/delete on employees, attendance, wages;
    full read on role assignments; may grant roles.
  - non-admin with an owned employee: read-only on that employee row and on
    attendance/wage rows belonging to it. No writes of any kind.
  - non-admin without an owned employee: sees nothing in those entities.
  - role assignments: self-readable by their subject; no self-service
    escalation path (writes are admin-only).

ENFORCEMENT POINT:
  The predicates are evaluated at the data-access boundary by the Store
  decorator in store.go, not in handlers. The UI is not a trust boundary.

SEE ALSO:
  - policy.go: the (entity, operation) predicate table
  - store.go:  the payroll.Store decorator applying it per row
*/
package authz

import (
	"context"

	"github.com/warp/payroll-engine/payroll"
)

// Principal is the authenticated actor a request runs as. Identity and
// roles come from the external authentication provider's token; this
// package only consumes them.
type Principal struct {
	UserID string
	Roles  []payroll.Role
}

// Anonymous is the principal for unauthenticated requests. The policy
// table grants it nothing.
func Anonymous() Principal { return Principal{} }

func (p Principal) IsAdmin() bool {
	for _, r := range p.Roles {
		if r == payroll.RoleAdmin {
			return true
		}
	}
	return false
}

// Authenticated reports whether the principal maps to a logged-in user.
func (p Principal) Authenticated() bool { return p.UserID != "" }

// =============================================================================
// CONTEXT PLUMBING
// =============================================================================

type contextKey struct{}

// WithPrincipal returns a context carrying the principal. Handlers attach
// it once per request; everything below reads it explicitly.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom extracts the principal, defaulting to Anonymous.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(contextKey{}).(Principal); ok {
		return p
	}
	return Anonymous()
}
