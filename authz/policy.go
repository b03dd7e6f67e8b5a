package authz

// =============================================================================
// POLICY TABLE - One predicate per (entity, operation) pair
// =============================================================================

// Entity names a protected table.
type Entity string

const (
	EntityEmployee   Entity = "employees"
	EntityAttendance Entity = "attendance"
	EntityWage       Entity = "wages"
	EntityRole       Entity = "user_roles"
)

// Operation is the kind of access being attempted.
type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Row carries the ownership facts a predicate needs. For employees this is
// the row's own user link; for attendance and wages it is the owning
// employee's user link; for role assignments it is the subject user.
type Row struct {
	// OwnerUserID is the user that owns the row via the employee link.
	// Empty means unowned (admin-managed only).
	OwnerUserID string

	// SubjectUserID is the user a role assignment row is about.
	SubjectUserID string
}

// Predicate is a row-level policy rule: allow or deny one operation on one
// row for one principal.
type Predicate func(p Principal, row Row) bool

func denyAll(Principal, Row) bool { return false }

func adminOnly(p Principal, _ Row) bool { return p.IsAdmin() }

// adminOrOwner allows admins everything and owners read access to their
// own rows. Unowned rows (empty owner) are admin-only.
func adminOrOwner(p Principal, row Row) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Authenticated() && row.OwnerUserID != "" && row.OwnerUserID == p.UserID
}

// adminOrSelf allows admins and the row's subject. Used for role reads so
// a user can see which roles they hold.
func adminOrSelf(p Principal, row Row) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Authenticated() && row.SubjectUserID == p.UserID
}

// policies is the authoritative (entity, operation) -> predicate table.
// Evaluation is per-row: a read returns the subset of rows the predicate
// allows, never an all-or-nothing table gate.
var policies = map[Entity]map[Operation]Predicate{
	EntityEmployee: {
		OpSelect: adminOrOwner,
		OpInsert: adminOnly,
		OpUpdate: adminOnly,
		OpDelete: adminOnly,
	},
	EntityAttendance: {
		OpSelect: adminOrOwner,
		OpInsert: adminOnly,
		OpUpdate: denyAll, // attendance is immutable, even for admins via this path
		OpDelete: adminOnly,
	},
	EntityWage: {
		OpSelect: adminOrOwner,
		OpInsert: adminOnly,
		OpUpdate: adminOnly, // the paid transition
		OpDelete: adminOnly,
	},
	EntityRole: {
		OpSelect: adminOrSelf,
		OpInsert: adminOnly, // no self-service role escalation
		OpUpdate: denyAll,
		OpDelete: adminOnly,
	},
}

// Allows evaluates the policy table for one row.
func Allows(p Principal, entity Entity, op Operation, row Row) bool {
	ops, ok := policies[entity]
	if !ok {
		return false
	}
	pred, ok := ops[op]
	if !ok {
		return false
	}
	return pred(p, row)
}
