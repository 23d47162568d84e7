// internal/pkg/scope/scope.go
package scope

import "gorm.io/gorm"

// Scope limits which bases a caller may see. It is derived once from the
// authenticated user's role and assigned base at the HTTP boundary and passed
// explicitly into every service call instead of being rebuilt per endpoint.
type Scope struct {
	// BaseID is nil for unrestricted (admin) callers.
	BaseID *uint
}

// Unrestricted returns a scope that can see every base.
func Unrestricted() Scope {
	return Scope{}
}

// ForBase returns a scope restricted to a single base.
func ForBase(baseID uint) Scope {
	return Scope{BaseID: &baseID}
}

// ForUser derives the scope from a user's role and assigned base. Admins are
// unrestricted; everyone else is pinned to their assigned base.
func ForUser(role string, assignedBaseID *uint) Scope {
	if role == "admin" {
		return Unrestricted()
	}
	if assignedBaseID == nil {
		return None()
	}
	return Scope{BaseID: assignedBaseID}
}

// None returns a scope that matches no base. Base IDs start at 1, so pinning
// to 0 denies everything. Used when no authenticated user is attached.
func None() Scope {
	zero := uint(0)
	return Scope{BaseID: &zero}
}

// Restricted reports whether the scope is limited to one base.
func (s Scope) Restricted() bool {
	return s.BaseID != nil
}

// Allows reports whether a record belonging to baseID is visible. The
// zero-pinned deny-all scope allows nothing, including base 0 itself.
func (s Scope) Allows(baseID uint) bool {
	if s.BaseID == nil {
		return true
	}
	return *s.BaseID == baseID && baseID != 0
}

// Narrow returns a copy of the scope restricted to baseID if permitted. A
// restricted caller cannot widen their scope; requesting a different base
// returns ok=false.
func (s Scope) Narrow(baseID uint) (Scope, bool) {
	if !s.Allows(baseID) {
		return s, false
	}
	return ForBase(baseID), true
}

// Apply adds the base restriction to a query. column is the fully qualified
// base foreign key, e.g. "inventory_records.base_id".
func (s Scope) Apply(q *gorm.DB, column string) *gorm.DB {
	if s.BaseID == nil {
		return q
	}
	return q.Where(column+" = ?", *s.BaseID)
}
