package domain

import "github.com/Apurer/go-pos-backoffice/internal/shared/actor"

// Operation names an action checked by the access policy.
type Operation string

const (
	OpList       Operation = "list"
	OpView       Operation = "view"
	OpCreate     Operation = "create"
	OpUpdate     Operation = "update"
	OpDelete     Operation = "delete"
	OpBulkUpdate Operation = "bulk_update"
	OpEditItems  Operation = "edit_items"
)

// Scope restricts the rows a listing may return. A nil ActorID means every row.
type Scope struct {
	ActorID *int64
}

// Matches reports whether the order falls inside the scope.
func (s Scope) Matches(o *Order) bool {
	return s.ActorID == nil || o.ActorID == *s.ActorID
}

// ListScope is the row filter for listings by a.
func ListScope(a actor.Actor) Scope {
	if a.Role == actor.RoleCashier {
		id := a.ID
		return Scope{ActorID: &id}
	}
	return Scope{}
}

// Authorize applies the role rules to op on order. Order may be nil for
// OpList and OpBulkUpdate.
func Authorize(a actor.Actor, op Operation, order *Order) error {
	if !a.Role.Valid() {
		return ErrForbidden
	}
	switch op {
	case OpList:
		return nil
	case OpBulkUpdate:
		if !a.Role.AtLeast(actor.RoleManager) {
			return ErrForbidden
		}
		return nil
	case OpDelete:
		if a.Role != actor.RoleAdmin {
			return ErrForbidden
		}
		return nil
	}
	if order == nil {
		return ErrForbidden
	}
	owns := order.ActorID == a.ID
	switch op {
	case OpView, OpCreate, OpEditItems:
		if a.Role == actor.RoleCashier && !owns {
			return ErrForbidden
		}
		return nil
	case OpUpdate:
		switch a.Role {
		case actor.RoleAdmin:
			return nil
		case actor.RoleManager:
			if order.Status == StatusCompleted {
				return ErrForbidden
			}
			return nil
		default:
			if !owns || order.Status == StatusCompleted {
				return ErrForbidden
			}
			return nil
		}
	default:
		return ErrForbidden
	}
}
