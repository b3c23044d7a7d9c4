// Package permission mirrors the database row-level-security policies as a
// pure decision table. It exists so handlers can answer "would this be
// allowed" without a round trip; the database remains the enforcement point,
// and this file is the only client-side copy of the rules.
package permission

// Resource names a policy-guarded table or bucket.
type Resource string

const (
	ResourceFlipbook      Resource = "flipbooks"
	ResourceProfile       Resource = "profiles"
	ResourceFlipbookView  Resource = "flipbook_views"
	ResourceRole          Resource = "roles"
	ResourceStorageObject Resource = "storage_objects"
)

// Action is a row-level operation.
type Action string

const (
	ActionSelect Action = "select"
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Reason explains a denial in terms the caller can act on.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonRequiresAuth      Reason = "requiresAuth"
	ReasonRequiresOwnership Reason = "requiresOwnership"
	ReasonRequiresRole      Reason = "requiresRole"
)

// Context carries the requester's identity and the target row's attributes.
type Context struct {
	Authenticated bool
	UserID        uint
	// OwnerID is the target resource's owning user. Zero when the resource
	// has no owner yet (inserts key on UserID == OwnerID).
	OwnerID uint
	// IsPublic reflects the row's visibility flag.
	IsPublic bool
}

type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}

func allow() Result { return Result{Allowed: true} }

func deny(ctx Context) Result {
	if !ctx.Authenticated {
		return Result{Reason: ReasonRequiresAuth}
	}
	if ctx.UserID != ctx.OwnerID {
		return Result{Reason: ReasonRequiresOwnership}
	}
	return Result{Reason: ReasonRequiresRole}
}

func isOwner(ctx Context) bool {
	return ctx.Authenticated && ctx.UserID == ctx.OwnerID
}

// Validate evaluates one (resource, action) pair against the context.
// The cases correspond one-to-one with the server policies:
//
//   - owners may select/update/delete their own rows
//   - authenticated users may select public flipbooks and insert view
//     events for them
//   - unauthenticated users get select on public flipbooks only
//   - role administration is never client-side
func Validate(resource Resource, action Action, ctx Context) Result {
	switch resource {
	case ResourceFlipbook:
		switch action {
		case ActionSelect:
			if ctx.IsPublic || isOwner(ctx) {
				return allow()
			}
		case ActionInsert, ActionUpdate, ActionDelete:
			if isOwner(ctx) {
				return allow()
			}
		}

	case ResourceProfile:
		switch action {
		case ActionSelect, ActionInsert, ActionUpdate:
			if isOwner(ctx) {
				return allow()
			}
		case ActionDelete:
			// Profile rows are removed by account deletion server-side only.
			if ctx.Authenticated {
				return Result{Reason: ReasonRequiresRole}
			}
		}

	case ResourceFlipbookView:
		switch action {
		case ActionInsert:
			// Recording a view needs a session; owners may always record
			// against their own flipbooks.
			if ctx.Authenticated && (ctx.IsPublic || isOwner(ctx)) {
				return allow()
			}
		case ActionSelect:
			// View analytics belong to the flipbook owner.
			if isOwner(ctx) {
				return allow()
			}
		}

	case ResourceStorageObject:
		switch action {
		case ActionSelect:
			// Both buckets are publicly readable.
			return allow()
		case ActionInsert, ActionUpdate, ActionDelete:
			// Writable only under the caller's own key prefix.
			if isOwner(ctx) {
				return allow()
			}
		}

	case ResourceRole:
		if ctx.Authenticated {
			return Result{Reason: ReasonRequiresRole}
		}
	}

	return deny(ctx)
}

// CanView reports whether the context may read a flipbook: public rows are
// readable by anyone, private rows by their owner only.
func CanView(ctx Context) bool {
	return Validate(ResourceFlipbook, ActionSelect, ctx).Allowed
}

// CanEdit reports whether the context may mutate a flipbook. Ownership is
// required regardless of the public flag.
func CanEdit(ctx Context) bool {
	return Validate(ResourceFlipbook, ActionUpdate, ctx).Allowed
}

// CanDelete mirrors CanEdit for row deletion.
func CanDelete(ctx Context) bool {
	return Validate(ResourceFlipbook, ActionDelete, ctx).Allowed
}
