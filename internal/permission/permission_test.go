package permission_test

import (
	"testing"

	"github.com/flipflow/flipflow-backend/internal/permission"
)

func ownerCtx(public bool) permission.Context {
	return permission.Context{Authenticated: true, UserID: 7, OwnerID: 7, IsPublic: public}
}

func strangerCtx(public bool) permission.Context {
	return permission.Context{Authenticated: true, UserID: 8, OwnerID: 7, IsPublic: public}
}

func anonCtx(public bool) permission.Context {
	return permission.Context{Authenticated: false, OwnerID: 7, IsPublic: public}
}

func TestFlipbookVisibility(t *testing.T) {
	cases := []struct {
		name string
		ctx  permission.Context
		want bool
	}{
		{"owner private", ownerCtx(false), true},
		{"owner public", ownerCtx(true), true},
		{"stranger private", strangerCtx(false), false},
		{"stranger public", strangerCtx(true), true},
		{"anon private", anonCtx(false), false},
		{"anon public", anonCtx(true), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := permission.CanView(tc.ctx); got != tc.want {
				t.Fatalf("CanView = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEditAndDeleteIgnorePublicFlag(t *testing.T) {
	// Ownership is the only thing that grants writes; the public flag must
	// not leak write access.
	for _, public := range []bool{true, false} {
		if !permission.CanEdit(ownerCtx(public)) {
			t.Fatalf("owner cannot edit (public=%v)", public)
		}
		if !permission.CanDelete(ownerCtx(public)) {
			t.Fatalf("owner cannot delete (public=%v)", public)
		}
		if permission.CanEdit(strangerCtx(public)) {
			t.Fatalf("stranger can edit (public=%v)", public)
		}
		if permission.CanDelete(anonCtx(public)) {
			t.Fatalf("anon can delete (public=%v)", public)
		}
	}
}

func TestDenialReasons(t *testing.T) {
	cases := []struct {
		name     string
		resource permission.Resource
		action   permission.Action
		ctx      permission.Context
		want     permission.Reason
	}{
		{"anon edit", permission.ResourceFlipbook, permission.ActionUpdate, anonCtx(true), permission.ReasonRequiresAuth},
		{"stranger edit", permission.ResourceFlipbook, permission.ActionUpdate, strangerCtx(true), permission.ReasonRequiresOwnership},
		{"stranger reads views", permission.ResourceFlipbookView, permission.ActionSelect, strangerCtx(true), permission.ReasonRequiresOwnership},
		{"anon records view", permission.ResourceFlipbookView, permission.ActionInsert, anonCtx(true), permission.ReasonRequiresAuth},
		{"role table", permission.ResourceRole, permission.ActionUpdate, ownerCtx(false), permission.ReasonRequiresRole},
		{"profile delete", permission.ResourceProfile, permission.ActionDelete, ownerCtx(false), permission.ReasonRequiresRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := permission.Validate(tc.resource, tc.action, tc.ctx)
			if res.Allowed {
				t.Fatal("expected denial")
			}
			if res.Reason != tc.want {
				t.Fatalf("reason = %q, want %q", res.Reason, tc.want)
			}
		})
	}
}

func TestViewEventInsert(t *testing.T) {
	cases := []struct {
		name string
		ctx  permission.Context
		want bool
	}{
		{"authed on public", strangerCtx(true), true},
		{"authed on private", strangerCtx(false), false},
		{"owner on private", ownerCtx(false), true},
		{"anon on public", anonCtx(true), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := permission.Validate(permission.ResourceFlipbookView, permission.ActionInsert, tc.ctx)
			if res.Allowed != tc.want {
				t.Fatalf("allowed = %v, want %v", res.Allowed, tc.want)
			}
		})
	}
}

func TestProfileRows(t *testing.T) {
	if !permission.Validate(permission.ResourceProfile, permission.ActionSelect, ownerCtx(false)).Allowed {
		t.Fatal("owner cannot read own profile")
	}
	if !permission.Validate(permission.ResourceProfile, permission.ActionUpdate, ownerCtx(false)).Allowed {
		t.Fatal("owner cannot update own profile")
	}
	if permission.Validate(permission.ResourceProfile, permission.ActionSelect, strangerCtx(false)).Allowed {
		t.Fatal("stranger can read someone else's profile")
	}
}

func TestStorageObjects(t *testing.T) {
	// Buckets are publicly readable but owner-writable.
	if !permission.Validate(permission.ResourceStorageObject, permission.ActionSelect, anonCtx(false)).Allowed {
		t.Fatal("public bucket read denied")
	}
	if permission.Validate(permission.ResourceStorageObject, permission.ActionInsert, strangerCtx(false)).Allowed {
		t.Fatal("write outside own prefix allowed")
	}
	if !permission.Validate(permission.ResourceStorageObject, permission.ActionDelete, ownerCtx(false)).Allowed {
		t.Fatal("owner delete under own prefix denied")
	}
}
