package domain

import "testing"

func TestPolicy_IsAdmin(t *testing.T) {
	pol := NewPolicy("root@taskhub.local")

	if !pol.IsAdmin(Principal{ID: "u1", Role: RoleAdmin}) {
		t.Fatalf("expected admin principal to be admin")
	}
	if pol.IsAdmin(Principal{ID: "u1", Role: RoleUser}) {
		t.Fatalf("expected user principal not to be admin")
	}
	if pol.IsAdmin(Principal{}) {
		t.Fatalf("expected empty principal not to be admin")
	}
}

func TestPolicy_IsSelfAndIsOwner(t *testing.T) {
	pol := NewPolicy("root@taskhub.local")
	p := Principal{ID: "u1", Role: RoleUser}

	if !pol.IsSelf(p, "u1") {
		t.Fatalf("expected principal to be self")
	}
	if pol.IsSelf(p, "u2") {
		t.Fatalf("expected principal not to be self for another id")
	}
	if pol.IsSelf(Principal{}, "") {
		t.Fatalf("empty principal must never match")
	}

	if !pol.IsOwner(p, "u1") {
		t.Fatalf("expected principal to own its resource")
	}
	if pol.IsOwner(p, "u2") {
		t.Fatalf("expected principal not to own another user's resource")
	}
	if pol.IsOwner(Principal{}, "") {
		t.Fatalf("empty principal must never own")
	}
}

func TestPolicy_IsPrimaryAdmin(t *testing.T) {
	pol := NewPolicy("Root@TaskHub.Local")

	if !pol.IsPrimaryAdmin(&User{Email: "root@taskhub.local"}) {
		t.Fatalf("expected case-insensitive match on primary admin email")
	}
	if !pol.IsPrimaryAdmin(&User{Email: "  ROOT@taskhub.local "}) {
		t.Fatalf("expected normalized match on primary admin email")
	}
	if pol.IsPrimaryAdmin(&User{Email: "other@taskhub.local"}) {
		t.Fatalf("expected non-primary email not to match")
	}
	if pol.IsPrimaryAdmin(nil) {
		t.Fatalf("nil user must not be primary admin")
	}
}

func TestPolicy_CanAccessTask(t *testing.T) {
	pol := NewPolicy("root@taskhub.local")
	task := &Task{ID: "t1", OwnerID: "u1"}

	cases := []struct {
		name string
		p    Principal
		want bool
	}{
		{"owner", Principal{ID: "u1", Role: RoleUser}, true},
		{"admin non-owner", Principal{ID: "u2", Role: RoleAdmin}, true},
		{"stranger", Principal{ID: "u2", Role: RoleUser}, false},
		{"empty principal", Principal{}, false},
	}

	for _, tc := range cases {
		if got := pol.CanAccessTask(tc.p, task); got != tc.want {
			t.Errorf("%s: CanAccessTask = %v, want %v", tc.name, got, tc.want)
		}
	}

	if pol.CanAccessTask(Principal{ID: "u1", Role: RoleAdmin}, nil) {
		t.Fatalf("nil task must never be accessible")
	}
}

func TestTaskStatus_IsValid(t *testing.T) {
	for _, s := range []TaskStatus{StatusToDo, StatusInProgress, StatusDone} {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []TaskStatus{"", "done", "Cancelled", "TODO"} {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
