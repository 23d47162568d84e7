package scope

import "testing"

func TestForUser(t *testing.T) {
	base := uint(3)

	admin := ForUser("admin", nil)
	if admin.Restricted() {
		t.Error("admin scope should be unrestricted")
	}
	if !admin.Allows(1) || !admin.Allows(99) {
		t.Error("admin scope should allow every base")
	}

	commander := ForUser("base_commander", &base)
	if !commander.Allows(3) {
		t.Error("commander should see own base")
	}
	if commander.Allows(4) {
		t.Error("commander should not see other bases")
	}

	// Non-admin with no assigned base gets nothing, not everything
	unassigned := ForUser("logistics_officer", nil)
	if unassigned.Allows(1) || unassigned.Allows(0) {
		t.Error("unassigned non-admin should see no base")
	}
}

func TestNarrow(t *testing.T) {
	admin := Unrestricted()
	narrowed, ok := admin.Narrow(5)
	if !ok {
		t.Fatal("admin should narrow to any base")
	}
	if !narrowed.Allows(5) || narrowed.Allows(6) {
		t.Error("narrowed scope should be pinned to base 5")
	}

	commander := ForBase(2)
	if _, ok := commander.Narrow(3); ok {
		t.Error("restricted caller must not widen to another base")
	}
	same, ok := commander.Narrow(2)
	if !ok || !same.Allows(2) {
		t.Error("restricted caller should narrow to own base")
	}
}

func TestNone(t *testing.T) {
	none := None()
	if !none.Restricted() {
		t.Error("None should be restricted")
	}
	for _, id := range []uint{1, 2, 100} {
		if none.Allows(id) {
			t.Errorf("None should not allow base %d", id)
		}
	}
}
