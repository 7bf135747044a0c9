package model

import "testing"

func TestKey_String(t *testing.T) {
	k := Key{Source: SourceAzure, NativeID: "/subscriptions/x/vm-1"}
	if got := k.String(); got != "azure//subscriptions/x/vm-1" {
		t.Errorf("String() = %q", got)
	}
}

func TestResource_AddHintDeduplicates(t *testing.T) {
	r := &Resource{}
	r.AddHint("VM-1")
	r.AddHint("vm-1")
	r.AddHint("")
	r.AddHint("10.0.0.1")

	if len(r.IdentityHints) != 2 {
		t.Errorf("hints = %v, want case-insensitive dedup and no empties", r.IdentityHints)
	}
	if !r.HasHint("vm-1") || !r.HasHint("VM-1") {
		t.Error("HasHint() must be case-insensitive")
	}
	if r.HasHint("vm-2") {
		t.Error("HasHint() matched an absent hint")
	}
}

func TestSortResources(t *testing.T) {
	resources := []Resource{
		{Key: Key{Source: SourceTerraform, NativeID: "b"}},
		{Key: Key{Source: SourceAzure, NativeID: "z"}},
		{Key: Key{Source: SourceAzure, NativeID: "a"}},
	}
	SortResources(resources)

	want := []Key{
		{Source: SourceAzure, NativeID: "a"},
		{Source: SourceAzure, NativeID: "z"},
		{Source: SourceTerraform, NativeID: "b"},
	}
	for i, k := range want {
		if resources[i].Key != k {
			t.Errorf("resources[%d].Key = %v, want %v", i, resources[i].Key, k)
		}
	}
}

func TestRelationship_PairKeyIsOrderFree(t *testing.T) {
	a := Key{Source: SourceAzure, NativeID: "vm-1"}
	b := Key{Source: SourceTerraform, NativeID: "vm.one"}

	forward := Relationship{From: a, To: b, Type: RelIdentityMatch}
	backward := Relationship{From: b, To: a, Type: RelNetworkMatch}

	if forward.PairKey() != backward.PairKey() {
		t.Errorf("pair keys differ: %q vs %q", forward.PairKey(), backward.PairKey())
	}
}
