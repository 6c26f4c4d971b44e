package warehouse

import "testing"

type TickCounter struct {
	Value int
}

func TestResourceSetGetHasRemove(t *testing.T) {
	universe := Factory.NewUniverse()
	resources := universe.Resources()
	tickComp := FactoryNewComponent[TickCounter]()

	if HasResource(resources, tickComp) {
		t.Fatalf("HasResource() before SetResource should be false")
	}

	if err := SetResource(resources, tickComp, TickCounter{Value: 1}); err != nil {
		t.Fatalf("SetResource() error = %v", err)
	}
	if !HasResource(resources, tickComp) {
		t.Fatalf("HasResource() after SetResource should be true")
	}

	ptr, err := GetResource(resources, tickComp)
	if err != nil {
		t.Fatalf("GetResource() error = %v", err)
	}
	if ptr.Value != 1 {
		t.Errorf("GetResource() = %+v, want Value=1", ptr)
	}

	// SetResource again should overwrite in place, not duplicate.
	if err := SetResource(resources, tickComp, TickCounter{Value: 2}); err != nil {
		t.Fatalf("SetResource() (overwrite) error = %v", err)
	}
	ptr2, _ := GetResource(resources, tickComp)
	if ptr2.Value != 2 {
		t.Errorf("GetResource() after overwrite = %+v, want Value=2", ptr2)
	}

	if err := RemoveResource(resources, tickComp); err != nil {
		t.Fatalf("RemoveResource() error = %v", err)
	}
	if HasResource(resources, tickComp) {
		t.Errorf("HasResource() after RemoveResource should be false")
	}
}

func TestResourcesIsolatedPerUniverse(t *testing.T) {
	u1 := Factory.NewUniverse()
	u2 := Factory.NewUniverse()
	tickComp := FactoryNewComponent[TickCounter]()

	if err := SetResource(u1.Resources(), tickComp, TickCounter{Value: 5}); err != nil {
		t.Fatalf("SetResource() error = %v", err)
	}
	if HasResource(u2.Resources(), tickComp) {
		t.Errorf("HasResource() on a separate Universe's resources should be false")
	}
}
