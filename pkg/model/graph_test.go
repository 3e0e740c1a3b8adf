package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

func TestFindCycle(t *testing.T) {
	acyclic := []model.Dependency{
		{DependentField: "model", ParentField: "make"},
		{DependentField: "trim", ParentField: "model"},
		{DependentField: "trim", ParentField: "make"},
	}
	if cycle := model.FindCycle(acyclic); cycle != nil {
		t.Fatalf("expected no cycle, got %v", cycle)
	}

	self := []model.Dependency{{DependentField: "make", ParentField: "make"}}
	if cycle := model.FindCycle(self); cycle != nil {
		t.Fatalf("self dependencies are reported elsewhere, got %v", cycle)
	}

	cyclic := []model.Dependency{
		{DependentField: "b", ParentField: "a"},
		{DependentField: "c", ParentField: "b"},
		{DependentField: "a", ParentField: "c"},
	}
	want := []string{"a", "b", "c", "a"}
	if diff := cmp.Diff(want, model.FindCycle(cyclic)); diff != "" {
		t.Fatalf("cycle mismatch (-want +got):\n%s", diff)
	}
}
