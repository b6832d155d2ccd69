package state

import (
	"errors"
	"testing"
)

const (
	stepA1 Step = "apply.source"
	stepA2 Step = "apply.experience"
	stepL1 Step = "link.service"
)

func TestNeverSeenUserIsIdle(t *testing.T) {
	m := NewMemoryManager()
	if st := m.Step(99); st != StepNone {
		t.Fatalf("step = %q, want none", st)
	}
	if m.InProgress(99) {
		t.Fatal("unexpected in-progress")
	}
	if d := m.Data(99); d == nil || len(d) != 0 {
		t.Fatalf("data = %v, want empty map", d)
	}
}

func TestStepsAccumulateWithinDialog(t *testing.T) {
	m := NewMemoryManager()
	m.SetStep(1, stepA1, nil)
	if err := m.Update(1, "source", "friend"); err != nil {
		t.Fatalf("update: %v", err)
	}
	m.SetStep(1, stepA2, nil)
	if err := m.Update(1, "experience", "2 years"); err != nil {
		t.Fatalf("update: %v", err)
	}

	d := m.Data(1)
	if d["source"] != "friend" || d["experience"] != "2 years" {
		t.Fatalf("data = %v", d)
	}
	if m.Step(1) != stepA2 {
		t.Fatalf("step = %q", m.Step(1))
	}
}

func TestSwitchingDialogDiscardsData(t *testing.T) {
	m := NewMemoryManager()
	m.SetStep(1, stepA1, nil)
	_ = m.Update(1, "source", "friend")

	m.SetStep(1, stepL1, map[string]string{"origin": "menu"})
	d := m.Data(1)
	if _, ok := d["source"]; ok {
		t.Fatalf("application data leaked into link dialog: %v", d)
	}
	if d["origin"] != "menu" {
		t.Fatalf("seed not applied: %v", d)
	}
}

func TestSeedIgnoredWithinSameDialog(t *testing.T) {
	m := NewMemoryManager()
	m.SetStep(1, stepA1, map[string]string{"source": "seed"})
	_ = m.Update(1, "source", "typed")
	m.SetStep(1, stepA2, map[string]string{"source": "other"})
	if got := m.Data(1)["source"]; got != "typed" {
		t.Fatalf("source = %q, want typed", got)
	}
}

func TestUpdateWithoutStep(t *testing.T) {
	m := NewMemoryManager()
	if err := m.Update(5, "source", "x"); !errors.Is(err, ErrNoActiveStep) {
		t.Fatalf("err = %v, want ErrNoActiveStep", err)
	}
}

func TestClearAndDataIsCopy(t *testing.T) {
	m := NewMemoryManager()
	m.SetStep(1, stepA1, nil)
	_ = m.Update(1, "source", "friend")

	snap := m.Data(1)
	snap["source"] = "mutated"
	if m.Data(1)["source"] != "friend" {
		t.Fatal("Data must return a copy")
	}

	m.Clear(1)
	if m.InProgress(1) || m.Step(1) != StepNone || len(m.Data(1)) != 0 {
		t.Fatal("clear did not reset session")
	}
	m.SetStep(1, StepNone, nil)
	if m.InProgress(1) {
		t.Fatal("StepNone must not start a session")
	}
}

func TestStepDialog(t *testing.T) {
	cases := map[Step]string{
		"apply.time": "apply",
		"link.price": "link",
		"solo":       "solo",
		StepNone:     "",
	}
	for st, want := range cases {
		if got := st.Dialog(); got != want {
			t.Fatalf("%q.Dialog() = %q, want %q", st, got, want)
		}
	}
}
