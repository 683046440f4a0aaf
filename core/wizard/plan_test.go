package wizard

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-studio/core/module"
)

func project(t *testing.T, d Data) Plan {
	t.Helper()

	p, err := Project(d)
	if err != nil {
		t.Fatalf("projecting: %v", err)
	}
	return p
}

func TestProjectSingleNewModule(t *testing.T) {
	d, _ := addModule(t, New(), "M1", textLesson("L1"), quizLesson("L2"))

	p := project(t, d)

	if len(p.Attach) != 0 || len(p.Update) != 0 {
		t.Fatalf("expected only creations, got %+v", p)
	}
	if len(p.Create) != 1 {
		t.Fatalf("expected one creation, got %d", len(p.Create))
	}

	c := p.Create[0]
	if c.Title != "M1" || c.Order != 1 || len(c.Lessons) != 2 {
		t.Fatalf("unexpected creation %+v", c)
	}
	if c.Lessons[0].Title != "L1" || c.Lessons[0].Order != 1 || c.Lessons[1].Order != 2 {
		t.Fatalf("unexpected lessons %+v", c.Lessons)
	}
}

func TestProjectAfterMove(t *testing.T) {
	d := selectModule(t, New(), 5)
	d, _ = addModule(t, d, "M1")

	d, err := d.MoveModule(0, 1)
	if err != nil {
		t.Fatal(err)
	}

	p := project(t, d)

	if diff := cmp.Diff([]module.Attach{{ModuleID: 5, Order: 2}}, p.Attach); diff != "" {
		t.Fatalf("unexpected attachments (-want +got):\n%s", diff)
	}
	if len(p.Create) != 1 || p.Create[0].Order != 1 {
		t.Fatalf("unexpected creations %+v", p.Create)
	}
}

func TestProjectOrdersAreGlobal(t *testing.T) {
	d := Hydrate(sampleCourse(), sampleModules())
	d = selectModule(t, d, 40)
	d, _ = addModule(t, d, "M-new", textLesson("N1"))
	d = selectModule(t, d, 41)

	var err error
	if d, err = d.MoveModule(4, 0); err != nil {
		t.Fatal(err)
	}
	if d, err = d.MoveModule(3, 1); err != nil {
		t.Fatal(err)
	}

	p := project(t, d)

	if p.Len() != len(d.Order) {
		t.Fatalf("expected %d planned modules, got %d", len(d.Order), p.Len())
	}

	byOrder := map[int]string{}
	for _, a := range p.Attach {
		byOrder[a.Order] = existingKey(a.ModuleID)
	}
	for _, u := range p.Update {
		byOrder[u.Order] = copiedKey(u.ID)
	}
	for _, c := range p.Create {
		byOrder[c.Order] = "new:" + c.Title
	}

	var orders []int
	for o := range byOrder {
		orders = append(orders, o)
	}
	sort.Ints(orders)
	for i, o := range orders {
		if o != i+1 {
			t.Fatalf("orders must be 1..%d, got %v", len(d.Order), orders)
		}
	}

	for i, e := range d.Order {
		got := byOrder[i+1]
		want := e.Key
		if e.Kind == KindNew {
			want = "new:M-new"
		}
		if got != want {
			t.Fatalf("position %d: expected %s, got %s", i+1, want, got)
		}
	}

	for _, batch := range [][]int{attachOrders(p), updateOrders(p), createOrders(p)} {
		if !sort.IntsAreSorted(batch) {
			t.Fatalf("batches must preserve sequence order, got %v", batch)
		}
	}
}

func attachOrders(p Plan) []int {
	var os []int
	for _, a := range p.Attach {
		os = append(os, a.Order)
	}
	return os
}

func updateOrders(p Plan) []int {
	var os []int
	for _, u := range p.Update {
		os = append(os, u.Order)
	}
	return os
}

func createOrders(p Plan) []int {
	var os []int
	for _, c := range p.Create {
		os = append(os, c.Order)
	}
	return os
}

func TestProjectRenumbersLessons(t *testing.T) {
	d, key := addModule(t, New(), "M1", textLesson("L1"), textLesson("L2"), textLesson("L3"))

	d, err := d.MoveLesson(key, 0, 2)
	if err != nil {
		t.Fatal(err)
	}

	p := project(t, d)

	var got []string
	for i, l := range p.Create[0].Lessons {
		if l.Order != i+1 {
			t.Fatalf("lesson %q: expected order %d, got %d", l.Title, i+1, l.Order)
		}
		got = append(got, l.Title)
	}
	if diff := cmp.Diff([]string{"L2", "L3", "L1"}, got); diff != "" {
		t.Fatalf("unexpected lessons (-want +got):\n%s", diff)
	}

	if d.Drafts[0].Lessons[0].Order != 2 {
		t.Fatal("projecting must not renumber the wizard itself")
	}
}

func TestProjectEmpty(t *testing.T) {
	p := project(t, New())
	if p.Len() != 0 {
		t.Fatalf("expected an empty plan, got %+v", p)
	}
}

func TestProjectInconsistent(t *testing.T) {
	d := selectModule(t, New(), 5)
	d.Order = append(d.Order, Entry{Key: "course-x", Kind: KindCopied, ModuleID: 0})

	if _, err := Project(d); !errors.Is(err, ErrInconsistent) {
		t.Fatalf("expected ErrInconsistent, got %v", err)
	}
}
