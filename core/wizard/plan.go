package wizard

import (
	"fmt"

	"github.com/irsalhamdi/course-studio/core/module"
)

type CreateModule struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Order       int           `json:"order"`
	Lessons     []LessonDraft `json:"lessons"`
}

type UpdateModule struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Order       int           `json:"order"`
	Lessons     []LessonDraft `json:"lessons"`
}

// Plan holds the three call batches that persist a wizard. Every Order is
// the 1-based position of the module in the whole sequence, so batches
// interleave when they are replayed by order.
type Plan struct {
	Attach []module.Attach `json:"attach"`
	Create []CreateModule  `json:"create"`
	Update []UpdateModule  `json:"update"`
}

// Len is the number of modules the plan places in the course.
func (p Plan) Len() int {
	return len(p.Attach) + len(p.Create) + len(p.Update)
}

// Project lowers d into the calls that persist it. It is where order numbers
// are computed, for modules and lessons alike.
func Project(d Data) (Plan, error) {
	if err := d.Check(); err != nil {
		return Plan{}, err
	}

	drafts := make(map[string]Draft, len(d.Drafts))
	for _, dr := range d.Drafts {
		drafts[dr.Key] = dr
	}

	p := Plan{
		Attach: []module.Attach{},
		Create: []CreateModule{},
		Update: []UpdateModule{},
	}

	for i, e := range d.Order {
		order := i + 1

		switch e.Kind {
		case KindExisting:
			p.Attach = append(p.Attach, module.Attach{ModuleID: e.ModuleID, Order: order})

		case KindCopied:
			dr := drafts[e.Key]
			p.Update = append(p.Update, UpdateModule{
				ID:          e.ModuleID,
				Title:       dr.Title,
				Description: dr.Description,
				Order:       order,
				Lessons:     numberLessons(dr.Lessons),
			})

		case KindNew:
			dr := drafts[e.Key]
			p.Create = append(p.Create, CreateModule{
				Title:       dr.Title,
				Description: dr.Description,
				Order:       order,
				Lessons:     numberLessons(dr.Lessons),
			})

		default:
			return Plan{}, fmt.Errorf("%w: module[%s] has unknown kind %q", ErrInconsistent, e.Key, e.Kind)
		}
	}

	return p, nil
}

func numberLessons(ls []LessonDraft) []LessonDraft {
	out := make([]LessonDraft, len(ls))
	for i, l := range ls {
		l.Content = cloneContent(l.Content)
		l.Order = i + 1
		out[i] = l
	}
	return out
}
