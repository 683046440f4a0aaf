package wizard

import (
	"sort"

	"github.com/irsalhamdi/course-studio/core/lesson"
	"github.com/irsalhamdi/course-studio/core/module"
)

type LessonView struct {
	Key         string         `json:"key"`
	LessonID    int            `json:"lesson_id,omitempty"`
	Title       string         `json:"title"`
	Type        lesson.Type    `json:"type"`
	Description string         `json:"description"`
	Content     lesson.Content `json:"content"`
}

// View is a module as it is rendered in the wizard, whatever its source.
type View struct {
	Key         string       `json:"key"`
	Kind        Kind         `json:"kind"`
	ModuleID    int          `json:"module_id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Lessons     []LessonView `json:"lessons"`
}

// Build resolves the module sequence of d against the teacher's catalog.
// Entries that resolve to nothing are left out: the catalog is fetched
// separately and may lag behind the selection.
func Build(d Data, catalog []module.Module) []View {
	byID := make(map[int]module.Module, len(catalog))
	for _, m := range catalog {
		byID[m.ID] = m
	}

	drafts := make(map[string]Draft, len(d.Drafts))
	for _, dr := range d.Drafts {
		drafts[dr.Key] = dr
	}

	views := make([]View, 0, len(d.Order))
	for _, e := range d.Order {
		switch e.Kind {
		case KindExisting:
			m, ok := byID[e.ModuleID]
			if !ok {
				continue
			}
			views = append(views, catalogView(e, m))

		case KindCopied, KindNew:
			dr, ok := drafts[e.Key]
			if !ok {
				continue
			}
			views = append(views, draftView(e, dr))
		}
	}
	return views
}

func catalogView(e Entry, m module.Module) View {
	ls := append([]lesson.Lesson(nil), m.Lessons...)
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].Order < ls[j].Order })

	v := View{
		Key:         e.Key,
		Kind:        e.Kind,
		ModuleID:    m.ID,
		Title:       m.Title,
		Description: m.Description,
		Lessons:     make([]LessonView, 0, len(ls)),
	}
	for _, l := range ls {
		v.Lessons = append(v.Lessons, LessonView{
			Key:         existingLessonKey(l.ID),
			LessonID:    l.ID,
			Title:       l.Title,
			Type:        l.Type,
			Description: l.Description,
			Content:     cloneContent(l.Content),
		})
	}
	return v
}

func draftView(e Entry, dr Draft) View {
	v := View{
		Key:         e.Key,
		Kind:        e.Kind,
		ModuleID:    e.ModuleID,
		Title:       dr.Title,
		Description: dr.Description,
		Lessons:     make([]LessonView, 0, len(dr.Lessons)),
	}
	for _, l := range dr.Lessons {
		v.Lessons = append(v.Lessons, LessonView{
			Key:         l.Key,
			LessonID:    l.LessonID,
			Title:       l.Title,
			Type:        l.Type,
			Description: l.Description,
			Content:     cloneContent(l.Content),
		})
	}
	return v
}
