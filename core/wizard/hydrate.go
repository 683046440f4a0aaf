package wizard

import (
	"sort"

	"github.com/irsalhamdi/course-studio/core/course"
	"github.com/irsalhamdi/course-studio/core/lesson"
	"github.com/irsalhamdi/course-studio/core/module"
)

// Hydrate builds the edit flow state of a course. Its modules become copied
// drafts, so their content can be edited and is persisted with updates.
func Hydrate(c course.Course, modules []module.Module) Data {
	d := Data{
		CourseID:     c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Price:        c.Price,
		TrailerURL:   c.TrailerURL,
		ThumbnailURL: c.ThumbnailURL,
		Difficulty:   c.Difficulty,
		Category:     c.Category,
		Selected:     []int{},
		Drafts:       make([]Draft, 0, len(modules)),
		Order:        make([]Entry, 0, len(modules)),
	}

	ms := append([]module.Module(nil), modules...)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Order < ms[j].Order })

	for _, m := range ms {
		key := copiedKey(m.ID)

		ls := append([]lesson.Lesson(nil), m.Lessons...)
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].Order < ls[j].Order })

		dr := Draft{
			Key:         key,
			Title:       m.Title,
			Description: m.Description,
			Lessons:     make([]LessonDraft, 0, len(ls)),
		}
		for _, l := range ls {
			dr.Lessons = append(dr.Lessons, LessonDraft{
				Key:         existingLessonKey(l.ID),
				LessonID:    l.ID,
				Title:       l.Title,
				Type:        l.Type,
				Description: l.Description,
				Content:     cloneContent(l.Content),
				Order:       l.Order,
			})
		}

		d.Drafts = append(d.Drafts, dr)
		d.Order = append(d.Order, Entry{Key: key, Kind: KindCopied, ModuleID: m.ID})
	}

	return d
}
