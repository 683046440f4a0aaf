// Package wizard holds the state of a course authoring session and the
// transformations between that state, the rendered module list and the
// backend calls that persist it.
//
// Every operation on Data is a value-receiver method that returns a new
// Data. The receiver is never modified. A successful result shares no slices
// with it, so callers may keep old values around for undo or diffing. On
// error the receiver is returned unchanged.
package wizard

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/irsalhamdi/course-studio/core/course"
	"github.com/irsalhamdi/course-studio/core/lesson"
	"github.com/irsalhamdi/course-studio/core/module"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrIndex        = errors.New("index out of range")
	ErrInconsistent = errors.New("inconsistent wizard state")
)

// Kind tags the provenance of a module in the wizard.
type Kind string

const (
	// KindExisting references a module of the teacher's catalog by id.
	KindExisting Kind = "existing"
	// KindCopied is a module that already belongs to the course being
	// edited. It is editable like a new one but persisted with updates.
	KindCopied Kind = "copied"
	// KindNew is a module authored in this session.
	KindNew Kind = "new"
)

// Key prefixes. They only make keys readable and unique across kinds;
// routing always goes through Entry.Kind.
const (
	existingPrefix = "existing-"
	copiedPrefix   = "course-"
	newPrefix      = "new-"

	existingLessonPrefix = "lesson-"
	newLessonPrefix      = "new-lesson-"
)

// Entry is one position of the module sequence.
type Entry struct {
	Key  string `json:"key"`
	Kind Kind   `json:"kind"`
	// ModuleID is the catalog id for KindExisting and the persisted module
	// id for KindCopied. It is zero for KindNew.
	ModuleID int `json:"module_id,omitempty"`
}

type LessonDraft struct {
	Key string `json:"key"`
	// LessonID is set when the lesson already exists on the backend.
	LessonID    int            `json:"lesson_id,omitempty"`
	Title       string         `json:"title"`
	Type        lesson.Type    `json:"type"`
	Description string         `json:"description"`
	Content     lesson.Content `json:"content"`
	Order       int            `json:"order"`
}

type Draft struct {
	Key         string        `json:"key"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Lessons     []LessonDraft `json:"lessons"`
}

type Data struct {
	CourseID     int               `json:"course_id,omitempty"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Price        int               `json:"price"`
	TrailerURL   string            `json:"trailer_url"`
	ThumbnailURL string            `json:"thumbnail_url"`
	Difficulty   course.Difficulty `json:"difficulty"`
	Category     course.Category   `json:"category"`

	Selected []int   `json:"selected"`
	Drafts   []Draft `json:"drafts"`
	Order    []Entry `json:"order"`
}

// New returns the state of an empty create flow.
func New() Data {
	return Data{
		Difficulty: course.Beginner,
		Category:   course.Other,
		Selected:   []int{},
		Drafts:     []Draft{},
		Order:      []Entry{},
	}
}

func existingKey(id int) string { return existingPrefix + strconv.Itoa(id) }

func copiedKey(id int) string { return copiedPrefix + strconv.Itoa(id) }

func newKey() string { return newPrefix + uuid.NewString() }

func existingLessonKey(id int) string { return existingLessonPrefix + strconv.Itoa(id) }

func newLessonKey() string { return newLessonPrefix + uuid.NewString() }

func cloneContent(c lesson.Content) lesson.Content {
	if c.Questions == nil {
		return c
	}
	qs := make([]lesson.Question, len(c.Questions))
	for i, q := range c.Questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}
	c.Questions = qs
	return c
}

func cloneDraft(dr Draft) Draft {
	ls := make([]LessonDraft, len(dr.Lessons))
	for i, l := range dr.Lessons {
		l.Content = cloneContent(l.Content)
		ls[i] = l
	}
	dr.Lessons = ls
	return dr
}

func (d Data) clone() Data {
	c := d
	c.Selected = append(make([]int, 0, len(d.Selected)), d.Selected...)
	c.Order = append(make([]Entry, 0, len(d.Order)), d.Order...)
	c.Drafts = make([]Draft, len(d.Drafts))
	for i, dr := range d.Drafts {
		c.Drafts[i] = cloneDraft(dr)
	}
	return c
}

func (d Data) draftIndex(key string) int {
	for i, dr := range d.Drafts {
		if dr.Key == key {
			return i
		}
	}
	return -1
}

func (d Data) entryIndex(key string) int {
	for i, e := range d.Order {
		if e.Key == key {
			return i
		}
	}
	return -1
}

func (d Data) selectedIndex(id int) int {
	for i, s := range d.Selected {
		if s == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}

// Update merges the non-nil fields of up into the basic course fields.
func (d Data) Update(up course.CourseUp) Data {
	c := d.clone()
	if up.Title != nil {
		c.Title = *up.Title
	}
	if up.Description != nil {
		c.Description = *up.Description
	}
	if up.Price != nil {
		c.Price = *up.Price
	}
	if up.TrailerURL != nil {
		c.TrailerURL = *up.TrailerURL
	}
	if up.ThumbnailURL != nil {
		c.ThumbnailURL = *up.ThumbnailURL
	}
	if up.Difficulty != nil {
		c.Difficulty = *up.Difficulty
	}
	if up.Category != nil {
		c.Category = *up.Category
	}
	return c
}

// SelectModule pulls the catalog module id into the course, at the end of
// the sequence. Selecting a module twice, or one the course already holds,
// is a no-op.
func (d Data) SelectModule(id int) (Data, error) {
	if id <= 0 {
		return d, fmt.Errorf("catalog module[%d]: %w", id, ErrNotFound)
	}

	c := d.clone()
	if c.selectedIndex(id) >= 0 || c.holds(id) {
		return c, nil
	}

	c.Selected = append(c.Selected, id)
	c.Order = append(c.Order, Entry{Key: existingKey(id), Kind: KindExisting, ModuleID: id})
	return c, nil
}

// holds reports whether module id is already one of the course's own modules.
func (d Data) holds(id int) bool {
	for _, e := range d.Order {
		if e.Kind == KindCopied && e.ModuleID == id {
			return true
		}
	}
	return false
}

func (d Data) DeselectModule(id int) (Data, error) {
	return d.RemoveModule(existingKey(id))
}

// AddModule appends a freshly authored module and returns its key.
func (d Data) AddModule(nm module.ModuleNew) (Data, string) {
	c := d.clone()
	key := newKey()

	c.Drafts = append(c.Drafts, Draft{
		Key:         key,
		Title:       nm.Title,
		Description: nm.Description,
		Lessons:     []LessonDraft{},
	})
	c.Order = append(c.Order, Entry{Key: key, Kind: KindNew})
	return c, key
}

func (d Data) EditModule(key string, up module.ModuleUp) (Data, error) {
	i := d.draftIndex(key)
	if i < 0 {
		return d, fmt.Errorf("module[%s]: %w", key, ErrNotFound)
	}

	c := d.clone()
	if up.Title != nil {
		c.Drafts[i].Title = *up.Title
	}
	if up.Description != nil {
		c.Drafts[i].Description = *up.Description
	}
	return c, nil
}

// RemoveModule drops the module at key from the sequence, whatever its kind.
func (d Data) RemoveModule(key string) (Data, error) {
	ei := d.entryIndex(key)
	if ei < 0 {
		return d, fmt.Errorf("module[%s]: %w", key, ErrNotFound)
	}

	c := d.clone()
	e := c.Order[ei]
	c.Order = removeAt(c.Order, ei)

	switch e.Kind {
	case KindExisting:
		if si := c.selectedIndex(e.ModuleID); si >= 0 {
			c.Selected = removeAt(c.Selected, si)
		}
	default:
		if di := c.draftIndex(key); di >= 0 {
			c.Drafts = removeAt(c.Drafts, di)
		}
	}
	return c, nil
}

// AddLesson appends a lesson to the draft at moduleKey and returns its key.
func (d Data) AddLesson(moduleKey string, nl lesson.LessonNew) (Data, string, error) {
	i := d.draftIndex(moduleKey)
	if i < 0 {
		return d, "", fmt.Errorf("module[%s]: %w", moduleKey, ErrNotFound)
	}

	c := d.clone()
	key := newLessonKey()
	c.Drafts[i].Lessons = append(c.Drafts[i].Lessons, LessonDraft{
		Key:         key,
		Title:       nl.Title,
		Type:        nl.Type,
		Description: nl.Description,
		Content:     cloneContent(nl.Content),
		Order:       len(c.Drafts[i].Lessons) + 1,
	})
	return c, key, nil
}

func (d Data) lessonIndex(moduleKey, lessonKey string) (int, int, error) {
	i := d.draftIndex(moduleKey)
	if i < 0 {
		return -1, -1, fmt.Errorf("module[%s]: %w", moduleKey, ErrNotFound)
	}
	for j, l := range d.Drafts[i].Lessons {
		if l.Key == lessonKey {
			return i, j, nil
		}
	}
	return -1, -1, fmt.Errorf("lesson[%s] of module[%s]: %w", lessonKey, moduleKey, ErrNotFound)
}

func (d Data) EditLesson(moduleKey, lessonKey string, up lesson.LessonUp) (Data, error) {
	i, j, err := d.lessonIndex(moduleKey, lessonKey)
	if err != nil {
		return d, err
	}

	c := d.clone()
	l := &c.Drafts[i].Lessons[j]
	if up.Title != nil {
		l.Title = *up.Title
	}
	if up.Type != nil {
		l.Type = *up.Type
	}
	if up.Description != nil {
		l.Description = *up.Description
	}
	if up.Content != nil {
		l.Content = cloneContent(*up.Content)
	}
	return c, nil
}

func (d Data) RemoveLesson(moduleKey, lessonKey string) (Data, error) {
	i, j, err := d.lessonIndex(moduleKey, lessonKey)
	if err != nil {
		return d, err
	}

	c := d.clone()
	c.Drafts[i].Lessons = removeAt(c.Drafts[i].Lessons, j)
	return c, nil
}

// Check verifies the invariants tying Order to Selected and Drafts.
func (d Data) Check() error {
	if n := len(d.Selected) + len(d.Drafts); len(d.Order) != n {
		return fmt.Errorf("%w: %d ordered modules for %d selected and drafted", ErrInconsistent, len(d.Order), n)
	}

	selected := make(map[int]bool, len(d.Selected))
	for _, id := range d.Selected {
		if selected[id] {
			return fmt.Errorf("%w: catalog module[%d] selected twice", ErrInconsistent, id)
		}
		selected[id] = true
	}

	drafts := make(map[string]bool, len(d.Drafts))
	for _, dr := range d.Drafts {
		if drafts[dr.Key] {
			return fmt.Errorf("%w: module[%s] drafted twice", ErrInconsistent, dr.Key)
		}
		drafts[dr.Key] = true
	}

	seen := make(map[string]bool, len(d.Order))
	attached := make(map[int]bool, len(d.Order))
	for _, e := range d.Order {
		if seen[e.Key] {
			return fmt.Errorf("%w: module[%s] ordered twice", ErrInconsistent, e.Key)
		}
		seen[e.Key] = true

		switch e.Kind {
		case KindExisting:
			if !selected[e.ModuleID] || attached[e.ModuleID] {
				return fmt.Errorf("%w: catalog module[%d] is not placed exactly once", ErrInconsistent, e.ModuleID)
			}
			attached[e.ModuleID] = true
			continue
		case KindCopied:
			if e.ModuleID <= 0 {
				return fmt.Errorf("%w: copied module[%s] has no module id", ErrInconsistent, e.Key)
			}
			if attached[e.ModuleID] {
				return fmt.Errorf("%w: module[%d] is placed twice", ErrInconsistent, e.ModuleID)
			}
			attached[e.ModuleID] = true
		case KindNew:
			if e.ModuleID != 0 {
				return fmt.Errorf("%w: new module[%s] carries module id %d", ErrInconsistent, e.Key, e.ModuleID)
			}
		default:
			return fmt.Errorf("%w: module[%s] has unknown kind %q", ErrInconsistent, e.Key, e.Kind)
		}

		if !drafts[e.Key] {
			return fmt.Errorf("%w: module[%s] ordered but not drafted", ErrInconsistent, e.Key)
		}
	}
	return nil
}
