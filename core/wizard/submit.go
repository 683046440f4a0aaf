package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/irsalhamdi/course-studio/core/course"
	"github.com/irsalhamdi/course-studio/core/lesson"
	"github.com/irsalhamdi/course-studio/core/module"
	"github.com/sirupsen/logrus"
)

type Courses interface {
	CreateCourse(ctx context.Context, nc course.CourseNew) (course.Course, error)
	UpdateCourse(ctx context.Context, id int, up course.CourseUp) error
}

type Modules interface {
	CreateModule(ctx context.Context, nm module.ModuleNew) (module.Module, error)
	UpdateModule(ctx context.Context, id int, up module.ModuleUp) error
	AttachModule(ctx context.Context, courseID int, at module.Attach) error
}

type Lessons interface {
	CreateLesson(ctx context.Context, nl lesson.LessonNew) (lesson.Lesson, error)
	UpdateLesson(ctx context.Context, id int, up lesson.LessonUp) error
}

var ErrNoTeacher = errors.New("no acting teacher")

// SubmitError is returned when a backend call fails halfway through a
// submission. Calls made before Step stay applied.
type SubmitError struct {
	Step string
	Err  error
}

func (e *SubmitError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

func (e *SubmitError) Unwrap() error { return e.Err }

// Submitter persists a wizard through the backend services, one awaited
// call at a time.
type Submitter struct {
	Courses Courses
	Modules Modules
	Lessons Lessons
	Log     logrus.FieldLogger
}

type run struct {
	*Submitter
	log      logrus.FieldLogger
	courseID int
}

func (r *run) step(name string, fn func() error) error {
	r.log.WithField("step", name).Debug("submitting")
	if err := fn(); err != nil {
		return &SubmitError{Step: name, Err: err}
	}
	return nil
}

// Submit persists d on behalf of teacherID and returns the course id. A
// course is created first when d comes from the create flow.
//
// The calls are made in a fixed order: course fields, catalog attachments,
// updates of the course's own modules, then new modules. The first failure
// stops the run and nothing is rolled back.
func (s *Submitter) Submit(ctx context.Context, teacherID int, d Data) (int, error) {
	if teacherID <= 0 {
		return 0, ErrNoTeacher
	}

	plan, err := Project(d)
	if err != nil {
		return 0, fmt.Errorf("projecting wizard: %w", err)
	}

	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := &run{Submitter: s, log: log.WithField("teacher_id", teacherID), courseID: d.CourseID}

	if r.courseID == 0 {
		err := r.step("create course", func() error {
			c, err := s.Courses.CreateCourse(ctx, newCourse(teacherID, d))
			if err != nil {
				return err
			}
			r.courseID = c.ID
			return nil
		})
		if err != nil {
			return 0, err
		}
		r.log = r.log.WithField("course_id", r.courseID)
	} else {
		r.log = r.log.WithField("course_id", r.courseID)
		err := r.step("update course", func() error {
			return s.Courses.UpdateCourse(ctx, r.courseID, courseUp(d))
		})
		if err != nil {
			return r.courseID, err
		}
	}

	for _, at := range plan.Attach {
		at := at
		err := r.step(fmt.Sprintf("attach module[%d]", at.ModuleID), func() error {
			return s.Modules.AttachModule(ctx, r.courseID, at)
		})
		if err != nil {
			return r.courseID, err
		}
	}

	for _, um := range plan.Update {
		if err := r.update(ctx, um); err != nil {
			return r.courseID, err
		}
	}

	for _, cm := range plan.Create {
		if err := r.create(ctx, teacherID, cm); err != nil {
			return r.courseID, err
		}
	}

	r.log.WithFields(logrus.Fields{
		"modules":  plan.Len(),
		"attached": len(plan.Attach),
		"updated":  len(plan.Update),
		"created":  len(plan.Create),
	}).Info("course submitted")

	return r.courseID, nil
}

func (r *run) update(ctx context.Context, um UpdateModule) error {
	err := r.step(fmt.Sprintf("update module[%d]", um.ID), func() error {
		return r.Modules.UpdateModule(ctx, um.ID, module.ModuleUp{
			Title:       &um.Title,
			Description: &um.Description,
			Order:       &um.Order,
		})
	})
	if err != nil {
		return err
	}

	for _, l := range um.Lessons {
		l := l
		if l.LessonID != 0 {
			err = r.step(fmt.Sprintf("update lesson[%d]", l.LessonID), func() error {
				return r.Lessons.UpdateLesson(ctx, l.LessonID, lessonUp(l))
			})
		} else {
			err = r.step(fmt.Sprintf("create lesson %q of module[%d]", l.Title, um.ID), func() error {
				_, err := r.Lessons.CreateLesson(ctx, lessonNew(um.ID, l))
				return err
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) create(ctx context.Context, teacherID int, cm CreateModule) error {
	var moduleID int
	err := r.step(fmt.Sprintf("create module %q", cm.Title), func() error {
		m, err := r.Modules.CreateModule(ctx, module.ModuleNew{
			TeacherID:   teacherID,
			Title:       cm.Title,
			Description: cm.Description,
			Order:       cm.Order,
		})
		if err != nil {
			return err
		}
		moduleID = m.ID
		return nil
	})
	if err != nil {
		return err
	}

	err = r.step(fmt.Sprintf("attach module[%d]", moduleID), func() error {
		return r.Modules.AttachModule(ctx, r.courseID, module.Attach{ModuleID: moduleID, Order: cm.Order})
	})
	if err != nil {
		return err
	}

	for _, l := range cm.Lessons {
		l := l
		err := r.step(fmt.Sprintf("create lesson %q of module[%d]", l.Title, moduleID), func() error {
			_, err := r.Lessons.CreateLesson(ctx, lessonNew(moduleID, l))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func newCourse(teacherID int, d Data) course.CourseNew {
	return course.CourseNew{
		TeacherID:    teacherID,
		Title:        d.Title,
		Description:  d.Description,
		Price:        d.Price,
		TrailerURL:   d.TrailerURL,
		ThumbnailURL: d.ThumbnailURL,
		Difficulty:   d.Difficulty,
		Category:     d.Category,
	}
}

func courseUp(d Data) course.CourseUp {
	return course.CourseUp{
		Title:        &d.Title,
		Description:  &d.Description,
		Price:        &d.Price,
		TrailerURL:   &d.TrailerURL,
		ThumbnailURL: &d.ThumbnailURL,
		Difficulty:   &d.Difficulty,
		Category:     &d.Category,
	}
}

func lessonNew(moduleID int, l LessonDraft) lesson.LessonNew {
	return lesson.LessonNew{
		ModuleID:    moduleID,
		Title:       l.Title,
		Type:        l.Type,
		Description: l.Description,
		Content:     l.Content,
		Order:       l.Order,
	}
}

func lessonUp(l LessonDraft) lesson.LessonUp {
	return lesson.LessonUp{
		Title:       &l.Title,
		Type:        &l.Type,
		Description: &l.Description,
		Content:     &l.Content,
		Order:       &l.Order,
	}
}
