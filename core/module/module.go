package module

import (
	"time"

	"github.com/irsalhamdi/course-studio/core/lesson"
)

type Module struct {
	ID          int             `json:"id"`
	TeacherID   int             `json:"teacher_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	Lessons     []lesson.Lesson `json:"lessons"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ModuleNew struct {
	TeacherID   int    `json:"teacher_id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Order       int    `json:"order,omitempty" validate:"gte=0"`
}

type ModuleUp struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Order       *int    `json:"order,omitempty" validate:"omitempty,gte=0"`
}

// Attach binds a module that already exists to a course at the given position.
type Attach struct {
	ModuleID int `json:"module_id" validate:"required,gt=0"`
	Order    int `json:"order" validate:"required,gt=0"`
}
