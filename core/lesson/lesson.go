package lesson

import (
	"errors"
	"fmt"
	"time"
)

type Type string

const (
	Video Type = "VIDEO"
	Quiz  Type = "QUIZ"
	Text  Type = "TEXT"
)

// Question is a single multiple choice quiz entry. Answer indexes Options.
type Question struct {
	Prompt  string   `json:"prompt" validate:"required"`
	Options []string `json:"options" validate:"min=2,dive,required"`
	Answer  int      `json:"answer" validate:"gte=0"`
}

// Content is the type-tagged payload of a lesson. Only the field matching
// the lesson Type is meaningful.
type Content struct {
	VideoURL  string     `json:"video_url,omitempty"`
	Questions []Question `json:"questions,omitempty"`
	Text      string     `json:"text,omitempty"`
}

type Lesson struct {
	ID          int       `json:"id"`
	ModuleID    int       `json:"module_id"`
	Title       string    `json:"title"`
	Type        Type      `json:"type"`
	Description string    `json:"description"`
	Content     Content   `json:"content"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LessonNew struct {
	ModuleID    int     `json:"module_id,omitempty"`
	Title       string  `json:"title" validate:"required"`
	Type        Type    `json:"type" validate:"required,oneof=VIDEO QUIZ TEXT"`
	Description string  `json:"description"`
	Content     Content `json:"content"`
	Order       int     `json:"order,omitempty" validate:"gte=0"`
}

type LessonUp struct {
	Title       *string  `json:"title,omitempty"`
	Type        *Type    `json:"type,omitempty" validate:"omitempty,oneof=VIDEO QUIZ TEXT"`
	Description *string  `json:"description,omitempty"`
	Content     *Content `json:"content,omitempty"`
	Order       *int     `json:"order,omitempty" validate:"omitempty,gte=0"`
}

var (
	ErrMissingVideo     = errors.New("video lessons need a video url")
	ErrMissingQuestions = errors.New("quiz lessons need at least one question")
	ErrMissingText      = errors.New("text lessons need some text")
)

// Check reports whether c carries the payload a lesson of type t requires.
func (c Content) Check(t Type) error {
	switch t {
	case Video:
		if c.VideoURL == "" {
			return ErrMissingVideo
		}
	case Quiz:
		if len(c.Questions) == 0 {
			return ErrMissingQuestions
		}
		for i, q := range c.Questions {
			if q.Answer < 0 || q.Answer >= len(q.Options) {
				return fmt.Errorf("question %d: answer %d is not one of its %d options", i+1, q.Answer, len(q.Options))
			}
		}
	case Text:
		if c.Text == "" {
			return ErrMissingText
		}
	default:
		return fmt.Errorf("unknown lesson type %q", t)
	}
	return nil
}
