package course

import "time"

type Difficulty string

const (
	Beginner     Difficulty = "BEGINNER"
	Intermediate Difficulty = "INTERMEDIATE"
	Advanced     Difficulty = "ADVANCED"
)

type Category string

const (
	Programming Category = "PROGRAMMING"
	Design      Category = "DESIGN"
	Business    Category = "BUSINESS"
	Marketing   Category = "MARKETING"
	Music       Category = "MUSIC"
	Language    Category = "LANGUAGE"
	Other       Category = "OTHER"
)

type Course struct {
	ID           int        `json:"id"`
	TeacherID    int        `json:"teacher_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Price        int        `json:"price"`
	TrailerURL   string     `json:"trailer_url"`
	ThumbnailURL string     `json:"thumbnail_url"`
	Difficulty   Difficulty `json:"difficulty"`
	Category     Category   `json:"category"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CourseNew struct {
	TeacherID    int        `json:"teacher_id" validate:"required,gt=0"`
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description" validate:"required"`
	Price        int        `json:"price" validate:"gte=0,lte=10000"`
	TrailerURL   string     `json:"trailer_url" validate:"omitempty,url"`
	ThumbnailURL string     `json:"thumbnail_url" validate:"omitempty,url"`
	Difficulty   Difficulty `json:"difficulty" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Category     Category   `json:"category" validate:"required,oneof=PROGRAMMING DESIGN BUSINESS MARKETING MUSIC LANGUAGE OTHER"`
}

type CourseUp struct {
	Title        *string     `json:"title,omitempty"`
	Description  *string     `json:"description,omitempty"`
	Price        *int        `json:"price,omitempty" validate:"omitempty,gte=0,lte=10000"`
	TrailerURL   *string     `json:"trailer_url,omitempty" validate:"omitempty,url"`
	ThumbnailURL *string     `json:"thumbnail_url,omitempty" validate:"omitempty,url"`
	Difficulty   *Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Category     *Category   `json:"category,omitempty" validate:"omitempty,oneof=PROGRAMMING DESIGN BUSINESS MARKETING MUSIC LANGUAGE OTHER"`
}
