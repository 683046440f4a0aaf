package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/irsalhamdi/course-studio/core/lesson"
)

var validate *validator.Validate

var translator ut.Translator

func init() {

	validate = validator.New()

	// Report fields under the name clients send them with.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)
}

func Check(val any) error {
	if err := validate.Struct(val); err != nil {

		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		if len(verrors) < 1 {
			return nil
		}

		return errors.New(verrors[0].Translate(translator))
	}

	return nil
}

// CheckLesson validates a new lesson along with the payload its type needs.
func CheckLesson(nl lesson.LessonNew) error {
	if err := Check(nl); err != nil {
		return err
	}
	for _, q := range nl.Content.Questions {
		if err := Check(q); err != nil {
			return err
		}
	}
	return nl.Content.Check(nl.Type)
}
