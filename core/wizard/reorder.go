package wizard

import "fmt"

// move takes the element at from out of s and reinserts it at to. s is
// modified in place.
func move[T any](s []T, from, to int) error {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return fmt.Errorf("moving %d to %d in %d elements: %w", from, to, len(s), ErrIndex)
	}

	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
	return nil
}

// MoveModule moves the module at position from to position to. Order numbers
// are left alone; they are derived when the state is projected.
func (d Data) MoveModule(from, to int) (Data, error) {
	if from == to && from >= 0 && from < len(d.Order) {
		return d, nil
	}

	c := d.clone()
	if err := move(c.Order, from, to); err != nil {
		return d, err
	}
	return c, nil
}

// MoveLesson moves a lesson of the draft at moduleKey. Catalog modules have
// no editable lessons, so their keys are not found.
func (d Data) MoveLesson(moduleKey string, from, to int) (Data, error) {
	i := d.draftIndex(moduleKey)
	if i < 0 {
		return d, fmt.Errorf("module[%s]: %w", moduleKey, ErrNotFound)
	}
	if from == to && from >= 0 && from < len(d.Drafts[i].Lessons) {
		return d, nil
	}

	c := d.clone()
	if err := move(c.Drafts[i].Lessons, from, to); err != nil {
		return d, fmt.Errorf("module[%s]: %w", moduleKey, err)
	}
	return c, nil
}
