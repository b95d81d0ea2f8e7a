package engine

import (
	"errors"
	"fmt"

	"github.com/sethgrid/watchbuddy/internal/pet"
)

// SelectAction records a pending action. Feed and play need an item of the
// matching category with stock left. Clean and sleep ignore item.
// Selecting ActionNone is the same as CancelAction.
func (e *Engine) SelectAction(action pet.Action, item *pet.Item) (Outcome, error) {
	if action == pet.ActionNone {
		return e.CancelAction(), nil
	}
	return e.mutate("select", func(s *pet.State, out *Outcome) error {
		switch action {
		case pet.ActionFeed:
			if item == nil || item.Category != pet.CategoryFood {
				return fmt.Errorf("select feed: %w", ErrItemRequired)
			}
			if s.Stock(*item) <= 0 {
				return fmt.Errorf("select %s: %w", item.Label(), pet.ErrInsufficientStock)
			}
			food := item.Food
			s.ClearAction()
			s.ActiveAction = action
			s.SelectedFood = &food
			out.Item = item
		case pet.ActionPlay:
			if item == nil || item.Category != pet.CategoryToy {
				return fmt.Errorf("select play: %w", ErrItemRequired)
			}
			if s.Stock(*item) <= 0 {
				return fmt.Errorf("select %s: %w", item.Label(), pet.ErrInsufficientStock)
			}
			toy := item.Toy
			s.ClearAction()
			s.ActiveAction = action
			s.SelectedToy = &toy
			out.Item = item
		case pet.ActionClean, pet.ActionSleep:
			s.ClearAction()
			s.ActiveAction = action
		default:
			return fmt.Errorf("unknown action %q", action)
		}
		return nil
	})
}

func (e *Engine) CancelAction() Outcome {
	out, _ := e.mutate("cancel", func(s *pet.State, _ *Outcome) error {
		s.ClearAction()
		return nil
	})
	return out
}

// PerformActiveAction runs the pending action once, as a tap on the pet.
//
// Clean stays selected so it can be repeated. Sleep is cleared after one
// use. Feed and play stay selected until the item runs out, at which point
// the action is cleared and Outcome.RanOut is set.
func (e *Engine) PerformActiveAction() (Outcome, error) {
	out, err := e.mutate("tap", func(s *pet.State, out *Outcome) error {
		switch s.ActiveAction {
		case pet.ActionFeed:
			if s.SelectedFood == nil {
				return ErrItemRequired
			}
			item := pet.FoodItem(*s.SelectedFood)
			out.Item = &item
			if err := s.Feed(item.Food); err != nil {
				return err
			}
			out.Effect = EffectFeed
			out.RanOut = clearIfExhausted(s, item)
		case pet.ActionPlay:
			if s.SelectedToy == nil {
				return ErrItemRequired
			}
			item := pet.ToyItem(*s.SelectedToy)
			out.Item = &item
			if err := s.Play(item.Toy); err != nil {
				return err
			}
			out.Effect = EffectPlay
			out.RanOut = clearIfExhausted(s, item)
		case pet.ActionClean:
			s.Clean()
			out.Effect = EffectClean
		case pet.ActionSleep:
			s.Sleep()
			s.ClearAction()
			out.Effect = EffectSleep
		default:
			return ErrNoActiveAction
		}
		return nil
	})
	if errors.Is(err, pet.ErrInsufficientStock) {
		// A stale selection with nothing left behind it; drop it.
		cleared := e.CancelAction()
		cleared.RanOut = true
		return cleared, err
	}
	return out, err
}

// clearIfExhausted drops the pending action once its item has no stock left.
func clearIfExhausted(s *pet.State, item pet.Item) bool {
	if s.Stock(item) > 0 {
		return false
	}
	s.ClearAction()
	return true
}
