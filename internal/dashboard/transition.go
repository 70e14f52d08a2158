package dashboard

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid dashboard transition")

// Transition computes the next state for ev without side effects. On error the
// returned state is s itself.
func Transition(s State, ev Event) (State, Effect, error) {
	none := Effect{Kind: EffectNone}

	if _, ok := ev.(Logout); ok {
		return LoggedOut{}, none, nil
	}

	if _, gated := s.(LoggedOut); gated {
		if login, ok := ev.(Login); ok {
			return Initial(true, login.Hint), none, nil
		}
		return s, none, invalid(s, ev)
	}

	switch ev := ev.(type) {
	case ViewHint:
		if ev.Hint == HintMyAds {
			return List{}, none, nil
		}
		return s, none, nil

	case NewAd:
		if _, ok := s.(List); ok {
			return FormCreate{}, none, nil
		}

	case Edit:
		if _, ok := s.(List); ok {
			return FormEdit{Target: ev.Record.Clone()}, none, nil
		}

	case Submit:
		var effect Effect
		switch cur := s.(type) {
		case FormCreate:
			effect = Effect{Kind: EffectCreate}
		case FormEdit:
			effect = Effect{Kind: EffectUpdate, ID: cur.Target.ID}
		default:
			return s, none, invalid(s, ev)
		}
		draft := ev.Draft.Normalize()
		if err := draft.Validate(); err != nil {
			return s, none, err
		}
		effect.Draft = draft
		return List{}, effect, nil

	case Cancel:
		switch s.(type) {
		case FormCreate, FormEdit:
			return List{}, none, nil
		}

	case Delete:
		if _, ok := s.(List); ok {
			if !ev.Confirmed {
				return s, none, nil
			}
			return s, Effect{Kind: EffectDelete, ID: ev.ID}, nil
		}
	}

	return s, none, invalid(s, ev)
}

func invalid(s State, ev Event) error {
	return fmt.Errorf("%w: %T in %s", ErrInvalidTransition, ev, s.Kind())
}
