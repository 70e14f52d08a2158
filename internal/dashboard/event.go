package dashboard

import "unigang/annex/internal/models"

type Event interface {
	isEvent()
}

type ViewHint struct{ Hint string }

type NewAd struct{}

type Edit struct{ Record models.Listing }

type Submit struct{ Draft models.ListingDraft }

type Cancel struct{}

// Delete removes ID only when Confirmed; an unconfirmed delete changes nothing.
type Delete struct {
	ID        string
	Confirmed bool
}

type Logout struct{}

type Login struct{ Hint string }

func (ViewHint) isEvent() {}
func (NewAd) isEvent()    {}
func (Edit) isEvent()     {}
func (Submit) isEvent()   {}
func (Cancel) isEvent()   {}
func (Delete) isEvent()   {}
func (Logout) isEvent()   {}
func (Login) isEvent()    {}

type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectCreate
	EffectUpdate
	EffectDelete
)

func (k EffectKind) String() string {
	switch k {
	case EffectCreate:
		return "create"
	case EffectUpdate:
		return "update"
	case EffectDelete:
		return "delete"
	default:
		return "none"
	}
}

// Effect is the catalog change a transition asks for.
type Effect struct {
	Kind  EffectKind
	ID    string
	Draft models.ListingDraft
}
