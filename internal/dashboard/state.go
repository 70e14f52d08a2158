package dashboard

import "unigang/annex/internal/models"

// HintMyAds is the view hint that opens the dashboard on the My-Ads list.
const HintMyAds = "myAds"

type Kind string

const (
	KindLoggedOut  Kind = "login"
	KindFormCreate Kind = "create"
	KindFormEdit   Kind = "edit"
	KindList       Kind = "myAds"
)

// State is one of LoggedOut, FormCreate, FormEdit or List.
type State interface {
	Kind() Kind
	isState()
}

type LoggedOut struct{}

type FormCreate struct{}

// FormEdit carries the record being edited.
type FormEdit struct {
	Target models.Listing
}

type List struct{}

func (LoggedOut) Kind() Kind  { return KindLoggedOut }
func (FormCreate) Kind() Kind { return KindFormCreate }
func (FormEdit) Kind() Kind   { return KindFormEdit }
func (List) Kind() Kind       { return KindList }

func (LoggedOut) isState()  {}
func (FormCreate) isState() {}
func (FormEdit) isState()   {}
func (List) isState()       {}

// Initial is the state a dashboard opens in.
func Initial(authenticated bool, hint string) State {
	switch {
	case !authenticated:
		return LoggedOut{}
	case hint == HintMyAds:
		return List{}
	default:
		return FormCreate{}
	}
}

// FormFor returns the form contents shown in s: the edit target's fields, or an empty draft.
func FormFor(s State) models.ListingDraft {
	if edit, ok := s.(FormEdit); ok {
		return models.DraftFrom(edit.Target)
	}
	return models.ListingDraft{ExistingImages: []string{}, NewImages: []string{}}
}
