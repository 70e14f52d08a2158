package handlers

import (
	"time"

	"unigang/annex/internal/models"
	"unigang/annex/internal/pagination"
	"unigang/annex/internal/service"
	"unigang/annex/internal/session"
)

type contactResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type listingResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Price       string          `json:"price"`
	Address     string          `json:"address"`
	Description string          `json:"description"`
	Features    []string        `json:"features"`
	Images      []string        `json:"images"`
	Campus      string          `json:"campus"`
	Contact     contactResponse `json:"contact"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func toListingResponse(l models.Listing) listingResponse {
	features := l.Features
	if features == nil {
		features = []string{}
	}
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return listingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Price:       l.Price,
		Address:     l.Address,
		Description: l.Description,
		Features:    features,
		Images:      images,
		Campus:      l.Campus,
		Contact: contactResponse{
			Name:  l.ContactName,
			Phone: l.ContactPhone,
			Email: l.ContactEmail,
		},
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func toListingResponses(items []models.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, toListingResponse(l))
	}
	return out
}

type pageResponse struct {
	Items       []listingResponse `json:"items"`
	CurrentPage int               `json:"currentPage"`
	TotalPages  int               `json:"totalPages"`
	PageSize    int               `json:"pageSize"`
	TotalItems  int               `json:"totalItems"`
	HasNext     bool              `json:"hasNext"`
	HasPrevious bool              `json:"hasPrevious"`
	Query       string            `json:"query"`
	Campus      string            `json:"campus"`
}

func toPageResponse(p pagination.Page[models.Listing], query, campus string) pageResponse {
	return pageResponse{
		Items:       toListingResponses(p.Items),
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		PageSize:    p.PageSize,
		TotalItems:  p.TotalItems,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
		Query:       query,
		Campus:      campus,
	}
}

type sessionResponse struct {
	Authenticated  bool       `json:"authenticated"`
	Name           string     `json:"name,omitempty"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phoneNumber,omitempty"`
	University     string     `json:"university,omitempty"`
	HasPassword    bool       `json:"hasPassword"`
	Method         string     `json:"method,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	Expired        bool       `json:"expired,omitempty"`
}

func toSessionResponse(s session.State, info service.SessionInfo) sessionResponse {
	resp := sessionResponse{
		Authenticated:  s.Authenticated(),
		Name:           s.Name,
		ProfilePicture: s.ProfilePicture,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Email:          s.Email,
		Phone:          s.Phone,
		University:     s.University,
		HasPassword:    s.Password != "",
		Method:         info.Method,
		Expired:        info.Expired,
	}
	if !info.ExpiresAt.IsZero() {
		resp.ExpiresAt = &info.ExpiresAt
	}
	return resp
}

func (h HandlerSet) sessionResponse(s session.State) sessionResponse {
	return toSessionResponse(s, h.auth.Describe(s))
}
