package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"unigang/annex/internal/dashboard"
	"unigang/annex/internal/middleware"
	"unigang/annex/internal/models"
	"unigang/annex/internal/session"
)

type dashboardResponse struct {
	State   dashboard.Kind       `json:"state"`
	Form    *models.ListingDraft `json:"form,omitempty"`
	EditID  string               `json:"editId,omitempty"`
	Ads     []listingResponse    `json:"ads"`
	Listing *listingResponse     `json:"listing,omitempty"`
}

func (h HandlerSet) dashboardView(ctx context.Context, sc *session.Context, state dashboard.State) (dashboardResponse, error) {
	resp := dashboardResponse{State: state.Kind()}
	switch s := state.(type) {
	case dashboard.FormCreate:
		form := dashboard.FormFor(s)
		resp.Form = &form
	case dashboard.FormEdit:
		form := dashboard.FormFor(s)
		resp.Form = &form
		resp.EditID = s.Target.ID
	case dashboard.List:
		ads, err := h.catalog.ListByOwner(ctx, sc.Client())
		if err != nil {
			return dashboardResponse{}, err
		}
		resp.Ads = toListingResponses(ads)
	}
	return resp, nil
}

func (h HandlerSet) machine(c *gin.Context) (*dashboard.Machine, *session.Context, bool) {
	sc := middleware.SessionFrom(c)
	m, err := h.dashboards.Machine(c.Request.Context(), sc)
	if err != nil {
		h.respondError(c, err)
		return nil, nil, false
	}
	return m, sc, true
}

// GetDashboard reports the tab's dashboard state. A gated dashboard answers
// with state "login" rather than an error so the client can show the auth card.
func (h HandlerSet) GetDashboard(c *gin.Context) {
	m, sc, ok := h.machine(c)
	if !ok {
		return
	}

	state := m.State()
	if hint := c.Query("tab"); hint != "" && state.Kind() != dashboard.KindLoggedOut {
		res, err := m.Dispatch(c.Request.Context(), dashboard.ViewHint{Hint: hint})
		if err != nil {
			h.respondError(c, err)
			return
		}
		state = res.State
	}

	h.respondDashboard(c, sc, http.StatusOK, dashboard.Result{State: state})
}

func (h HandlerSet) dispatch(c *gin.Context, ev dashboard.Event) {
	m, sc, ok := h.machine(c)
	if !ok {
		return
	}

	res, err := m.Dispatch(c.Request.Context(), ev)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if res.Effect == dashboard.EffectCreate {
		status = http.StatusCreated
	}
	h.respondDashboard(c, sc, status, res)
}

func (h HandlerSet) respondDashboard(c *gin.Context, sc *session.Context, status int, res dashboard.Result) {
	resp, err := h.dashboardView(c.Request.Context(), sc, res.State)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if res.Listing != nil {
		l := toListingResponse(*res.Listing)
		resp.Listing = &l
	}
	c.JSON(status, resp)
}

func (h HandlerSet) ListMyAds(c *gin.Context) {
	ads, err := h.catalog.ListByOwner(c.Request.Context(), middleware.SessionFrom(c).Client())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ads": toListingResponses(ads)})
}

func (h HandlerSet) NewAd(c *gin.Context) {
	h.dispatch(c, dashboard.NewAd{})
}

func (h HandlerSet) EditAd(c *gin.Context) {
	l, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.dispatch(c, dashboard.Edit{Record: l})
}

func (h HandlerSet) SubmitAd(c *gin.Context) {
	var draft models.ListingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.badRequest(c, err)
		return
	}
	h.dispatch(c, dashboard.Submit{Draft: draft})
}

func (h HandlerSet) CancelForm(c *gin.Context) {
	h.dispatch(c, dashboard.Cancel{})
}

// DeleteAd removes the ad only with confirm=true; without it the list is returned unchanged.
func (h HandlerSet) DeleteAd(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	h.dispatch(c, dashboard.Delete{ID: c.Param("id"), Confirmed: confirmed})
}
