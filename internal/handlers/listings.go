package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"unigang/annex/internal/catalog"
)

// ListCampuses serves the campus dropdown; q narrows it like the dropdown's search box.
func (h HandlerSet) ListCampuses(c *gin.Context) {
	campuses, err := h.catalog.Campuses(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campuses": catalog.MatchCampuses(campuses, c.Query("q"))})
}

// SearchListings serves the browse page. A missing or malformed page reads as 1
// and an out-of-range page is clamped. Short campus names ("moratuwa") resolve
// to the campus they identify.
func (h HandlerSet) SearchListings(c *gin.Context) {
	campuses, err := h.catalog.Campuses(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	filter := catalog.Filter{
		Query:  c.Query("q"),
		Campus: catalog.ResolveCampus(campuses, c.DefaultQuery("campus", catalog.AllCampuses)),
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}

	result, err := h.catalog.Search(c.Request.Context(), filter, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(result, filter.Query, filter.Campus))
}

const (
	defaultRecentLimit = 3
	maxRecentLimit     = 12
)

// ListRecent serves the home page teaser. limit defaults to 3 and is clamped
// into [1, 12].
func (h HandlerSet) ListRecent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRecentLimit)))
	if err != nil {
		limit = defaultRecentLimit
	}
	limit = min(max(limit, 1), maxRecentLimit)

	items, err := h.catalog.Recent(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toListingResponses(items)})
}

func (h HandlerSet) GetListing(c *gin.Context) {
	l, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(l))
}
