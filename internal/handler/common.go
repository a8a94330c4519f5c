package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"crm/internal/middleware"
	"crm/internal/model"
	"crm/internal/service"
	"crm/pkg/pagination"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps service sentinels onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "Internal server error"
	}
	c.JSON(status, response.Error(status, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// actor returns the authenticated caller; Authenticate guarantees it exists.
func actor(c *gin.Context) model.Actor {
	a, ok := middleware.GetActor(c)
	if !ok {
		return model.Actor{}
	}
	return a
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}

func listParams(c *gin.Context) (service.ListParams, pagination.Params) {
	p := pagination.Parse(c)
	return service.ListParams{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  p.Limit,
		Offset: p.Offset,
	}, p
}

func queryBool(c *gin.Context, key string) (*bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, "Invalid "+key)
		return nil, false
	}
	return &v, true
}

// dateWindow reads start_date/end_date (YYYY-MM-DD). The default window is the
// current month; end_date covers its whole day.
func dateWindow(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if raw := c.Query("start_date"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			badRequest(c, "Invalid start_date, expected YYYY-MM-DD")
			return start, end, false
		}
		start = t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			badRequest(c, "Invalid end_date, expected YYYY-MM-DD")
			return start, end, false
		}
		end = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, true
}
