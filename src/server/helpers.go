package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"spot-observer/src/helpers"
	"spot-observer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// writeError maps domain errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, helpers.ErrNoSnapshot):
		status = http.StatusServiceUnavailable
	case errors.Is(err, helpers.ErrUnknownSource), errors.Is(err, helpers.ErrNoRows):
		status = http.StatusNotFound
	case errors.Is(err, helpers.ErrInvalidRegime):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, param string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", param, err)})
}

// -----------------------------------------------------------------------------

func sourceParam(c *gin.Context) (models.MSourceID, bool) {
	id, err := models.ParseSourceID(c.Param("source"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return id, true
}

// regime reads ?vat=, falling back to the configured default when empty.
func (s *APIServer) regime(c *gin.Context) (models.MVatRegime, bool) {
	raw := c.Query("vat")
	if raw == "" {
		return s.Config.DefaultRegime(), true
	}
	r, err := models.ParseVatRegime(raw)
	if err != nil {
		badRequest(c, "vat", err)
		return 0, false
	}
	return r, true
}

// day reads ?day= as a local date, defaulting to today.
func (s *APIServer) day(c *gin.Context) (time.Time, bool) {
	loc := s.Config.Location()
	raw := c.Query("day")
	if raw == "" {
		return s.Dashboard.Now().In(loc), true
	}
	d, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		badRequest(c, "day", err)
		return time.Time{}, false
	}
	return d, true
}

// -----------------------------------------------------------------------------

// parseTime accepts RFC3339 or a bare date, which means local midnight.
func parseTime(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("missing value")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, loc)
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
