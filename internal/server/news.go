package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/damdeez/newsie/internal/hooks"
)

type waiter interface {
	Wait(ctx context.Context) (hooks.State, error)
}

// handleEverything runs one keyword cycle bound to the request context.
func (s *Server) handleEverything(c *gin.Context) {
	h := hooks.NewEverything(c.Request.Context(), s.source, nil, s.log)
	defer h.Close()

	h.SetQuery(c.Query("q"))
	respondWithState(c, h)
}

func (s *Server) handleTopHeadlines(c *gin.Context) {
	h := hooks.NewHeadlines(c.Request.Context(), s.source, nil, s.log)
	defer h.Close()

	h.SetParams(c.DefaultQuery("country", s.defaultCountry), c.Query("q"))
	respondWithState(c, h)
}

func respondWithState(c *gin.Context, h waiter) {
	st, err := h.Wait(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	c.JSON(statusFor(st), st)
}

func statusFor(st hooks.State) int {
	switch {
	case st.Error == hooks.ErrCountryRequired:
		return http.StatusBadRequest
	case st.Error != "":
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}
