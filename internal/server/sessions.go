package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/damdeez/newsie/internal/session"
)

type searchRequest struct {
	Search string `json:"search" binding:"required,min=2,max=30"`
}

type headlinesRequest struct {
	Country string `json:"country" binding:"required"`
	Q       string `json:"q"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// handleSearch queues a debounced keyword search and returns immediately.
func (s *Server) handleSearch(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess.Search(req.Search)
	c.JSON(http.StatusAccepted, sess.Snapshot())
}

func (s *Server) handleHeadlines(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req headlinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess.Headlines(req.Country, req.Q)
	c.JSON(http.StatusAccepted, sess.Snapshot())
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.sessions.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	}
	return sess, ok
}
