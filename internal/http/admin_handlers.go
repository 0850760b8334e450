package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/reqdesk/backend/internal/models"
)

// adminQueue returns the staff triage view: all unclaimed requests plus the
// in-process ones assigned to the calling staff member.
func (s *Server) adminQueue(c *gin.Context) {
	rows, err := s.requests.ListAdminQueue(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": rows})
}

// adminTransition applies a lifecycle action to a request and returns the
// updated record.
func (s *Server) adminTransition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	updated, err := s.lifecycle.Transition(c.Request.Context(), id, models.Action(payload.Action), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) adminStatistics(c *gin.Context) {
	stats, err := s.stats.AverageCompletionTimes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"average_completion_times": stats})
}

func (s *Server) adminUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
