package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tokowa/commerce-agent/internal/apperr"
	"github.com/tokowa/commerce-agent/internal/jobs"
)

type submitJobRequest struct {
	TenantID       string `json:"tenant_id" binding:"required"`
	ConversationID string `json:"conversation_id"`
	Payload        string `json:"payload" binding:"required"`
	MaxRetries     int    `json:"max_retries"`
}

const defaultMaxRetries = 3

type jobTaskMessage struct {
	Type    string `json:"type"`
	JobID   string `json:"job_id"`
	Payload string `json:"payload"`
}

// SubmitJob enqueues one AI processing request and returns its tracked id.
func (s *Server) SubmitJob(c *gin.Context) {
	if err := s.limiter.Wait(c.Request.Context()); err != nil {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}

	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation(err.Error()))
		return
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	job := jobs.New(uuid.NewString(), req.TenantID, req.ConversationID, maxRetries)
	if err := s.jobStore.Create(c.Request.Context(), job); err != nil {
		c.Error(apperr.Fatal(err, "create job"))
		return
	}

	encoded, err := json.Marshal(jobTaskMessage{Type: "job_request", JobID: job.ID, Payload: req.Payload})
	if err != nil {
		c.Error(apperr.Fatal(err, "encode job task"))
		return
	}
	if err := s.publisher.PublishTask(c.Request.Context(), s.taskQueue, encoded); err != nil {
		c.Error(apperr.TransientInfra(err, "publish job task"))
		return
	}

	c.JSON(http.StatusAccepted, job)
}

// GetJob polls the tracked status of one submitted job.
func (s *Server) GetJob(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	job, err := s.jobStore.Get(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		c.Error(apperr.Fatal(err, "get job"))
		return
	}
	if job == nil {
		c.Error(apperr.NotFound("job not found"))
		return
	}
	c.JSON(http.StatusOK, job)
}
