package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/godilite/mind-compass/internal/quiz"
	"github.com/godilite/mind-compass/internal/repository/models"
	"github.com/godilite/mind-compass/internal/service"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	SessionHeader = "X-Session-Token"
	RunHeader     = "X-Quiz-Run"

	defaultProgressTTL = time.Hour
	runKeyPrefix       = "quiz:run:"
)

// runState is what the progress store holds for one quiz run.
type runState struct {
	Progress quiz.Progress   `json:"progress"`
	Session  *models.Session `json:"session,omitempty"`
}

type questionView struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

type Handler struct {
	quiz        QuizService
	stats       StatsService
	runs        ProgressStore
	logger      *zap.Logger
	progressTTL time.Duration
}

// NewHandler wires the HTTP handlers. A non-positive ttl uses one hour.
func NewHandler(quizSvc QuizService, stats StatsService, runs ProgressStore, logger *zap.Logger, progressTTL time.Duration) *Handler {
	if quizSvc == nil || stats == nil || runs == nil {
		panic("nil dependency provided to NewHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if progressTTL <= 0 {
		progressTTL = defaultProgressTTL
	}
	return &Handler{
		quiz:        quizSvc,
		stats:       stats,
		runs:        runs,
		logger:      logger.Named("http-handler"),
		progressTTL: progressTTL,
	}
}

func runKey(id string) string {
	return runKeyPrefix + id
}

func (h *Handler) question(p quiz.Progress) questionView {
	bank := h.quiz.Bank()
	q, _ := p.Current(bank)
	return questionView{ID: q.ID, Text: q.Text, Index: p.Index, Total: bank.Len()}
}

// Root serves the 7-day dashboard when admin=1 and starts a quiz otherwise.
func (h *Handler) Root(c *gin.Context) {
	if c.Query("admin") == "1" {
		h.WeeklyStats(c)
		return
	}
	h.StartQuiz(c)
}

func (h *Handler) WeeklyStats(c *gin.Context) {
	rows, err := h.stats.LastSevenDays(c.Request.Context())
	if err != nil {
		h.logger.Error("weekly stats failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stats are unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": rows})
}

func (h *Handler) StartQuiz(c *gin.Context) {
	ctx := c.Request.Context()
	session, progress := h.quiz.Start(ctx, c.GetHeader(SessionHeader))

	runID := uuid.NewString()
	if err := h.runs.Set(ctx, runKey(runID), runState{Progress: progress, Session: session}, h.progressTTL); err != nil {
		h.logger.Error("failed to store quiz run", zap.String("run", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start quiz"})
		return
	}

	if session != nil {
		c.Header(SessionHeader, session.Token)
	}
	c.Header(RunHeader, runID)
	c.JSON(http.StatusCreated, gin.H{
		"run_id":   runID,
		"question": h.question(progress),
		"scale":    gin.H{"min": quiz.MinResponse, "max": quiz.MaxResponse},
	})
}

func (h *Handler) Answer(c *gin.Context) {
	ctx := c.Request.Context()

	runID := c.GetHeader(RunHeader)
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": RunHeader + " header is required"})
		return
	}

	var req struct {
		Value int `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	var state runState
	if err := h.runs.Get(ctx, runKey(runID), &state); err != nil {
		if errors.Is(err, redis.Nil) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz run not found"})
			return
		}
		h.logger.Error("failed to load quiz run", zap.String("run", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quiz run"})
		return
	}

	next, outcome, err := h.quiz.Step(ctx, state.Session, state.Progress, req.Value)
	switch {
	case errors.Is(err, quiz.ErrInvalidResponse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, quiz.ErrQuizCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("quiz step failed", zap.String("run", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record answer"})
		return
	}

	if outcome != nil {
		if err := h.runs.Delete(ctx, runKey(runID)); err != nil {
			h.logger.Warn("failed to drop finished quiz run", zap.String("run", runID), zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"completed": true, "outcome": outcome})
		return
	}

	if err := h.runs.Set(ctx, runKey(runID), runState{Progress: next, Session: state.Session}, h.progressTTL); err != nil {
		h.logger.Error("failed to store quiz run", zap.String("run", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record answer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": false, "question": h.question(next)})
}

func (h *Handler) ListQuestions(c *gin.Context) {
	questions := h.quiz.Bank().Questions()
	out := make([]gin.H, len(questions))
	for i, q := range questions {
		out[i] = gin.H{"id": q.ID, "text": q.Text, "dimensions": q.Weights}
	}
	c.JSON(http.StatusOK, gin.H{"questions": out})
}

func (h *Handler) DescribeType(c *gin.Context) {
	p, err := h.quiz.Describe(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	match, _ := quiz.ProfileOf(p.BestMatch)
	c.JSON(http.StatusOK, gin.H{"profile": p, "best_match": match})
}

func (h *Handler) TrackEvent(c *gin.Context) {
	var req struct {
		Type    string          `json:"type" binding:"required"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	var payload any
	if len(req.Payload) > 0 {
		payload = req.Payload
	}

	ctx := c.Request.Context()
	session := h.quiz.Session(ctx, c.GetHeader(SessionHeader))
	if err := h.quiz.Track(ctx, session, req.Type, payload); err != nil {
		if errors.Is(err, service.ErrUnknownEventType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("track failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track event"})
		return
	}

	if session != nil {
		c.Header(SessionHeader, session.Token)
	}
	c.Status(http.StatusAccepted)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
