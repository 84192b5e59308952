package restjudge

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/criyle/go-static-judge/cmd/go-static-judge/model"
	"github.com/criyle/go-static-judge/judge"
	"github.com/criyle/go-static-judge/rule"
	"github.com/criyle/go-static-judge/submission"
	"github.com/criyle/go-static-judge/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmissionGetter loads persisted submissions
type SubmissionGetter interface {
	Get(ctx context.Context, id string) (*submission.Submission, error)
}

type judgeHandle struct {
	worker      worker.Worker
	submissions SubmissionGetter
	bank        *rule.Bank
	logger      *zap.Logger
}

// NewJudgeHandle creates a new judge handle
func NewJudgeHandle(worker worker.Worker, submissions SubmissionGetter, bank *rule.Bank, logger *zap.Logger) Register {
	return &judgeHandle{
		worker:      worker,
		submissions: submissions,
		bank:        bank,
		logger:      logger,
	}
}

func (j *judgeHandle) Register(r gin.IRouter) {
	r.POST("/submit", j.handleSubmit)
	r.GET("/submission/:id", j.handleSubmission)
	r.GET("/health", j.handleHealth)
	r.GET("/tasks", j.handleTasks)
}

func (j *judgeHandle) handleSubmit(ctx *gin.Context) {
	var req model.Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	r := model.ConvertRequest(&req)
	if err := r.Validate(); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	j.logger.Sugar().Debugf("request: %+v", req)
	var rt worker.Response
	select {
	case rt = <-j.worker.Submit(ctx.Request.Context(), r):
	case <-ctx.Request.Context().Done():
		rt = worker.Response{RequestID: r.RequestID, Error: ctx.Request.Context().Err()}
	}
	if rt.Error != nil {
		ctx.Error(rt.Error)
		status := http.StatusInternalServerError
		switch {
		case errors.Is(rt.Error, judge.ErrInputMissing):
			status = http.StatusBadRequest
		case errors.Is(rt.Error, worker.ErrClosed), errors.Is(rt.Error, context.Canceled),
			errors.Is(rt.Error, context.DeadlineExceeded):
			status = http.StatusServiceUnavailable
		}
		ctx.AbortWithStatusJSON(status, model.ErrorResponse{
			Error:   "Failed to evaluate code",
			Message: rt.Error.Error(),
		})
		return
	}

	res, err := model.ConvertResponse(rt, ctx.Query("results") == "true")
	if err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (j *judgeHandle) handleSubmission(ctx *gin.Context) {
	s, err := j.submissions.Get(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, submission.ErrNotFound) {
		ctx.AbortWithStatusJSON(http.StatusNotFound, model.ErrorResponse{Error: "Submission not found"})
		return
	}
	if err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, s)
}

func (j *judgeHandle) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Static judge is running!",
		"timestamp": time.Now(),
	})
}

func (j *judgeHandle) handleTasks(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, j.bank.All())
}
