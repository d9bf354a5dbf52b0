package server

import (
	"net/http"

	"github.com/alkime/practicum/internal/catalog"
	"github.com/alkime/practicum/internal/workflow"
	"github.com/gin-gonic/gin"
)

type tabRequest struct {
	Tab workflow.Tab `json:"tab" binding:"required"`
}

type videoProgressRequest struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

type answerRequest struct {
	Option string `json:"option" binding:"required"`
}

type transitionResponse struct {
	workflow.Transition
	Location string `json:"location"`
}

func newTransitionResponse(t workflow.Transition) transitionResponse {
	return transitionResponse{Transition: t, Location: t.Location()}
}

type learnHandler func(c *gin.Context, l *workflow.Learn)

func (s *Server) withLearn(h learnHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, err := s.deps.Registry.Learn(c.Param("id"))
		if err != nil {
			s.respondError(c, err)
			return
		}

		h(c, l)
	}
}

func (s *Server) respondLearn(c *gin.Context, l *workflow.Learn) {
	c.JSON(http.StatusOK, l.Snapshot())
}

func (s *Server) handleLearnCreate(c *gin.Context) {
	variant := catalog.ParseVariant(c.Query("hlp"))
	l := workflow.NewLearn(s.deps.Catalog, variant, s.logger)
	s.deps.Registry.Add(l)

	c.JSON(http.StatusCreated, l.Snapshot())
}

func (s *Server) handleLearnTab(c *gin.Context, l *workflow.Learn) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	if err := l.SelectTab(req.Tab); err != nil {
		s.respondError(c, err)
		return
	}

	s.respondLearn(c, l)
}

func (s *Server) handleVideoProgress(c *gin.Context, l *workflow.Learn) {
	var req videoProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	if _, err := l.ReportVideoProgress(req.Position, req.Duration); err != nil {
		s.respondError(c, err)
		return
	}

	s.respondLearn(c, l)
}

func (s *Server) handleReadingComplete(c *gin.Context, l *workflow.Learn) {
	if err := l.MarkReadingComplete(); err != nil {
		s.respondError(c, err)
		return
	}

	s.respondLearn(c, l)
}

func (s *Server) handleSelectAnswer(c *gin.Context, l *workflow.Learn) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	if err := l.SelectAnswer(c.Param("question"), req.Option); err != nil {
		s.respondError(c, err)
		return
	}

	s.respondLearn(c, l)
}

func (s *Server) handleCheckAnswers(c *gin.Context, l *workflow.Learn) {
	if _, err := l.CheckAnswers(); err != nil {
		s.respondError(c, err)
		return
	}

	s.respondLearn(c, l)
}

func (s *Server) handleLearnProceed(c *gin.Context, l *workflow.Learn) {
	t, ok := l.Proceed()
	if !ok {
		s.respondError(c, workflow.ErrActionUnavailable)
		return
	}

	s.deps.Registry.Discard(l.ID())
	c.JSON(http.StatusOK, newTransitionResponse(t))
}
