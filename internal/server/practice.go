package server

import (
	"errors"
	"net/http"

	"github.com/alkime/practicum/internal/capture"
	"github.com/alkime/practicum/internal/catalog"
	"github.com/alkime/practicum/internal/workflow"
	"github.com/gin-gonic/gin"
)

type textRequest struct {
	Text string `json:"text"`
}

type practiceHandler func(c *gin.Context, p *workflow.Practice)

func (s *Server) withPractice(h practiceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.deps.Registry.Practice(c.Param("id"))
		if err != nil {
			s.respondError(c, err)
			return
		}

		h(c, p)
	}
}

func (s *Server) respondPractice(c *gin.Context, p *workflow.Practice) {
	c.JSON(http.StatusOK, p.Snapshot())
}

func (s *Server) handlePracticeCreate(c *gin.Context) {
	variant := catalog.ParseVariant(c.Query("hlp"))

	recorder, err := s.deps.NewRecorder()
	if err != nil {
		s.respondError(c, err)
		return
	}

	p, err := workflow.NewPractice(s.deps.Catalog, variant, recorder, s.deps.Feedback, s.logger)
	if err != nil {
		_ = recorder.Close()
		s.respondError(c, err)
		return
	}

	s.deps.Registry.Add(p)
	c.JSON(http.StatusCreated, p.Snapshot())
}

func (s *Server) handlePracticeTab(c *gin.Context, p *workflow.Practice) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	s.mutatePractice(c, p, p.SelectTab(req.Tab))
}

func (s *Server) handleRecordingStart(c *gin.Context, p *workflow.Practice) {
	s.mutatePractice(c, p, p.StartRecording())
}

func (s *Server) handleRecordingStop(c *gin.Context, p *workflow.Practice) {
	err := p.StopRecording()

	// A failed finalization has already moved the session to Error and
	// released the device; the snapshot carries the message.
	var finalizeErr *capture.FinalizeError
	if errors.As(err, &finalizeErr) {
		err = nil
	}

	s.mutatePractice(c, p, err)
}

func (s *Server) handleRecordingAcknowledge(c *gin.Context, p *workflow.Practice) {
	s.mutatePractice(c, p, p.AcknowledgeRecordingError())
}

func (s *Server) handleRecordingReset(c *gin.Context, p *workflow.Practice) {
	s.mutatePractice(c, p, p.RecordAgain())
}

func (s *Server) handleRecordingDownload(c *gin.Context, p *workflow.Practice) {
	artifact, ok := p.Recording()
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "no recording available"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, artifact.MIMEType, artifact.Data)
}

func (s *Server) handlePromptText(c *gin.Context, p *workflow.Practice) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	s.mutatePractice(c, p, p.SetPromptText(req.Text))
}

func (s *Server) handleRequestFeedback(c *gin.Context, p *workflow.Practice) {
	if err := p.RequestFeedback(); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, p.Snapshot())
}

func (s *Server) handleGoalText(c *gin.Context, p *workflow.Practice) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	s.mutatePractice(c, p, p.SetGoalText(req.Text))
}

func (s *Server) handleSubmitGoal(c *gin.Context, p *workflow.Practice) {
	s.mutatePractice(c, p, p.SubmitGoal())
}

func (s *Server) handlePracticeProceed(c *gin.Context, p *workflow.Practice) {
	t, ok := p.Proceed()
	if !ok {
		s.respondError(c, workflow.ErrActionUnavailable)
		return
	}

	s.deps.Registry.Discard(p.ID())
	c.JSON(http.StatusOK, newTransitionResponse(t))
}

func (s *Server) mutatePractice(c *gin.Context, p *workflow.Practice, err error) {
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.respondPractice(c, p)
}
