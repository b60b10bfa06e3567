package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/cardmatch/internal/core"
	"github.com/agenthands/cardmatch/internal/core/graph"
	"github.com/agenthands/cardmatch/internal/core/index"
	"github.com/agenthands/cardmatch/internal/core/model"
	"github.com/agenthands/cardmatch/internal/core/recognition"
	"github.com/agenthands/cardmatch/internal/logger"
	"github.com/agenthands/cardmatch/internal/ocr"
)

// maxImageBytes caps uploads to /recognize.
const maxImageBytes = 10 << 20

// Crewmates is the part of the graph publisher the server needs. It is
// optional; without it /cards/:slug/crewmates answers 503.
type Crewmates interface {
	Crewmates(ctx context.Context, slug string, limit int) ([]graph.Crewmate, error)
}

type Server struct {
	Matcher *core.Matcher
	Graph   Crewmates
	Logger  *logger.Logger
}

func NewServer(matcher *core.Matcher, crew Crewmates, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		Matcher: matcher,
		Graph:   crew,
		Logger:  log,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = maxImageBytes

	r.GET("/health", s.Health)
	r.POST("/match", s.Match)
	r.POST("/recognize", s.Recognize)
	r.GET("/cards/:slug", s.GetCard)
	r.GET("/cards/:slug/crewmates", s.GetCrewmates)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cards": len(s.Matcher.Cards())})
}

func (s *Server) Match(c *gin.Context) {
	var q model.ExtractedQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := s.Matcher.Match(c.Request.Context(), q)
	if err != nil {
		s.fail(c, "match failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Recognize accepts a multipart form with the card picture in "image" and
// an optional "mode" of vision or ocr.
func (s *Server) Recognize(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image"})
		return
	}
	if fh.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable image"})
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable image"})
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(image)
	}

	rec, err := s.Matcher.Recognize(c.Request.Context(), image, mimeType, c.PostForm("mode"))
	if errors.Is(err, index.ErrEmptyQuery) && rec != nil {
		c.JSON(http.StatusUnprocessableEntity, rec)
		return
	}
	if err != nil {
		s.fail(c, "recognition failed", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) GetCard(c *gin.Context) {
	card, ok := s.Matcher.Card(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) GetCrewmates(c *gin.Context) {
	if s.Graph == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Graph not configured"})
		return
	}
	slug := c.Param("slug")
	if _, ok := s.Matcher.Card(slug); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}

	mates, err := s.Graph.Crewmates(c.Request.Context(), slug, 0)
	if err != nil {
		s.fail(c, "crewmates query failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slug": slug, "crewmates": mates})
}

func (s *Server) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error(msg, "error", err)
	} else {
		s.Logger.Warn(msg, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, index.ErrEmptyQuery),
		errors.Is(err, recognition.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, recognition.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotWarm),
		errors.Is(err, core.ErrNoExtractor),
		errors.Is(err, recognition.ErrNoGenerator),
		errors.Is(err, recognition.ErrNoVision),
		errors.Is(err, recognition.ErrNoOCR),
		errors.Is(err, ocr.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
