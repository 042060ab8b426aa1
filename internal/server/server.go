package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rezonia/invoice-composer/internal/app"
	"github.com/rezonia/invoice-composer/internal/export"
	"github.com/rezonia/invoice-composer/internal/form"
	"github.com/rezonia/invoice-composer/internal/model"
	"github.com/rezonia/invoice-composer/internal/store"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool

	// AllowedOrigins restricts CORS; empty allows every origin
	AllowedOrigins []string
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
	app    *app.App
}

type recordGetter interface {
	Get(ctx context.Context, id string) (*model.Record, error)
}

// NewServer creates a new API server
func NewServer(config *Config, a *app.App) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	corsConfig := cors.DefaultConfig()
	if len(config.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = config.AllowedOrigins
	}
	corsConfig.AddAllowHeaders("Content-Type")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	router.Use(cors.New(corsConfig))

	s := &Server{
		config: config,
		router: router,
		app:    a,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/options", s.handleOptions)

		invoices := v1.Group("/invoices")
		invoices.POST("", s.handleSubmit)
		invoices.GET("/:id", s.handleGet)
		invoices.POST("/preview", s.handlePreview)
		invoices.POST("/validate", s.handleValidate)
		invoices.POST("/render", s.handleRender)
		invoices.POST("/export", s.handleExport)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, OptionsResponse{
		Currencies: model.CurrencyOptions,
		IDTypes:    model.IDTypeOptions,
		Formats:    export.Formats,
	})
}

// loadForm reads a draft from the body into a fresh form. It writes the
// error response itself and returns nil on failure.
func (s *Server) loadForm(c *gin.Context) *form.Form {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return nil
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return nil
	}

	var draft model.Draft
	if err := json.Unmarshal(body, &draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice JSON", "details": err.Error()})
		return nil
	}

	f := s.app.NewForm()
	if err := f.Load(draft); err != nil {
		s.writeError(c, err)
		return nil
	}
	return f
}

func (s *Server) handlePreview(c *gin.Context) {
	f := s.loadForm(c)
	if f == nil {
		return
	}
	c.JSON(http.StatusOK, f.Preview())
}

func (s *Server) handleValidate(c *gin.Context) {
	f := s.loadForm(c)
	if f == nil {
		return
	}

	_, err := f.Build()
	resp := ValidationResponse{
		Valid:   err == nil,
		Items:   f.Items(),
		Preview: f.Preview(),
	}
	if err != nil {
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			s.writeError(c, err)
			return
		}
		resp.Error = validationResponse(verr)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSubmit(c *gin.Context) {
	f := s.loadForm(c)
	if f == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	rec, err := f.Submit(ctx)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SubmitResponse{Success: true, Invoice: rec})
}

func (s *Server) handleGet(c *gin.Context) {
	getter, ok := s.app.Store.(recordGetter)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "store does not support lookups"})
		return
	}

	rec, err := getter.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleRender(c *gin.Context) {
	f := s.loadForm(c)
	if f == nil {
		return
	}

	rec, err := f.Build()
	if err != nil {
		s.writeError(c, err)
		return
	}

	doc := s.app.Renderer.Render(rec)
	if c.Query("output") == "html" {
		c.Data(http.StatusOK, export.MIMETypeHTML, []byte(doc.HTML))
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleExport(c *gin.Context) {
	format := c.DefaultQuery("format", s.app.Config.ExportFormat)
	var buf bytes.Buffer
	p, err := s.app.Pipeline(format, export.NewWriterSink(&buf))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := s.loadForm(c)
	if f == nil {
		return
	}

	rec, err := f.Build()
	if err != nil {
		s.writeError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	res, err := p.Export(ctx, rec)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+res.Name)
	c.Data(http.StatusOK, res.MIMEType, buf.Bytes())
}

func validationResponse(verr *model.ValidationError) *ErrorResponse {
	resp := &ErrorResponse{
		Error:  verr.Message,
		Code:   verr.Code,
		Field:  verr.Field,
		ItemID: verr.ItemID,
	}
	if verr.Item >= 0 {
		item := verr.Item
		resp.Item = &item
	}
	return resp
}

func (s *Server) writeError(c *gin.Context, err error) {
	var (
		verr      *model.ValidationError
		subErr    *model.SubmissionError
		exportErr *model.ExportError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, validationResponse(verr))
	case errors.As(err, &subErr):
		status := http.StatusBadGateway
		if subErr.Rejected() {
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{Error: subErr.Message, Code: subErr.Code})
	case errors.As(err, &exportErr):
		status := http.StatusInternalServerError
		if exportErr.Code == model.ErrCodeShareFailed {
			status = http.StatusBadGateway
		}
		c.JSON(status, ErrorResponse{Error: exportErr.Message, Code: exportErr.Code})
	case errors.Is(err, model.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
