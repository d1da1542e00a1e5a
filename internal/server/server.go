// Package server exposes the issuance engine over HTTP for billing
// systems that prefer a local REST facade to linking the library.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/afip-client/internal/model"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	issuer   Issuer
	registry RegistryLookup
}

// NewServer creates a new API server around an issuance engine and an
// optional registry client (nil disables the taxpayer route).
func NewServer(config *Config, issuer Issuer, registry RegistryLookup) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:   config,
		router:   router,
		issuer:   issuer,
		registry: registry,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1")
	{
		api.POST("/invoices", s.handleIssue)
		api.GET("/invoices/:type/:pos/last", s.handleLastNumber)
		api.GET("/invoices/:type/:pos/:number", s.handleQuery)
		api.GET("/points-of-sale", s.handlePointsOfSale)
		if s.registry != nil {
			api.GET("/taxpayers/:cuit", s.handleTaxpayer)
		}
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

// Router returns the underlying router, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok"}
	if status, err := s.issuer.Status(ctx); err == nil {
		resp.Remote = status
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleIssue(c *gin.Context) {
	var req model.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, model.NewValidationError("body", "invalid JSON payload"))
		return
	}

	res, err := s.issuer.Issue(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleLastNumber(c *gin.Context) {
	invoiceType, pos, ok := voucherParams(c)
	if !ok {
		return
	}

	last, err := s.issuer.LastAuthorized(c.Request.Context(), invoiceType, pos)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"last_number": last})
}

func (s *Server) handleQuery(c *gin.Context) {
	invoiceType, pos, ok := voucherParams(c)
	if !ok {
		return
	}
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		writeError(c, model.NewValidationError("number", "must be an integer"))
		return
	}

	inv, err := s.issuer.Query(c.Request.Context(), invoiceType, pos, number)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (s *Server) handlePointsOfSale(c *gin.Context) {
	points, err := s.issuer.PointsOfSale(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points_of_sale": points})
}

func (s *Server) handleTaxpayer(c *gin.Context) {
	tp, err := s.registry.GetPersona(c.Request.Context(), c.Param("cuit"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tp)
}

func voucherParams(c *gin.Context) (model.InvoiceType, int, bool) {
	t, err := strconv.Atoi(c.Param("type"))
	if err != nil {
		writeError(c, model.NewValidationError("type", "must be a numeric voucher type"))
		return 0, 0, false
	}
	pos, err := strconv.Atoi(c.Param("pos"))
	if err != nil {
		writeError(c, model.NewValidationError("pos", "must be a numeric point of sale"))
		return 0, 0, false
	}
	return model.InvoiceType(t), pos, true
}

// writeError maps fiscal error kinds onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var fe *model.Error
	if !errors.As(err, &fe) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Kind:    model.KindNetwork,
			Message: err.Error(),
		})
		return
	}

	status := http.StatusInternalServerError
	switch fe.Kind {
	case model.KindValidation:
		status = http.StatusBadRequest
	case model.KindAuthentication:
		status = http.StatusUnauthorized
	case model.KindNetwork:
		status = http.StatusBadGateway
	case model.KindRemote:
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, ErrorResponse{
		Kind:    fe.Kind,
		Code:    fe.Code,
		Message: fe.Message,
		Hint:    fe.Hint,
		Details: fe.Details,
	})
}
