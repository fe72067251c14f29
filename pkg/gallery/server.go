package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/colorcity-labs/colorcity-sdk-go/pkg/collection"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/ledger"
	"github.com/colorcity-labs/colorcity-sdk-go/pkg/shared"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Resolver *collection.Resolver
	// Minter enables POST /api/v1/mint. Leave nil for a read-only gallery.
	Minter ledger.Minter
	// Network decides which owner address formats are accepted.
	Network string
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server exposes collections and minting over HTTP.
type Server struct {
	router   *gin.Engine
	resolver *collection.Resolver
	minter   ledger.Minter
	network  string
	logger   *zap.Logger
}

// mintRequest carries no payment field: the route always pays the mint price.
type mintRequest struct {
	Caller string `json:"caller"`
}

type mintResponse struct {
	TokenID         *big.Int `json:"token_id"`
	Owner           string   `json:"owner"`
	TransactionHash string   `json:"transaction_hash"`
	BlockHash       string   `json:"block_hash"`
	BlockNumber     uint64   `json:"block_number"`
}

type collectionResponse struct {
	collection.Collection
	Message string `json:"message,omitempty"`
}

// NewServer creates a new Server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}
	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	server := &Server{
		router:   gin.New(),
		resolver: config.Resolver,
		minter:   config.Minter,
		network:  network,
		logger:   logger,
	}
	server.router.Use(gin.Recovery(), server.logRequests())
	server.registerRoutes(gatherer)
	return server, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on address until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, address string) error {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errorChannel := make(chan error, 1)
	go func() {
		s.logger.Info("gallery server listening", zap.String("address", address))
		errorChannel <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errorChannel:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down gallery server: %w", err)
		}
		return nil
	}
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	v1.GET("/collections/:owner", s.getCollection)
	v1.POST("/mint", s.mint)
}

func (s *Server) getCollection(c *gin.Context) {
	owner, err := shared.ParseAddress(s.network, c.Param("owner"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.resolver.Resolve(c.Request.Context(), owner)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	response := collectionResponse{Collection: result}
	if result.Len() == 0 {
		response.Message = EmptyMessage
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) mint(c *gin.Context) {
	if s.minter == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "minting is not configured"})
		return
	}

	var request mintRequest
	if c.Request.ContentLength != 0 {
		decoder := json.NewDecoder(c.Request.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid mint request: %v", err)})
			return
		}
	}

	var options ledger.MintOptions
	if strings.TrimSpace(request.Caller) != "" {
		caller, err := shared.ParseAddress(s.network, request.Caller)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		options.Caller = caller
	}

	minted, err := s.minter.MintItem(c.Request.Context(), options)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, mintResponse{
		TokenID:         minted.TokenID,
		Owner:           minted.Owner.Hex(),
		TransactionHash: minted.TransactionHash.Hex(),
		BlockHash:       minted.BlockHash.Hex(),
		BlockNumber:     minted.BlockNumber,
	})
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
		)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidOwner):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrCallerMismatch), errors.Is(err, ledger.ErrSignerRequired):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInsufficientPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrNonexistentToken), errors.Is(err, ledger.ErrIndexOutOfBounds):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
