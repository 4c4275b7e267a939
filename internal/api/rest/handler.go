package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fractionft/fractionft/internal/api/middleware"
	"github.com/fractionft/fractionft/internal/api/shared/constants"
	"github.com/fractionft/fractionft/internal/api/shared/dto"
	"github.com/fractionft/fractionft/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetProfile retrieves the authenticated user's profile
	// GET /api/v1/profiles/me
	GetProfile(c *gin.Context)

	// UpdateProfile updates the authenticated user's profile
	// PATCH /api/v1/profiles/me
	UpdateProfile(c *gin.Context)

	// RegisterNFT registers a new NFT owned by the authenticated user
	// POST /api/v1/nfts
	RegisterNFT(c *gin.Context)

	// ListNFTs retrieves the authenticated user's NFTs
	// GET /api/v1/nfts?limit=<limit>&offset=<offset>
	ListNFTs(c *gin.Context)

	// GetNFT retrieves a single NFT by ID
	// GET /api/v1/nfts/:id
	GetNFT(c *gin.Context)

	// FractionalizeNFT splits an NFT into shares and waits for the outcome
	// POST /api/v1/nfts/:id/fractionalize
	FractionalizeNFT(c *gin.Context)

	// TransferShares moves shares of a fractionalized NFT to another profile
	// POST /api/v1/nfts/:id/transfers
	TransferShares(c *gin.Context)

	// GetHoldings retrieves all share holdings of an NFT
	// GET /api/v1/nfts/:id/holdings
	GetHoldings(c *gin.Context)

	// GetTransactions retrieves an NFT's transaction log
	// GET /api/v1/nfts/:id/transactions?limit=<limit>&offset=<offset>
	GetTransactions(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	debug    bool
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(debug bool, exec executor.Executor) Handler {
	return &handler{
		debug:    debug,
		executor: exec,
	}
}

// authSubject returns the authenticated user identity stored by the auth
// middleware, empty for API key credentials
func authSubject(c *gin.Context) string {
	return c.GetString(middleware.AUTH_SUBJECT_KEY)
}

// parsePagination reads limit/offset query parameters, leaving nil for absent
// values so the executor applies its defaults
func parsePagination(c *gin.Context) (*int, *int, error) {
	var limit, offset *int

	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, nil, errInvalidLimit
		}
		if parsed > constants.MAX_LIMIT {
			parsed = constants.MAX_LIMIT
		}
		limit = &parsed
	}

	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, nil, errInvalidOffset
		}
		offset = &parsed
	}

	return limit, offset, nil
}

// GetProfile retrieves the authenticated user's profile
func (h *handler) GetProfile(c *gin.Context) {
	subject := authSubject(c)

	profile, err := h.executor.GetProfile(c.Request.Context(), subject, c.GetString(middleware.AUTH_EMAIL_KEY))
	if err != nil {
		respondAPIError(c, err, "Failed to get profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's profile
func (h *handler) UpdateProfile(c *gin.Context) {
	subject := authSubject(c)

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondAPIError(c, err, "Failed to update profile")
		return
	}

	profile, err := h.executor.UpdateProfile(c.Request.Context(), subject, req)
	if err != nil {
		respondAPIError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RegisterNFT registers a new NFT owned by the authenticated user
func (h *handler) RegisterNFT(c *gin.Context) {
	subject := authSubject(c)

	var req dto.RegisterNFTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondAPIError(c, err, "Failed to register NFT")
		return
	}

	nft, err := h.executor.RegisterNFT(c.Request.Context(), subject, req)
	if err != nil {
		respondAPIError(c, err, "Failed to register NFT")
		return
	}

	c.JSON(http.StatusCreated, nft)
}

// ListNFTs retrieves the authenticated user's NFTs
func (h *handler) ListNFTs(c *gin.Context) {
	subject := authSubject(c)

	limit, offset, err := parsePagination(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	response, err := h.executor.ListNFTs(c.Request.Context(), subject, limit, offset)
	if err != nil {
		respondAPIError(c, err, "Failed to list NFTs")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetNFT retrieves a single NFT by ID
func (h *handler) GetNFT(c *gin.Context) {
	nftID := c.Param("id")
	if nftID == "" {
		respondBadRequest(c, "NFT ID is required")
		return
	}

	nft, err := h.executor.GetNFT(c.Request.Context(), nftID)
	if err != nil {
		respondAPIError(c, err, "Failed to get NFT")
		return
	}

	if nft == nil {
		respondNotFound(c, "NFT not found")
		return
	}

	c.JSON(http.StatusOK, nft)
}

// FractionalizeNFT splits an NFT into shares and waits for the outcome
func (h *handler) FractionalizeNFT(c *gin.Context) {
	subject := authSubject(c)

	nftID := c.Param("id")
	if nftID == "" {
		respondBadRequest(c, "NFT ID is required")
		return
	}

	var req dto.FractionalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondAPIError(c, err, "Failed to fractionalize NFT")
		return
	}

	response, err := h.executor.FractionalizeNFT(c.Request.Context(), subject, nftID, req.Fractions)
	if err != nil {
		respondAPIError(c, err, "Failed to fractionalize NFT")
		return
	}

	c.JSON(http.StatusOK, response)
}

// TransferShares moves shares of a fractionalized NFT to another profile
func (h *handler) TransferShares(c *gin.Context) {
	subject := authSubject(c)

	nftID := c.Param("id")
	if nftID == "" {
		respondBadRequest(c, "NFT ID is required")
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondAPIError(c, err, "Failed to transfer shares")
		return
	}

	response, err := h.executor.TransferShares(c.Request.Context(), subject, nftID, req)
	if err != nil {
		respondAPIError(c, err, "Failed to transfer shares")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetHoldings retrieves all share holdings of an NFT
func (h *handler) GetHoldings(c *gin.Context) {
	nftID := c.Param("id")
	if nftID == "" {
		respondBadRequest(c, "NFT ID is required")
		return
	}

	response, err := h.executor.GetHoldings(c.Request.Context(), nftID)
	if err != nil {
		respondAPIError(c, err, "Failed to get holdings")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetTransactions retrieves an NFT's transaction log
func (h *handler) GetTransactions(c *gin.Context) {
	nftID := c.Param("id")
	if nftID == "" {
		respondBadRequest(c, "NFT ID is required")
		return
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	response, err := h.executor.GetTransactions(c.Request.Context(), nftID, limit, offset)
	if err != nil {
		respondAPIError(c, err, "Failed to get transactions")
		return
	}

	c.JSON(http.StatusOK, response)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "fractionft-api",
	})
}
