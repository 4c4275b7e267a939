package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/fractionft/fractionft/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// NFT read endpoints (public read access)
		v1.GET("/nfts/:id", handler.GetNFT)
		v1.GET("/nfts/:id/holdings", handler.GetHoldings)
		v1.GET("/nfts/:id/transactions", handler.GetTransactions)

		// User-scoped endpoints (requires a JWT carrying a subject)
		authed := v1.Group("", middleware.Auth(authCfg), middleware.RequireSubject())
		{
			authed.GET("/profiles/me", handler.GetProfile)
			authed.PATCH("/profiles/me", handler.UpdateProfile)

			authed.POST("/nfts", handler.RegisterNFT)
			authed.GET("/nfts", handler.ListNFTs)

			authed.POST("/nfts/:id/fractionalize", handler.FractionalizeNFT)
			authed.POST("/nfts/:id/transfers", handler.TransferShares)
		}
	}
}
