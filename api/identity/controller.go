package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IdentityServer exposes the identity carried by the caller's token.
type IdentityServer struct{}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer() *IdentityServer {
	return &IdentityServer{}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.GET("/me", c.me)
	}
}

// me returns the subject and claims of the caller.
func (c *IdentityServer) me(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"subject": ctx.GetString(ContextSubject),
		"claims":  ctx.MustGet(ContextUserClaims),
	})
}
