package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

const identityKey = "identity"

// ErrUnauthenticated is returned by a Resolver when the request carries no
// usable identity.
var ErrUnauthenticated = errors.New("authentication required")

// IdentityResolver is the narrow contract with the external identity
// collaborator: it yields a verified {ownerId, role} pair for a request.
type IdentityResolver interface {
	Resolve(r *http.Request) (*domain.Identity, error)
}

// GatewayHeaderResolver trusts identity headers stamped by the upstream
// gateway after token verification.
type GatewayHeaderResolver struct{}

func (GatewayHeaderResolver) Resolve(r *http.Request) (*domain.Identity, error) {
	ownerID := r.Header.Get("X-User-Id")
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	role := domain.Role(r.Header.Get("X-User-Role"))
	if role == "" {
		role = domain.RoleCustomer
	}
	return &domain.Identity{OwnerID: ownerID, Role: role}, nil
}

func authRequired(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := resolver.Resolve(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{
				Success: false,
				Message: "authentication required",
			})
			return
		}
		c.Set(identityKey, *ident)
		c.Next()
	}
}

func staffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, envelope{
				Success: false,
				Message: "access denied",
			})
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if ident, ok := v.(domain.Identity); ok {
			return ident
		}
	}
	return domain.Identity{}
}
