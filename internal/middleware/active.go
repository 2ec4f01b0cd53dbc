package middleware

import (
	"net/http"

	"raspadinha/internal/repository"

	"github.com/gin-gonic/gin"
)

// ActiveUserRequired blocks deactivated accounts from every money-moving
// route. The ledger trusts the user id it is handed, so the gate lives here.
func ActiveUserRequired(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := userRepo.GetByID(GetUserID(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		if !u.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is deactivated"})
			return
		}
		c.Next()
	}
}
