package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/service"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
	"github.com/noah-isme/sma-recruit-api/pkg/response"
)

// ContextSectionKey is the gin context key storing the resolved section.
const ContextSectionKey = "recruitmentSection"

// SectionAccess guards the section-multiplexed recruitment routes. It
// resolves the section query parameter, authorizes the caller through the
// grant rules (write access for mutating methods) and stores the section on
// the context for the handler.
func SectionAccess(access *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		section := models.Section(c.Query("section"))
		if !models.ValidSection(section) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown section"))
			c.Abort()
			return
		}

		var claims *models.JWTClaims
		if value, exists := c.Get(ContextUserKey); exists {
			claims, _ = value.(*models.JWTClaims)
		}

		write := c.Request.Method != http.MethodGet
		if err := access.Authorize(c.Request.Context(), claims, section, write); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSectionKey, section)
		c.Next()
	}
}
