package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/middleware"
	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func clientMeta(c *gin.Context) service.ClientMeta {
	meta := service.ClientMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims := claimsFromContext(c); claims != nil {
		meta.ActorID = &claims.UserID
	}
	return meta
}
