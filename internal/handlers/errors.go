package handlers

import (
	"errors"
	"net/http"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gst-service/internal/repository"
	"gst-service/internal/services"
)

// respondError maps service errors onto HTTP status codes
func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrAlreadyFiled),
		errors.Is(err, repository.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{
		"error":   message,
		"message": err.Error(),
	})
}

func badRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   message,
		"message": err.Error(),
	})
}

// getTenantID returns the tenant resolved by TenantMiddleware
func getTenantID(c *gin.Context) string {
	return c.GetString("tenant_id")
}

func getActor(c *gin.Context) services.Actor {
	actor := gosharedmw.GetActorInfo(c)
	return services.Actor{ID: actor.ActorID, Name: actor.ActorName}
}

func parseID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid "+what+" ID", err)
		return uuid.Nil, false
	}
	return id, true
}
