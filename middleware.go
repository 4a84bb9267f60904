package main

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tr4cks/hwctl/controls"

	"github.com/gin-gonic/gin"
)

func ControlsStateMiddleware(hardware []controls.Named, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := controls.Snapshot(hardware)

		for _, status := range statuses {
			if status.Error != "" {
				logger.Error().Str("control", status.Name).Str("error", status.Error).Msg("Failed to read control")
			}
		}

		c.Set("statuses", statuses)

		c.Next()
	}
}

func ControlMiddleware(hardware []controls.Named) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		for _, named := range hardware {
			if named.Name == name {
				c.Set("control", named)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"status": "ko",
			"error":  "unknown control",
		})
	}
}
