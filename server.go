package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/tr4cks/hwctl/controls"
	"github.com/tr4cks/hwctl/gestures"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

//go:embed index.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type controlRequest struct {
	Value string `json:"value" binding:"required"`
}

type gestureRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type settingsForm struct {
	Kind  string `form:"kind" binding:"required,oneof=control gesture"`
	Name  string `form:"name" binding:"required"`
	Value string `form:"value"`
}

func newRouter(config *Config, hardware []controls.Named, settings *gestures.Settings, logger zerolog.Logger) *gin.Engine {
	router := gin.Default()
	router.SetTrustedProxies(nil)
	html := template.Must(template.ParseFS(templateFS, "index.html"))
	router.SetHTMLTemplate(html)

	staticSubtreeFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to load static files")
	}
	router.StaticFS("/static", http.FS(staticSubtreeFS))

	auth := gin.BasicAuth(gin.Accounts{config.Username: config.Password})

	renderIndex := func(c *gin.Context, failed bool) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"controls": c.MustGet("statuses"),
			"gestures": settings.All(),
			"error":    failed,
		})
	}

	withState := router.Group("/", ControlsStateMiddleware(hardware, &logger))
	{
		// GET index.html
		withState.GET("/", func(c *gin.Context) {
			renderIndex(c, false)
		})

		// POST index.html
		withState.POST("/", auth, func(c *gin.Context) {
			var form settingsForm
			err := c.ShouldBind(&form)
			if err != nil {
				logger.Warn().Err(err).Msg("Invalid settings form")
				renderIndex(c, true)
				return
			}

			switch form.Kind {
			case "control":
				control, ok := controls.Find(hardware, form.Name)
				switch {
				case !ok:
					err = errors.New("unknown control")
				case !control.Supported():
					err = errors.New("control is not supported on this device")
				default:
					err = control.SetValue(form.Value)
				}
			case "gesture":
				var enabled bool
				enabled, err = parseToggle(form.Value)
				if err == nil {
					err = settings.Set(form.Name, enabled)
				}
			}
			if err != nil {
				logger.Error().Err(err).Str("kind", form.Kind).Str("name", form.Name).Msg("Settings update error")
				renderIndex(c, true)
				return
			}

			c.Redirect(http.StatusFound, "/")
		})
	}

	api := router.Group("/api")
	{
		api.GET("/controls", ControlsStateMiddleware(hardware, &logger), func(c *gin.Context) {
			c.JSON(http.StatusOK, c.MustGet("statuses"))
		})

		withControl := api.Group("/controls/:name", ControlMiddleware(hardware))
		{
			withControl.GET("", func(c *gin.Context) {
				named := c.MustGet("control").(controls.Named)
				c.JSON(http.StatusOK, controls.Snapshot([]controls.Named{named})[0])
			})

			withControl.PUT("", auth, func(c *gin.Context) {
				named := c.MustGet("control").(controls.Named)

				var request controlRequest
				err := c.ShouldBindJSON(&request)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{
						"status": "ko",
						"error":  "a value is required",
					})
					return
				}

				if !named.Supported() {
					c.JSON(http.StatusConflict, gin.H{
						"status": "ko",
						"error":  "control is not supported on this device",
					})
					return
				}

				err = named.SetValue(request.Value)
				if err != nil {
					logger.Error().Err(err).Str("control", named.Name).Msg("Control update error")
					c.JSON(http.StatusInternalServerError, gin.H{
						"status": "ko",
						"error":  "a problem occurred while updating the control",
					})
					return
				}

				c.JSON(http.StatusOK, gin.H{
					"status": "ok",
				})
			})
		}

		api.GET("/gestures", func(c *gin.Context) {
			c.JSON(http.StatusOK, settings.All())
		})

		api.PUT("/gestures/:key", auth, func(c *gin.Context) {
			var request gestureRequest
			err := c.ShouldBindJSON(&request)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"status": "ko",
					"error":  "enabled is required",
				})
				return
			}

			err = settings.Set(c.Param("key"), *request.Enabled)
			if errors.Is(err, gestures.ErrUnknownKey) {
				c.JSON(http.StatusNotFound, gin.H{
					"status": "ko",
					"error":  "unknown gesture setting",
				})
				return
			}
			if err != nil {
				logger.Error().Err(err).Str("key", c.Param("key")).Msg("Gesture update error")
				c.JSON(http.StatusInternalServerError, gin.H{
					"status": "ko",
					"error":  "a problem occurred while saving the setting",
				})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}

func runServer(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
