package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/satarknity/community_alerts/internal/config"
	"github.com/satarknity/community_alerts/internal/models"
	"github.com/satarknity/community_alerts/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	authService     service.AuthService
	incidentService service.IncidentService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(authService service.AuthService, incidentService service.IncidentService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		authService:     authService,
		incidentService: incidentService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Sign up
// @Description Create a new account with the external identity provider.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body SignUpRequest true "Sign up request"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid request body or provider error"
// @Failure 503 {object} map[string]string "Reporting disabled"
// @Router /auth/signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var input SignUpRequest
	log := h.logger.WithField("method", "signUp")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.authService.SignUp(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		// Сообщение провайдера отдаем как есть, пользователю оно и адресовано
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, SessionToResponse(session))
}

// @Summary Sign in
// @Description Sign in with email and password.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body SignInRequest true "Sign in request"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Provider rejected the credentials"
// @Failure 503 {object} map[string]string "Reporting disabled"
// @Router /auth/signin [post]
func (h *Handler) signIn(c *gin.Context) {
	var input SignInRequest
	log := h.logger.WithField("method", "signIn")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.authService.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, SessionToResponse(session))
}

// @Summary Sign out
// @Description Revoke the current session at the identity provider.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 502 {object} map[string]string "Provider error"
// @Failure 503 {object} map[string]string "Reporting disabled"
// @Router /auth/signout [post]
func (h *Handler) signOut(c *gin.Context) {
	log := h.logger.WithField("method", "signOut")

	if err := h.authService.SignOut(c.Request.Context(), accessToken(c)); err != nil {
		log.WithError(err).Warn("Failed to sign out")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Current user
// @Description Look up the user of the presented access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string "Not authenticated"
// @Failure 502 {object} map[string]string "Provider error"
// @Failure 503 {object} map[string]string "Reporting disabled"
// @Router /auth/user [get]
func (h *Handler) currentUser(c *gin.Context) {
	log := h.logger.WithField("method", "currentUser")

	user, err := h.authService.CurrentUser(c.Request.Context(), accessToken(c))
	if err != nil {
		log.WithError(err).Error("Failed to look up current user")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Email: user.Email})
}

// @Summary Submit an incident report
// @Description Submit a report with description, location and up to 2 media attachments.
// @Tags Incidents
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param description formData string true "Incident description"
// @Param location formData string true "Incident location"
// @Param media formData file false "Media attachments (image or video, max 2)"
// @Success 201 {object} SubmitIncidentResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 502 {object} map[string]string "Upload or insert failed"
// @Failure 503 {object} map[string]string "Reporting disabled"
// @Router /incidents [post]
func (h *Handler) submitIncident(c *gin.Context) {
	log := h.logger.WithField("method", "submitIncident")

	draft := service.NewDraft()
	defer draft.Reset()

	draft.Description = c.PostForm("description")
	draft.Location = c.PostForm("location")

	var rejected []string

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		log.WithError(err).Warn("Failed to parse multipart form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if form != nil {
		files := make([]models.FileUpload, 0, len(form.File["media"]))
		for _, fh := range form.File["media"] {
			f, err := fh.Open()
			if err != nil {
				log.WithError(err).Warn("Failed to open uploaded file")
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				log.WithError(err).Warn("Failed to read uploaded file")
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
			files = append(files, models.FileUpload{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}

		rejected, err = draft.AddAttachments(files...)
		if err != nil {
			log.WithError(err).Warn("Failed to stage attachments")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(rejected) > 0 {
			// Невалидные по MIME файлы отброшены поштучно, остальные приняты
			log.WithField("rejected", rejected).Warn("Dropped attachments with unsupported media type")
		}
	}

	incident, err := h.incidentService.SubmitIncident(c.Request.Context(), accessToken(c), draft)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingDescription), errors.Is(err, service.ErrMissingLocation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAuthenticationRequired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			log.WithError(err).Error("Failed to submit incident")
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, SubmitIncidentResponse{
		IncidentResponse: *ModelToIncidentResponse(incident),
		Rejected:         rejected,
	})
}

// @Summary List incident reports
// @Description Get the full feed of incident reports, newest first.
// @Tags Incidents
// @Accept json
// @Produce json
// @Success 200 {array} IncidentResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Failure 503 {object} map[string]string "Reporting disabled"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	incidents, err := h.incidentService.ListIncidents(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load incidents"})
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Resolve coordinates to an address
// @Description Reverse-geocode a coordinate pair; falls back to the raw coordinates on geocoder failure.
// @Tags Location
// @Accept json
// @Produce json
// @Param coordinates body ResolveLocationRequest true "Coordinate pair"
// @Success 200 {object} ResolveLocationResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 503 {object} map[string]string "Reporting disabled"
// @Router /location/resolve [post]
func (h *Handler) resolveLocation(c *gin.Context) {
	var input ResolveLocationRequest
	log := h.logger.WithField("method", "resolveLocation")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location, resolved := h.incidentService.ResolveLocation(c.Request.Context(), input.Latitude, input.Longitude)
	c.JSON(http.StatusOK, ResolveLocationResponse{Location: location, Resolved: resolved})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
