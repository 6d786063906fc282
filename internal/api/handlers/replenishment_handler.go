package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/service"
)

type ReplenishmentHandler struct {
	service *service.ReplenishmentService
}

func NewReplenishmentHandler(service *service.ReplenishmentService) *ReplenishmentHandler {
	return &ReplenishmentHandler{service: service}
}

// Upload receives a multipart spreadsheet plus a dataset type field and
// runs the ingestion pipeline synchronously.
func (h *ReplenishmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	kind := domain.DatasetKind(strings.ToLower(strings.TrimSpace(c.PostForm("type"))))

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	result, err := h.service.UploadDataset(c.Request.Context(), fileHeader.Filename, fileHeader.Size, data, kind)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidFileType), errors.Is(err, domain.ErrInvalidDataset), errors.Is(err, domain.ErrEmptyFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case result != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": result})
		default:
			log.Error().Err(err).Str("file", fileHeader.Filename).Msg("upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process file"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReplenishmentHandler) Recalculate(c *gin.Context) {
	count, err := h.service.RecalculatePositions(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("recalculation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recalculate positions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"positions": count})
}

func (h *ReplenishmentHandler) Reset(c *gin.Context) {
	if err := h.service.ResetAll(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("reset failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all data reset"})
}

func (h *ReplenishmentHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *ReplenishmentHandler) UpdateSettings(c *gin.Context) {
	var update domain.SettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSettings):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSettingsNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		}
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *ReplenishmentHandler) ListPositions(c *gin.Context) {
	filter := domain.PositionFilter{
		Aisle:   strings.TrimSpace(c.Query("aisle")),
		Urgency: strings.TrimSpace(c.Query("urgency")),
		Depot:   strings.TrimSpace(c.Query("depot")),
		Search:  strings.TrimSpace(c.Query("search")),
	}

	groups, err := h.service.ListPositions(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch positions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"aisles": groups})
}

func (h *ReplenishmentHandler) ListUploads(c *gin.Context) {
	entries, err := h.service.ListUploads(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch upload history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploads": entries})
}

// ListArchivedUploads lists the raw spreadsheets stored in the object
// archive. The listing is empty when archiving is disabled.
func (h *ReplenishmentHandler) ListArchivedUploads(c *gin.Context) {
	objects, err := h.service.ListArchivedUploads(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("archive listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list archived uploads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"objects": objects})
}
