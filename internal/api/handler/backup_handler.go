package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartcompute/monitoring-system/internal/backup"
)

// BackupHandler exposes read-only backup catalog queries to administrators.
type BackupHandler struct {
	catalog backup.CatalogStore
}

func NewBackupHandler(catalog backup.CatalogStore) *BackupHandler {
	return &BackupHandler{catalog: catalog}
}

type regionResultResponse struct {
	Region   string `json:"region"`
	OK       bool   `json:"ok"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

type backupRecordResponse struct {
	BackupID    string                 `json:"backup_id"`
	CreatedAt   string                 `json:"created_at"`
	SizeBytes   int64                  `json:"size_bytes"`
	SHA256      string                 `json:"sha256"`
	Collections []string               `json:"collections"`
	Status      string                 `json:"status"`
	Regions     []regionResultResponse `json:"regions"`
}

// Latest handles GET /v1/backups/latest.
//
// @Summary      Get the most recent backup record
// @Tags         backups
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  backupRecordResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/backups/latest [get]
func (h *BackupHandler) Latest(c echo.Context) error {
	rec, err := h.catalog.Latest(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBackupResponse(rec))
}

// Get handles GET /v1/backups/:backup_id.
//
// @Summary      Get a backup record by identifier
// @Tags         backups
// @Produce      json
// @Security     BearerAuth
// @Param        backup_id  path      string  true  "Backup identifier"
// @Success      200        {object}  backupRecordResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/backups/{backup_id} [get]
func (h *BackupHandler) Get(c echo.Context) error {
	rec, err := h.catalog.Get(c.Request().Context(), c.Param("backup_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBackupResponse(rec))
}

func toBackupResponse(rec *backup.Record) backupRecordResponse {
	regions := make([]regionResultResponse, 0, len(rec.Regions))
	for _, r := range rec.Regions {
		regions = append(regions, regionResultResponse{
			Region:   r.Region,
			OK:       r.OK,
			Attempts: r.Attempts,
			Error:    r.Error,
		})
	}
	return backupRecordResponse{
		BackupID:    rec.BackupID,
		CreatedAt:   formatTime(rec.CreatedAt),
		SizeBytes:   rec.SizeBytes,
		Collections: rec.Collections,
		SHA256:      rec.SHA256,
		Status:      string(rec.Status),
		Regions:     regions,
	}
}
