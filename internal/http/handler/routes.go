package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sajor2000/labmanager-sub005/internal/model"
	"github.com/sajor2000/labmanager-sub005/internal/quota"
	"github.com/sajor2000/labmanager-sub005/internal/service"
	"github.com/sajor2000/labmanager-sub005/internal/validation"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// translate between transport and services; business logic stays out.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, statsSvc service.StatsService, log zerolog.Logger) {
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Post("/documents", UploadDocument(docSvc, log))
	app.Get("/documents", ListDocuments(docSvc, log))
	app.Get("/documents/:id/download", DownloadDocument(docSvc, log))
	app.Delete("/documents/:id", DeleteDocument(docSvc, log))

	app.Get("/labs/:id/storage", LabStorageStats(statsSvc, log))

	app.Post("/maintenance/purge", RunPurge(docSvc, log))
	app.Post("/maintenance/reconcile", RunReconcile(docSvc, log))
}

// HealthCheck reports DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// UploadDocument accepts a multipart upload (field name: file) with the
// attachment's lab/entity metadata as form values.
func UploadDocument(svc service.DocumentService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		labID := c.FormValue("lab_id")
		if _, err := uuid.Parse(labID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LAB_ID", "invalid lab id")
		}
		entityID := c.FormValue("entity_id")
		if entityID == "" {
			return writeError(c, fiber.StatusBadRequest, "ENTITY_REQUIRED", "entity_id is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data := make([]byte, fh.Size)
		if _, err := io.ReadFull(f, data); err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		var tags []string
		if raw := c.FormValue("tags"); raw != "" {
			for _, t := range strings.Split(raw, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
		}

		res, err := svc.Upload(c.UserContext(), service.UploadInput{
			Data:        data,
			Filename:    fh.Filename,
			ContentType: ct,
			LabID:       labID,
			EntityType:  model.ParseEntityType(c.FormValue("entity_type")),
			EntityID:    entityID,
			UploaderID:  c.FormValue("uploader_id"),
			Description: c.FormValue("description"),
			Tags:        tags,
		})
		if err != nil {
			return writeServiceError(c, err, log)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// DownloadDocument streams a document's original bytes back to the caller.
func DownloadDocument(svc service.DocumentService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		res, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, log)
		}

		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+res.Filename+`"`)
		return c.Send(res.Data)
	}
}

// ListDocuments returns active documents attached to an entity.
func ListDocuments(svc service.DocumentService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityID := c.Query("entity_id")
		if entityID == "" {
			return writeError(c, fiber.StatusBadRequest, "ENTITY_REQUIRED", "entity_id is required")
		}

		items, err := svc.ListByEntity(c.UserContext(), model.ParseEntityType(c.Query("entity_type")), entityID)
		if err != nil {
			return writeServiceError(c, err, log)
		}
		return c.JSON(fiber.Map{"data": items, "total": len(items)})
	}
}

// DeleteDocument soft-deletes a document.
func DeleteDocument(svc service.DocumentService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.SoftDelete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err, log)
		}
		return c.JSON(fiber.Map{"success": true, "message": "document deleted"})
	}
}

// LabStorageStats returns the aggregate storage view for a lab.
func LabStorageStats(svc service.StatsService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		stats, err := svc.GetStats(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, log)
		}
		return c.JSON(stats)
	}
}

// RunPurge triggers the retention sweep for operators.
func RunPurge(svc service.DocumentService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := svc.Purge(c.UserContext())
		if err != nil {
			return writeServiceError(c, err, log)
		}
		return c.JSON(fiber.Map{"purged": count})
	}
}

// RunReconcile recomputes storage counters, for one lab or all.
func RunReconcile(svc service.DocumentService, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		results, err := svc.Reconcile(c.UserContext(), c.Query("lab_id"))
		if err != nil {
			return writeServiceError(c, err, log)
		}
		return c.JSON(fiber.Map{"results": results})
	}
}

// writeServiceError maps service-layer errors onto the response envelope.
// Rejections surface their specific reason; infrastructure failures are
// logged with the request id and answered generically.
func writeServiceError(c *fiber.Ctx, err error, log zerolog.Logger) error {
	switch {
	case errors.Is(err, validation.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, validation.ErrUnsupportedType):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", err.Error())
	case errors.Is(err, quota.ErrCapacityExceeded):
		return writeError(c, fiber.StatusInsufficientStorage, "CAPACITY_EXCEEDED", err.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrAlreadyDeleted):
		return writeError(c, fiber.StatusConflict, "ALREADY_DELETED", "document already deleted")
	case errors.Is(err, service.ErrIDRequired), errors.Is(err, service.ErrEmptyPayload):
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		log.Error().Err(err).Str("request_id", requestIDFromCtx(c)).Str("path", c.Path()).
			Msg("request failed")
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "operation failed")
	}
}
