package http_handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	sdklogger "github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/config"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
)

type Server struct {
	app     *fiber.App
	cfg     *config.Config
	service port.UploadService
}

func NewServer(cfg *config.Config, service port.UploadService) *Server {
	app := fiber.New(fiber.Config{
		// Leave room for multipart framing on top of the per-file limit.
		BodyLimit: int(cfg.Upload.MaxFileSize) + 1024*1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	s := &Server{
		app:     app,
		cfg:     cfg,
		service: service,
	}

	// Routes
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Post("/posts", s.handleCreatePost)
	s.app.Get("/posts/:id", s.handleGetPost)
	s.app.Delete("/posts/:id", s.handleDeletePost)
	s.app.Post("/posts/:id/files", s.handleUploadFiles)
	s.app.Delete("/posts/:id/files/:fileId", s.handleRemoveFile)
	s.app.Get("/files/:id", s.handleGetFile)
	s.app.Get("/files/:id/content", s.handleDownloadFile)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) sendSuccess(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func (s *Server) sendFail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "fail",
		"message": message,
	})
}

// statusForError maps domain failures onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, port.ErrFileNotFound), errors.Is(err, port.ErrPostNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, port.ErrStagedFileMissing),
		errors.Is(err, port.ErrFieldNotAllowed),
		errors.Is(err, port.ErrFileTooLarge),
		errors.Is(err, port.ErrFileTypeNotAllowed):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleCreatePost(c *fiber.Ctx) error {
	var body struct {
		CreatorID string `json:"creator_id"`
		Content   string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil {
		return s.sendFail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if body.CreatorID == "" {
		return s.sendFail(c, fiber.StatusBadRequest, "Missing 'creator_id'")
	}

	post, err := s.service.CreatePost(c.Context(), body.CreatorID, body.Content)
	if err != nil {
		sdklogger.Errorw("Post creation failed", "creator_id", body.CreatorID, "error", err.Error())
		return s.sendFail(c, statusForError(err), err.Error())
	}

	return s.sendSuccess(c, fiber.StatusCreated, post)
}

func (s *Server) handleGetPost(c *fiber.Ctx) error {
	post, err := s.service.GetPost(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendFail(c, statusForError(err), err.Error())
	}
	return s.sendSuccess(c, fiber.StatusOK, post)
}

func (s *Server) handleDeletePost(c *fiber.Ctx) error {
	postID := c.Params("id")
	report, err := s.service.DeletePost(c.Context(), postID)
	if err != nil {
		sdklogger.Errorw("Post deletion failed", "post_id", postID, "error", err.Error())
		return s.sendFail(c, statusForError(err), err.Error())
	}
	return s.sendSuccess(c, fiber.StatusOK, report)
}

// handleUploadFiles stages every file part of the request, then commits and
// binds each staged file to the post. The response maps field names to the
// created records; duplicate field names collapse last-write-wins.
func (s *Server) handleUploadFiles(c *fiber.Ctx) error {
	postID := c.Params("id")

	contentType := c.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return s.sendFail(c, fiber.StatusBadRequest, "Content-Type must be multipart/form-data")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return s.sendFail(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to read multipart form: %v", err))
	}

	parts, closers, err := collectParts(form)
	defer func() {
		for _, closer := range closers {
			_ = closer.Close()
		}
	}()
	if err != nil {
		return s.sendFail(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to open upload part: %v", err))
	}
	if len(parts) == 0 {
		return s.sendFail(c, fiber.StatusBadRequest, "No file parts in request")
	}

	staged, err := s.service.SaveUploads(c.Context(), parts)
	if err != nil {
		sdklogger.Errorw("Upload staging failed", "post_id", postID, "error", err.Error())
		return s.sendFail(c, statusForError(err), err.Error())
	}

	records := make(map[string]*domain.FileRecord, len(staged))
	for field, stagedFile := range staged {
		record, err := s.service.AddFile(c.Context(), stagedFile, postID)
		if err != nil {
			sdklogger.Errorw("Upload commit failed", "post_id", postID, "field", field, "error", err.Error())
			return s.sendFail(c, statusForError(err), err.Error())
		}
		records[field] = record
	}

	return s.sendSuccess(c, fiber.StatusCreated, records)
}

// collectParts flattens the multipart file headers into upload parts,
// preserving per-field order so last-write-wins stays deterministic.
func collectParts(form *multipart.Form) ([]port.UploadPart, []io.Closer, error) {
	var parts []port.UploadPart
	var closers []io.Closer

	for field, headers := range form.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				return parts, closers, err
			}
			closers = append(closers, f)
			parts = append(parts, port.UploadPart{
				FieldName: field,
				FileName:  header.Filename,
				Reader:    f,
			})
		}
	}

	return parts, closers, nil
}

func (s *Server) handleRemoveFile(c *fiber.Ctx) error {
	postID := c.Params("id")
	fileID := c.Params("fileId")

	if err := s.service.RemoveFileByID(c.Context(), postID, fileID); err != nil {
		sdklogger.Warnw("File removal failed", "post_id", postID, "file_id", fileID, "error", err.Error())
		return s.sendFail(c, statusForError(err), err.Error())
	}

	return s.sendSuccess(c, fiber.StatusOK, fiber.Map{"file_id": fileID})
}

func (s *Server) handleGetFile(c *fiber.Ctx) error {
	record, err := s.service.GetFile(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendFail(c, statusForError(err), err.Error())
	}
	return s.sendSuccess(c, fiber.StatusOK, record)
}

func (s *Server) handleDownloadFile(c *fiber.Ctx) error {
	fileID := c.Params("id")

	record, reader, err := s.service.OpenFile(c.Context(), fileID)
	if err != nil {
		return s.sendFail(c, statusForError(err), err.Error())
	}
	defer func() { _ = reader.Close() }()

	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.OriginalName))
	c.Set("Content-Type", record.MimeType)

	if _, err := io.Copy(c.Response().BodyWriter(), reader); err != nil {
		sdklogger.Errorw("Download failed", "file_id", fileID, "error", err.Error())
		return fmt.Errorf("download failed: %w", err)
	}

	return nil
}
