package rest

import (
	"context"
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/apperr"
	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/jwt"
	sharedFile "fileshare-api/internal/interface/api/rest/dto/shared_file"
	"fileshare-api/internal/interface/api/rest/middleware"
	"fileshare-api/internal/interface/api/rest/validator"
)

const (
	HeaderFilePassword = "X-File-Password"
	HeaderKeyPassword  = "X-Key-Password"

	// room for the multipart envelope around the file part
	multipartOverhead = 1 << 20
)

type SharedFileController struct {
	fileService   ports.SharedFileService
	logger        *zap.Logger
	maxUploadSize int64
}

func NewSharedFileController(
	r *gin.Engine,
	fileService ports.SharedFileService,
	logger *zap.Logger,
	jwtService *jwt.Service,
	maxFileSize int64,
) *SharedFileController {
	fc := &SharedFileController{
		fileService:   fileService,
		logger:        logger,
		maxUploadSize: maxFileSize + multipartOverhead,
	}

	authed := r.Group("", middleware.AuthMiddleware(jwtService))
	authed.POST(RouteFiles, fc.UploadHandler)
	authed.GET(RouteFiles, fc.GetReceivedFilesHandler)
	authed.GET(RouteSentFiles, fc.GetSentFilesHandler)
	authed.GET(RouteFileDownload, fc.DownloadHandler)
	authed.POST(RouteFileDownload, fc.DownloadWithBodyHandler)

	return fc
}

func (fc *SharedFileController) UploadHandler(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, fc.maxUploadSize)

	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		fh, err = c.FormFile("fileUpload")
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(c, fc.logger, "Upload()", apperr.ErrFileTooLarge)
			return
		case errors.Is(err, http.ErrMissingFile):
			// reported by the pipeline in field order
			fh = nil
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid multipart form",
				"code":    apperr.CodeInvalidInput,
				"details": err.Error(),
			})
			return
		}
	}

	f, err := fc.fileService.Upload(c.Request.Context(), ports.UploadRequest{
		OwnerID:        callerID,
		RecipientEmail: c.PostForm("recipient_email"),
		Password:       c.PostForm("password"),
		ExpirationDate: c.PostForm("expiration_date"),
		File:           fh,
	})
	if err != nil {
		writeError(c, fc.logger, "Upload()", err)
		return
	}

	c.JSON(http.StatusCreated, sharedFile.ToResponseFile(*f))
}

func (fc *SharedFileController) GetReceivedFilesHandler(c *gin.Context) {
	fc.list(c, fc.fileService.FindReceivedFiles)
}

func (fc *SharedFileController) GetSentFilesHandler(c *gin.Context) {
	fc.list(c, fc.fileService.FindSentFiles)
}

func (fc *SharedFileController) list(
	c *gin.Context,
	find func(ctx context.Context, userUUID user.UUID, page int) (domain.SharedFiles, error),
) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	files, err := find(c.Request.Context(), callerID, page)
	if err != nil {
		writeError(c, fc.logger, "FindFiles()", err)
		return
	}

	c.JSON(http.StatusOK, sharedFile.ResponseData{
		Data: sharedFile.ToResponseFiles(files),
	})
}

// DownloadHandler takes credentials from headers so they stay out of URLs.
func (fc *SharedFileController) DownloadHandler(c *gin.Context) {
	fc.download(c, c.GetHeader(HeaderFilePassword), c.GetHeader(HeaderKeyPassword))
}

func (fc *SharedFileController) DownloadWithBodyHandler(c *gin.Context) {
	var req sharedFile.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid json"},
		)
		return
	}

	fc.download(c, req.Password, req.KeyPassword)
}

func (fc *SharedFileController) download(c *gin.Context, password, keyPassword string) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "file_id must be a valid UUID"},
		)
		return
	}

	res, err := fc.fileService.Retrieve(c.Request.Context(), ports.RetrieveRequest{
		CallerID:    callerID,
		FileID:      fileID,
		Password:    password,
		KeyPassword: keyPassword,
	})
	if err != nil {
		writeError(c, fc.logger, "Retrieve()", err)
		return
	}
	defer clear(res.Content)

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, res.ContentType, res.Content)
}
