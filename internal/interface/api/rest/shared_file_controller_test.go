package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fileshare-api/internal/application/apperr"
	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/domain/user"
	jwtSvc "fileshare-api/internal/infrastructure/jwt"
)

type FakeSharedFileService struct {
	UploadFunc            func(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error)
	RetrieveFunc          func(ctx context.Context, req ports.RetrieveRequest) (*ports.Retrieved, error)
	FindReceivedFilesFunc func(ctx context.Context, recipientID user.UUID, page int) (domain.SharedFiles, error)
	FindSentFilesFunc     func(ctx context.Context, ownerID user.UUID, page int) (domain.SharedFiles, error)
}

func (f *FakeSharedFileService) Upload(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error) {
	if f.UploadFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UploadFunc(ctx, req)
}
func (f *FakeSharedFileService) Retrieve(ctx context.Context, req ports.RetrieveRequest) (*ports.Retrieved, error) {
	if f.RetrieveFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RetrieveFunc(ctx, req)
}
func (f *FakeSharedFileService) FindReceivedFiles(ctx context.Context, recipientID user.UUID, page int) (domain.SharedFiles, error) {
	if f.FindReceivedFilesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindReceivedFilesFunc(ctx, recipientID, page)
}
func (f *FakeSharedFileService) FindSentFiles(ctx context.Context, ownerID user.UUID, page int) (domain.SharedFiles, error) {
	if f.FindSentFilesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindSentFilesFunc(ctx, ownerID, page)
}

const testMaxFileSize = 1 << 10

func setupFileRouter(t *testing.T, fs ports.SharedFileService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	NewSharedFileController(r, fs, zap.NewNop(), jwtSvc.New("test-secret"), testMaxFileSize)
	return r
}

func bearer(t *testing.T, userID uuid.UUID) map[string]string {
	t.Helper()
	tok, err := SignJWT("test-secret", userID.String(), user.RoleUser, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

type part struct {
	field, name string
	content     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...part) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = w.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doMultipart(t *testing.T, r *gin.Engine, body *bytes.Buffer, contentType string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, RouteFiles, body)
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func someSharedFile(owner, recipient uuid.UUID) *domain.SharedFile {
	now := time.Now().UTC()
	return &domain.SharedFile{
		ID:          uuid.New(),
		OwnerID:     owner,
		RecipientID: recipient,
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		SizeBytes:   5,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
}

func TestSharedFileController_UploadHandler(t *testing.T) {
	owner := uuid.New()
	fields := map[string]string{
		"recipient_email": "bob@example.com",
		"password":        "gate",
		"expiration_date": "2030-01-01",
	}

	tests := []struct {
		name       string
		headers    map[string]string
		files      []part
		uploadFn   func(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "401 missing auth header",
			files:      []part{{"file", "report.pdf", []byte("hello")}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "201 success",
			headers: bearer(t, owner),
			files:   []part{{"file", "report.pdf", []byte("hello")}},
			uploadFn: func(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error) {
				assert.Equal(t, owner, req.OwnerID)
				assert.Equal(t, "bob@example.com", req.RecipientEmail)
				assert.Equal(t, "gate", req.Password)
				assert.Equal(t, "2030-01-01", req.ExpirationDate)
				require.NotNil(t, req.File)
				assert.Equal(t, "report.pdf", req.File.Filename)
				assert.Equal(t, int64(5), req.File.Size)
				return someSharedFile(owner, uuid.New()), nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:    "201 fileUpload alias",
			headers: bearer(t, owner),
			files:   []part{{"fileUpload", "notes.txt", []byte("hi")}},
			uploadFn: func(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error) {
				require.NotNil(t, req.File)
				assert.Equal(t, "notes.txt", req.File.Filename)
				return someSharedFile(owner, uuid.New()), nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:    "400 missing file reported by pipeline",
			headers: bearer(t, owner),
			uploadFn: func(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error) {
				assert.Nil(t, req.File)
				return nil, apperr.Validation(apperr.CodeInvalidInput, "invalid input", map[string]string{"file": "file is required"})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.CodeInvalidInput,
		},
		{
			name:    "404 recipient not found",
			headers: bearer(t, owner),
			files:   []part{{"file", "report.pdf", []byte("hello")}},
			uploadFn: func(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error) {
				return nil, apperr.ErrRecipientNotFound
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apperr.CodeRecipientNotFound,
		},
		{
			name:    "400 recipient has no key",
			headers: bearer(t, owner),
			files:   []part{{"file", "report.pdf", []byte("hello")}},
			uploadFn: func(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error) {
				return nil, apperr.ErrRecipientHasNoKey
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.CodeRecipientHasNoKey,
		},
		{
			name:       "400 body over limit",
			headers:    bearer(t, owner),
			files:      []part{{"file", "big.bin", bytes.Repeat([]byte{'x'}, testMaxFileSize+multipartOverhead)}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.CodeFileTooLarge,
		},
		{
			name:    "500 storage failure",
			headers: bearer(t, owner),
			files:   []part{{"file", "report.pdf", []byte("hello")}},
			uploadFn: func(ctx context.Context, req ports.UploadRequest) (*domain.SharedFile, error) {
				return nil, apperr.Storage("put object", errors.New("minio down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperr.CodeStorageFailure,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupFileRouter(t, &FakeSharedFileService{UploadFunc: tt.uploadFn})
			body, ct := multipartBody(t, fields, tt.files...)
			rr := doMultipart(t, r, body, ct, tt.headers)
			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantCode != "" {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCode, resp["code"])
				assert.NotContains(t, rr.Body.String(), "minio down")
			}
		})
	}
}

func TestSharedFileController_UploadHandler_NotMultipart(t *testing.T) {
	r := setupFileRouter(t, &FakeSharedFileService{})
	rr := doReq(t, r, http.MethodPost, RouteFiles, map[string]string{"file": "x"}, bearer(t, uuid.New()))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid multipart form")
}

func TestSharedFileController_ListHandlers(t *testing.T) {
	caller := uuid.New()

	tests := []struct {
		name       string
		path       string
		svc        *FakeSharedFileService
		wantStatus int
		wantLen    int
	}{
		{
			name: "200 received",
			path: RouteFiles + "?page=2",
			svc: &FakeSharedFileService{
				FindReceivedFilesFunc: func(ctx context.Context, recipientID user.UUID, page int) (domain.SharedFiles, error) {
					assert.Equal(t, caller, recipientID)
					assert.Equal(t, 2, page)
					return domain.SharedFiles{someSharedFile(uuid.New(), caller), someSharedFile(uuid.New(), caller)}, nil
				},
			},
			wantStatus: http.StatusOK,
			wantLen:    2,
		},
		{
			name: "200 sent",
			path: RouteSentFiles,
			svc: &FakeSharedFileService{
				FindSentFilesFunc: func(ctx context.Context, ownerID user.UUID, page int) (domain.SharedFiles, error) {
					assert.Equal(t, caller, ownerID)
					assert.Equal(t, 1, page)
					return domain.SharedFiles{someSharedFile(caller, uuid.New())}, nil
				},
			},
			wantStatus: http.StatusOK,
			wantLen:    1,
		},
		{
			name:       "400 bad page",
			path:       RouteFiles + "?page=zero",
			svc:        &FakeSharedFileService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "500 storage failure",
			path: RouteFiles,
			svc: &FakeSharedFileService{
				FindReceivedFilesFunc: func(ctx context.Context, recipientID user.UUID, page int) (domain.SharedFiles, error) {
					return nil, apperr.Storage("list", errors.New("timeout"))
				},
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupFileRouter(t, tt.svc)
			rr := doReq(t, r, http.MethodGet, tt.path, nil, bearer(t, caller))
			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Data []map[string]any `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Len(t, resp.Data, tt.wantLen)
				assert.NotContains(t, rr.Body.String(), "storage_key")
			}
		})
	}
}

func TestSharedFileController_DownloadHandler(t *testing.T) {
	caller := uuid.New()
	fileID := uuid.New()
	content := []byte("%PDF-1.7 quarterly numbers")

	ok := func(t *testing.T, wantPassword, wantKeyPassword string) func(ctx context.Context, req ports.RetrieveRequest) (*ports.Retrieved, error) {
		return func(ctx context.Context, req ports.RetrieveRequest) (*ports.Retrieved, error) {
			assert.Equal(t, caller, req.CallerID)
			assert.Equal(t, fileID, req.FileID)
			assert.Equal(t, wantPassword, req.Password)
			assert.Equal(t, wantKeyPassword, req.KeyPassword)
			return &ports.Retrieved{
				FileName:    "report.pdf",
				ContentType: "application/pdf",
				Content:     append([]byte(nil), content...),
			}, nil
		}
	}
	failWith := func(err error) func(ctx context.Context, req ports.RetrieveRequest) (*ports.Retrieved, error) {
		return func(ctx context.Context, req ports.RetrieveRequest) (*ports.Retrieved, error) {
			return nil, err
		}
	}

	tests := []struct {
		name       string
		method     string
		fileID     string
		headers    map[string]string
		body       any
		retrieveFn func(ctx context.Context, req ports.RetrieveRequest) (*ports.Retrieved, error)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "200 credentials in headers",
			method:     http.MethodGet,
			fileID:     fileID.String(),
			headers:    map[string]string{HeaderFilePassword: "gate", HeaderKeyPassword: "key-secret"},
			retrieveFn: ok(t, "gate", "key-secret"),
			wantStatus: http.StatusOK,
		},
		{
			name:       "200 credentials in body",
			method:     http.MethodPost,
			fileID:     fileID.String(),
			body:       map[string]string{"password": "gate", "key_password": "key-secret"},
			retrieveFn: ok(t, "gate", "key-secret"),
			wantStatus: http.StatusOK,
		},
		{
			name:       "400 invalid body",
			method:     http.MethodPost,
			fileID:     fileID.String(),
			body:       "{bad json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "400 invalid uuid",
			method:     http.MethodGet,
			fileID:     "not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "404 not found",
			method:     http.MethodGet,
			fileID:     fileID.String(),
			retrieveFn: failWith(apperr.ErrFileNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   apperr.CodeFileNotFound,
		},
		{
			name:       "403 wrong file password",
			method:     http.MethodGet,
			fileID:     fileID.String(),
			retrieveFn: failWith(apperr.ErrInvalidPassword),
			wantStatus: http.StatusForbidden,
			wantCode:   apperr.CodeInvalidPassword,
		},
		{
			name:       "403 decryption failed",
			method:     http.MethodGet,
			fileID:     fileID.String(),
			retrieveFn: failWith(apperr.Wrap(apperr.ErrDecryptionFailed, errors.New("message authentication failed"))),
			wantStatus: http.StatusForbidden,
			wantCode:   apperr.CodeDecryptionFailed,
		},
		{
			name:       "410 expired",
			method:     http.MethodGet,
			fileID:     fileID.String(),
			retrieveFn: failWith(apperr.ErrExpired),
			wantStatus: http.StatusGone,
			wantCode:   apperr.CodeExpired,
		},
		{
			name:       "410 already consumed",
			method:     http.MethodPost,
			fileID:     fileID.String(),
			body:       map[string]string{"key_password": "key-secret"},
			retrieveFn: failWith(apperr.ErrAlreadyConsumed),
			wantStatus: http.StatusGone,
			wantCode:   apperr.CodeAlreadyConsumed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupFileRouter(t, &FakeSharedFileService{RetrieveFunc: tt.retrieveFn})

			headers := bearer(t, caller)
			for k, v := range tt.headers {
				headers[k] = v
			}
			path := strings.Replace(RouteFileDownload, ":file_id", tt.fileID, 1)
			rr := doReq(t, r, tt.method, path, tt.body, headers)
			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, content, rr.Body.Bytes())
				assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
				assert.Equal(t, `attachment; filename=report.pdf`, rr.Header().Get("Content-Disposition"))
				assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
				return
			}
			if tt.wantCode != "" {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCode, resp["code"])
				assert.NotContains(t, rr.Body.String(), "authentication failed")
			}
		})
	}
}

func TestSharedFileController_DownloadHandler_Unauthenticated(t *testing.T) {
	r := setupFileRouter(t, &FakeSharedFileService{})
	path := strings.Replace(RouteFileDownload, ":file_id", uuid.NewString(), 1)
	rr := doReq(t, r, http.MethodGet, path, nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
