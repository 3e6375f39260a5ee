package services

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

// multipartFile builds a FileHeader the way gin receives one
func multipartFile(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func newDocumentFixture() (DocumentService, *fakeDocuments, *memStorage) {
	interns := newFakeInterns(
		&models.Intern{ID: 1, UserID: 10, TutorID: int64Ptr(20)},
		&models.Intern{ID: 2, UserID: 11, TutorID: int64Ptr(30)},
	)
	requests := newFakeRequests(
		&models.Request{ID: 5, InternID: 1, Title: "Internship agreement"},
		&models.Request{ID: 6, InternID: 2, Title: "Leave"},
	)
	documents := newFakeDocuments(
		&models.Document{ID: 1, OwnerID: 10, Name: "cv.pdf", StoragePath: "documents/cv.pdf", IsVisible: true},
		&models.Document{ID: 2, OwnerID: 10, Name: "hr-notes.pdf", StoragePath: "documents/notes.pdf", IsVisible: false},
	)
	storage := newMemStorage()
	storage.objects["documents/cv.pdf"] = []byte("%PDF-cv")
	return NewDocumentService(documents, interns, requests, storage, zerolog.Nop()), documents, storage
}

func TestDocumentVisibility(t *testing.T) {
	svc, _, _ := newDocumentFixture()
	ctx := context.Background()

	_, err := svc.GetByID(ctx, internPrincipal, 1)
	assert.NoError(t, err)
	_, err = svc.GetByID(ctx, internPrincipal, 2)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)

	_, err = svc.GetByID(ctx, tutorPrincipal, 2)
	assert.NoError(t, err)
	_, err = svc.GetByID(ctx, otherTutor, 1)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
	_, err = svc.GetByID(ctx, hrPrincipal, 2)
	assert.NoError(t, err)
}

func TestDocumentOpen(t *testing.T) {
	svc, _, _ := newDocumentFixture()
	ctx := context.Background()

	doc, body, err := svc.Open(ctx, internPrincipal, 1)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", doc.Name)
	assert.Equal(t, "%PDF-cv", string(data))

	_, _, err = svc.Open(ctx, hrPrincipal, 2)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestDocumentUpload(t *testing.T) {
	svc, documents, storage := newDocumentFixture()
	ctx := context.Background()

	doc, err := svc.Upload(ctx, internPrincipal, &dto.UploadDocumentForm{IsVisible: boolPtr(false)}, multipartFile(t, "report.txt", "weekly report"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), doc.OwnerID)
	assert.Equal(t, "report.txt", doc.Name)
	assert.True(t, doc.IsVisible)
	assert.Equal(t, "weekly report", string(storage.objects[doc.StoragePath]))

	_, err = svc.Upload(ctx, internPrincipal, &dto.UploadDocumentForm{OwnerID: int64Ptr(11)}, multipartFile(t, "x.txt", "x"))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.Upload(ctx, otherTutor, &dto.UploadDocumentForm{OwnerID: int64Ptr(10)}, multipartFile(t, "x.txt", "x"))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	before := len(storage.objects)
	documents.err = errDB
	_, err = svc.Upload(ctx, hrPrincipal, &dto.UploadDocumentForm{OwnerID: int64Ptr(10)}, multipartFile(t, "x.txt", "x"))
	require.Error(t, err)
	assert.Len(t, storage.objects, before)
}

func TestDocumentUpload_RequestOutsideScope(t *testing.T) {
	svc, documents, storage := newDocumentFixture()
	ctx := context.Background()

	doc, err := svc.Upload(ctx, internPrincipal, &dto.UploadDocumentForm{RequestID: int64Ptr(5)}, multipartFile(t, "signed.pdf", "%PDF"))
	require.NoError(t, err)
	require.NotNil(t, doc.RequestID)
	assert.Equal(t, int64(5), *doc.RequestID)

	before := len(storage.objects)
	_, err = svc.Upload(ctx, internPrincipal, &dto.UploadDocumentForm{RequestID: int64Ptr(6)}, multipartFile(t, "x.pdf", "x"))
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	_, err = svc.Upload(ctx, internPrincipal, &dto.UploadDocumentForm{RequestID: int64Ptr(999)}, multipartFile(t, "x.pdf", "x"))
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	_, err = svc.Upload(ctx, tutorPrincipal, &dto.UploadDocumentForm{OwnerID: int64Ptr(10), RequestID: int64Ptr(6)}, multipartFile(t, "x.pdf", "x"))
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	assert.Len(t, storage.objects, before)

	_, err = svc.Upload(ctx, hrPrincipal, &dto.UploadDocumentForm{OwnerID: int64Ptr(10), RequestID: int64Ptr(6)}, multipartFile(t, "x.pdf", "x"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	list, _, err := documents.List(ctx, repositories.DocumentListParams{}, 0, 100)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestDocumentDelete(t *testing.T) {
	svc, documents, storage := newDocumentFixture()
	ctx := context.Background()

	err := svc.Delete(ctx, tutorPrincipal, 1)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, svc.Delete(ctx, internPrincipal, 1))
	_, err = documents.GetByID(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
	assert.NotContains(t, storage.objects, "documents/cv.pdf")
}

func TestDocumentSetVisibility_FallbackPrincipal(t *testing.T) {
	svc, _, _ := newDocumentFixture()

	_, err := svc.SetVisibility(context.Background(), &appauth.Principal{Role: models.RoleIntern, Fallback: true}, 1, false)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
}

func boolPtr(v bool) *bool { return &v }
