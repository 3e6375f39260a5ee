package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/filestorage"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// documentPrefix is the object storage prefix of uploaded documents
const documentPrefix = "documents"

// DocumentService defines the interface for document operations
type DocumentService interface {
	List(ctx context.Context, p *appauth.Principal, filter dto.DocumentFilter) (*dto.ListResponse[*models.Document], error)
	GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.Document, error)
	Open(ctx context.Context, p *appauth.Principal, id int64) (*models.Document, io.ReadCloser, error)
	Upload(ctx context.Context, p *appauth.Principal, form *dto.UploadDocumentForm, file *multipart.FileHeader) (*models.Document, error)
	SetVisibility(ctx context.Context, p *appauth.Principal, id int64, visible bool) (*models.Document, error)
	Delete(ctx context.Context, p *appauth.Principal, id int64) error
}

type documentServiceImpl struct {
	documents DocumentStore
	interns   InternStore
	requests  RequestStore
	storage   filestorage.ObjectStorage
	logger    zerolog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(documents DocumentStore, interns InternStore, requests RequestStore, storage filestorage.ObjectStorage, logger zerolog.Logger) DocumentService {
	return &documentServiceImpl{
		documents: documents,
		interns:   interns,
		requests:  requests,
		storage:   storage,
		logger:    logger,
	}
}

// List returns documents in the caller's scope. Interns only see their own
// visible documents.
func (s *documentServiceImpl) List(ctx context.Context, p *appauth.Principal, filter dto.DocumentFilter) (*dto.ListResponse[*models.Document], error) {
	params := repositories.DocumentListParams{
		OwnerID:     filter.OwnerID,
		RequestID:   filter.RequestID,
		VisibleOnly: p.Role == models.RoleIntern,
		Scope:       p.Scope(),
	}

	page, size := helpers.NormalizePage(filter.Page, filter.Size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.documents.List(ctx, params, offset, limit)
	if err != nil {
		return nil, err
	}
	return &dto.ListResponse[*models.Document]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

func (s *documentServiceImpl) GetByID(ctx context.Context, p *appauth.Principal, id int64) (*models.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.canSee(ctx, p, doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrDocumentNotFound
	}
	return doc, nil
}

// canSee applies row level rules to a single document
func (s *documentServiceImpl) canSee(ctx context.Context, p *appauth.Principal, doc *models.Document) (bool, error) {
	if p.IsStaff() {
		return true, nil
	}
	if p.UserID != 0 && doc.OwnerID == p.UserID {
		return p.Role != models.RoleIntern || doc.IsVisible, nil
	}
	if p.Role != models.RoleTutor {
		return false, nil
	}
	return s.supervises(ctx, p, doc.OwnerID)
}

// supervises reports whether the tutor principal supervises the intern owned by userID
func (s *documentServiceImpl) supervises(ctx context.Context, p *appauth.Principal, userID int64) (bool, error) {
	intern, err := s.interns.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrInternNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.CanSeeIntern(intern), nil
}

// Open returns the document metadata and a reader over its bytes. The caller
// closes the reader.
func (s *documentServiceImpl) Open(ctx context.Context, p *appauth.Principal, id int64) (*models.Document, io.ReadCloser, error) {
	doc, err := s.GetByID(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.storage.Get(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, filestorage.ErrObjectNotFound) {
			s.logger.Error().Int64("documentId", id).Str("key", doc.StoragePath).Msg("Document object is missing from storage")
			return nil, nil, apperrors.NewResourceNotFoundError("Document content not found")
		}
		return nil, nil, fmt.Errorf("failed to open document %d: %w", id, err)
	}
	return doc, body, nil
}

// Upload stores the file and records it. Interns always upload for
// themselves; staff and tutors may name another owner.
func (s *documentServiceImpl) Upload(ctx context.Context, p *appauth.Principal, form *dto.UploadDocumentForm, file *multipart.FileHeader) (*models.Document, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("A file is required")
	}
	if p.UserID == 0 {
		return nil, apperrors.NewForbiddenError("A user profile is required to upload documents")
	}

	ownerID := p.UserID
	if form.OwnerID != nil && *form.OwnerID != p.UserID {
		if p.Role == models.RoleIntern {
			return nil, apperrors.NewForbiddenError("Interns can only upload their own documents")
		}
		if p.Role == models.RoleTutor {
			ok, err := s.supervises(ctx, p, *form.OwnerID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperrors.NewForbiddenError("You can only upload documents for your interns")
			}
		}
		ownerID = *form.OwnerID
	}

	if form.RequestID != nil {
		if err := s.checkRequest(ctx, p, *form.RequestID, ownerID); err != nil {
			return nil, err
		}
	}

	visible := true
	if form.IsVisible != nil && p.Role != models.RoleIntern {
		visible = *form.IsVisible
	}

	obj, err := filestorage.SaveUpload(ctx, s.storage, file, documentPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	name := strings.TrimSpace(form.Name)
	if name == "" {
		name = obj.Filename
	}
	doc := &models.Document{
		OwnerID:     ownerID,
		RequestID:   form.RequestID,
		Name:        name,
		MimeType:    obj.MimeType,
		Size:        obj.Size,
		StoragePath: obj.Key,
		IsVisible:   visible,
		UploadedBy:  p.UserID,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, obj.Key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", obj.Key).Msg("Failed to remove orphaned upload")
		}
		return nil, err
	}

	s.logger.Info().Int64("documentId", doc.ID).Int64("ownerId", ownerID).Int64("size", doc.Size).Msg("Document uploaded")
	return doc, nil
}

// checkRequest accepts a request the caller can see and that belongs to the
// intern owning the document
func (s *documentServiceImpl) checkRequest(ctx context.Context, p *appauth.Principal, requestID, ownerID int64) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	intern, err := s.interns.GetByID(ctx, req.InternID)
	if errors.Is(err, apperrors.ErrInternNotFound) {
		return apperrors.ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if !p.CanSeeIntern(intern) {
		return apperrors.ErrRequestNotFound
	}
	if intern.UserID != ownerID {
		return apperrors.NewValidationError("The request belongs to another intern")
	}
	return nil
}

// SetVisibility is limited to staff and the document owner
func (s *documentServiceImpl) SetVisibility(ctx context.Context, p *appauth.Principal, id int64, visible bool) (*models.Document, error) {
	doc, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.documents.SetVisibility(ctx, doc.ID, visible); err != nil {
		return nil, err
	}
	return s.documents.GetByID(ctx, id)
}

// Delete removes the row first, then the stored object
func (s *documentServiceImpl) Delete(ctx context.Context, p *appauth.Principal, id int64) error {
	doc, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil && !errors.Is(err, filestorage.ErrObjectNotFound) {
		s.logger.Warn().Err(err).Int64("documentId", id).Str("key", doc.StoragePath).Msg("Failed to delete document object")
	}
	s.logger.Info().Int64("documentId", id).Int64("by", p.UserID).Msg("Document deleted")
	return nil
}

func (s *documentServiceImpl) owned(ctx context.Context, p *appauth.Principal, id int64) (*models.Document, error) {
	doc, err := s.GetByID(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !p.IsStaff() && doc.OwnerID != p.UserID {
		return nil, apperrors.ErrPermissionDenied
	}
	return doc, nil
}
