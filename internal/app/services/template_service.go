package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/internhub/internal/app/auth"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/filestorage"
	"github.com/yigit/internhub/internal/pkg/helpers"
)

// generatedPrefix is the object storage prefix of generated documents
const generatedPrefix = "generated"

// TemplateData is the value templates are executed against
type TemplateData struct {
	InternName     string
	InternEmail    string
	Company        string
	Position       string
	Department     string
	StartDate      string
	EndDate        string
	TutorName      string
	CompanyName    string
	CompanyAddress string
	Signatory      string
	Today          string
}

// TemplateService defines the interface for template operations and document generation
type TemplateService interface {
	List(ctx context.Context, kind string) ([]*models.DocumentTemplate, error)
	GetByID(ctx context.Context, id int64) (*models.DocumentTemplate, error)
	Create(ctx context.Context, p *appauth.Principal, req *dto.CreateTemplateRequest) (*models.DocumentTemplate, error)
	Update(ctx context.Context, id int64, req *dto.UpdateTemplateRequest) (*models.DocumentTemplate, error)
	Delete(ctx context.Context, id int64) error
	Generate(ctx context.Context, p *appauth.Principal, req *dto.GenerateDocumentRequest) (*dto.GenerateDocumentResponse, error)
}

type templateServiceImpl struct {
	templates TemplateStore
	interns   InternStore
	settings  SettingStore
	documents DocumentStore
	storage   filestorage.ObjectStorage
	now       func() time.Time
	logger    zerolog.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(templates TemplateStore, interns InternStore, settings SettingStore, documents DocumentStore, storage filestorage.ObjectStorage, logger zerolog.Logger) TemplateService {
	return &templateServiceImpl{
		templates: templates,
		interns:   interns,
		settings:  settings,
		documents: documents,
		storage:   storage,
		now:       time.Now,
		logger:    logger,
	}
}

// parseTemplate compiles source and executes it once against empty data so
// references to unknown fields are rejected when the template is saved
func parseTemplate(name, source string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid template: " + err.Error())
	}
	if err := tmpl.Execute(io.Discard, TemplateData{}); err != nil {
		return nil, apperrors.NewValidationError("Invalid template: " + err.Error())
	}
	return tmpl, nil
}

func (s *templateServiceImpl) List(ctx context.Context, kind string) ([]*models.DocumentTemplate, error) {
	if kind == "" {
		return s.templates.List(ctx, nil)
	}
	k := models.TemplateKind(kind)
	return s.templates.List(ctx, &k)
}

func (s *templateServiceImpl) GetByID(ctx context.Context, id int64) (*models.DocumentTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *templateServiceImpl) Create(ctx context.Context, p *appauth.Principal, req *dto.CreateTemplateRequest) (*models.DocumentTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if _, err := parseTemplate(name, req.Content); err != nil {
		return nil, err
	}

	t := &models.DocumentTemplate{
		Name:    name,
		Kind:    models.TemplateKind(req.Kind),
		Content: req.Content,
	}
	if p.UserID != 0 {
		id := p.UserID
		t.CreatedBy = &id
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("templateId", t.ID).Str("kind", string(t.Kind)).Msg("Template created")
	return t, nil
}

func (s *templateServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateTemplateRequest) (*models.DocumentTemplate, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Kind != nil {
		t.Kind = models.TemplateKind(*req.Kind)
	}
	if req.Content != nil {
		if _, err := parseTemplate(t.Name, *req.Content); err != nil {
			return nil, err
		}
		t.Content = *req.Content
	}

	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.templates.GetByID(ctx, id)
}

func (s *templateServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.templates.Delete(ctx, id)
}

// Generate renders a template for one intern. Values are escaped by
// html/template according to where they appear in the markup.
func (s *templateServiceImpl) Generate(ctx context.Context, p *appauth.Principal, req *dto.GenerateDocumentRequest) (*dto.GenerateDocumentResponse, error) {
	tpl, err := s.pick(ctx, req)
	if err != nil {
		return nil, err
	}
	intern, err := s.interns.GetByID(ctx, req.InternID)
	if err != nil {
		return nil, err
	}
	if !p.CanSeeIntern(intern) {
		return nil, apperrors.ErrInternNotFound
	}

	data, err := s.templateData(ctx, intern)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(tpl.Name).Option("missingkey=error").Parse(tpl.Content)
	if err != nil {
		return nil, apperrors.NewValidationError("Stored template is invalid: " + err.Error())
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template %d: %w", tpl.ID, err)
	}

	resp := &dto.GenerateDocumentResponse{HTML: buf.String()}
	if !req.Store {
		return resp, nil
	}
	if p.UserID == 0 {
		return nil, apperrors.NewForbiddenError("A user profile is required to store documents")
	}

	doc, err := s.store(ctx, p, intern, tpl, buf.Bytes())
	if err != nil {
		return nil, err
	}
	resp.Document = doc
	return resp, nil
}

// pick selects the template by id, or the default one of the requested kind
func (s *templateServiceImpl) pick(ctx context.Context, req *dto.GenerateDocumentRequest) (*models.DocumentTemplate, error) {
	if req.TemplateID != nil {
		return s.templates.GetByID(ctx, *req.TemplateID)
	}
	if req.Kind == "" {
		return nil, apperrors.NewValidationError("Either templateId or kind is required")
	}
	return s.templates.GetDefaultByKind(ctx, models.TemplateKind(req.Kind))
}

func (s *templateServiceImpl) templateData(ctx context.Context, intern *models.Intern) (TemplateData, error) {
	data := TemplateData{
		InternName:  strings.TrimSpace(intern.FirstName + " " + intern.LastName),
		InternEmail: intern.Email,
		Company:     intern.Company,
		Position:    intern.Position,
		Department:  intern.Department,
		StartDate:   helpers.FormatDate(intern.StartDate),
		EndDate:     helpers.FormatDate(intern.EndDate),
		TutorName:   intern.TutorName,
		Today:       helpers.FormatDate(s.now()),
	}

	for key, dst := range map[string]*string{
		models.SettingCompanyName:    &data.CompanyName,
		models.SettingCompanyAddress: &data.CompanyAddress,
		models.SettingSignatory:      &data.Signatory,
	} {
		setting, err := s.settings.Get(ctx, key)
		if errors.Is(err, apperrors.ErrSettingNotFound) {
			continue
		}
		if err != nil {
			return TemplateData{}, err
		}
		*dst = setting.Value
	}
	return data, nil
}

// store uploads the rendered HTML and records it as a document of the intern's user
func (s *templateServiceImpl) store(ctx context.Context, p *appauth.Principal, intern *models.Intern, tpl *models.DocumentTemplate, html []byte) (*models.Document, error) {
	filename := fmt.Sprintf("%s-%d.html", tpl.Kind, intern.ID)
	key := filestorage.NewObjectKey(generatedPrefix, filename)
	if err := s.storage.Put(ctx, key, bytes.NewReader(html), int64(len(html)), "text/html"); err != nil {
		return nil, fmt.Errorf("failed to store generated document: %w", err)
	}

	doc := &models.Document{
		OwnerID:     intern.UserID,
		Name:        fmt.Sprintf("%s (%s)", tpl.Name, helpers.FormatDate(s.now())),
		MimeType:    "text/html",
		Size:        int64(len(html)),
		StoragePath: key,
		IsVisible:   true,
		UploadedBy:  p.UserID,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", key).Msg("Failed to remove orphaned generated document")
		}
		return nil, err
	}
	s.logger.Info().Int64("documentId", doc.ID).Int64("internId", intern.ID).Int64("templateId", tpl.ID).Msg("Document generated")
	return doc, nil
}
