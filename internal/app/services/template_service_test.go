package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/models/dto"
	"github.com/yigit/internhub/internal/pkg/apperrors"
)

const attestationSource = `<h1>{{.CompanyName}}</h1><p>{{.InternName}} worked as {{.Position}} from {{.StartDate}} to {{.EndDate}}.</p><a href="/?who={{.InternName}}">x</a><p>{{.Signatory}}, {{.Today}}</p>`

type templateFixture struct {
	svc       TemplateService
	documents *fakeDocuments
	storage   *memStorage
}

func newTemplateFixture(firstName string) *templateFixture {
	interns := newFakeInterns(&models.Intern{
		ID: 1, UserID: 10, FirstName: firstName, LastName: "Doe",
		Company: "Acme", Position: "Analyst",
		StartDate: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
	})
	templates := newFakeTemplates(&models.DocumentTemplate{
		ID: 1, Name: "Default attestation", Kind: models.TemplateKindAttestation, Content: attestationSource,
	})
	settings := fakeSettings{models.SettingCompanyName: "Acme & Sons", models.SettingSignatory: "J. Smith"}
	documents := newFakeDocuments()
	storage := newMemStorage()

	svc := NewTemplateService(templates, interns, settings, documents, storage, zerolog.Nop()).(*templateServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC) }

	return &templateFixture{svc: svc, documents: documents, storage: storage}
}

func TestGenerate_RendersAndEscapes(t *testing.T) {
	f := newTemplateFixture(`<script>alert(1)</script>`)

	resp, err := f.svc.Generate(context.Background(), hrPrincipal, &dto.GenerateDocumentRequest{
		InternID: 1, Kind: "attestation",
	})
	require.NoError(t, err)

	assert.Contains(t, resp.HTML, "<h1>Acme &amp; Sons</h1>")
	assert.Contains(t, resp.HTML, "&lt;script&gt;alert(1)&lt;/script&gt; Doe")
	assert.NotContains(t, resp.HTML, "<script>")
	assert.Contains(t, resp.HTML, `href="/?who=%3cscript%3ealert%281%29%3c%2fscript%3e%20Doe"`)
	assert.Contains(t, resp.HTML, "February 3, 2025")
	assert.Contains(t, resp.HTML, "J. Smith, August 1, 2025")
	assert.Nil(t, resp.Document)
	assert.Empty(t, f.storage.objects)
}

func TestGenerate_StoreCreatesDocument(t *testing.T) {
	f := newTemplateFixture("Jane")

	resp, err := f.svc.Generate(context.Background(), hrPrincipal, &dto.GenerateDocumentRequest{
		InternID: 1, TemplateID: int64Ptr(1), Store: true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Document)

	doc := resp.Document
	assert.Equal(t, int64(10), doc.OwnerID)
	assert.Equal(t, int64(2), doc.UploadedBy)
	assert.Equal(t, "text/html", doc.MimeType)
	assert.True(t, doc.IsVisible)
	assert.Equal(t, int64(len(resp.HTML)), doc.Size)
	assert.Equal(t, resp.HTML, string(f.storage.objects[doc.StoragePath]))
}

func TestGenerate_StoreFailureRemovesObject(t *testing.T) {
	f := newTemplateFixture("Jane")
	f.documents.err = errDB

	_, err := f.svc.Generate(context.Background(), hrPrincipal, &dto.GenerateDocumentRequest{
		InternID: 1, Kind: "attestation", Store: true,
	})
	require.Error(t, err)
	assert.Empty(t, f.storage.objects)
}

func TestGenerate_MissingTemplate(t *testing.T) {
	f := newTemplateFixture("Jane")

	_, err := f.svc.Generate(context.Background(), hrPrincipal, &dto.GenerateDocumentRequest{InternID: 1, Kind: "convention"})
	assert.ErrorIs(t, err, apperrors.ErrTemplateNotFound)

	_, err = f.svc.Generate(context.Background(), hrPrincipal, &dto.GenerateDocumentRequest{InternID: 1})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestTemplateCreate_RejectsInvalidSource(t *testing.T) {
	f := newTemplateFixture("Jane")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, hrPrincipal, &dto.CreateTemplateRequest{Name: "Broken", Kind: "custom", Content: "{{.InternName"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.Create(ctx, hrPrincipal, &dto.CreateTemplateRequest{Name: "Unknown", Kind: "custom", Content: "{{.Salary}}"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	created, err := f.svc.Create(ctx, hrPrincipal, &dto.CreateTemplateRequest{Name: " Custom ", Kind: "custom", Content: "<p>{{.InternName}}</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Custom", created.Name)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, int64(2), *created.CreatedBy)
}
