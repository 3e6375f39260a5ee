// Package services holds the business rules between controllers and
// repositories. Services receive the caller's principal and apply row level
// restrictions on top of the shared permission table.
package services

import (
	"context"
	"time"

	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/repositories"
)

// Stores are the repository methods services depend on. The repositories
// package satisfies them; tests use in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, params repositories.UserListParams, offset, limit uint64) ([]*models.User, int64, error)
	ListIDsByRole(ctx context.Context, role models.Role, activeOnly bool) ([]int64, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetRole(ctx context.Context, id int64, role models.Role) error
	UpdateLastLogin(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetValidToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

type InternStore interface {
	Create(ctx context.Context, intern *models.Intern) error
	GetByID(ctx context.Context, id int64) (*models.Intern, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Intern, error)
	List(ctx context.Context, params repositories.InternListParams, offset, limit uint64) ([]*models.Intern, int64, error)
	Update(ctx context.Context, intern *models.Intern) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type RequestStore interface {
	Create(ctx context.Context, req *models.Request) error
	GetByID(ctx context.Context, id int64) (*models.Request, error)
	List(ctx context.Context, params repositories.RequestListParams, offset, limit uint64) ([]*models.Request, int64, error)
	UpdateContent(ctx context.Context, req *models.Request) error
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, response *string, respondedBy int64) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	List(ctx context.Context, params repositories.DocumentListParams, offset, limit uint64) ([]*models.Document, int64, error)
	SetVisibility(ctx context.Context, id int64, visible bool) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type EvaluationStore interface {
	Create(ctx context.Context, e *models.Evaluation) error
	GetByID(ctx context.Context, id int64) (*models.Evaluation, error)
	List(ctx context.Context, params repositories.EvaluationListParams, offset, limit uint64) ([]*models.Evaluation, int64, error)
	Update(ctx context.Context, e *models.Evaluation) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, offset, limit uint64) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, userID, id int64) error
}

type PlanningStore interface {
	Create(ctx context.Context, p *models.PlanningEntry) error
	GetByID(ctx context.Context, id int64) (*models.PlanningEntry, error)
	List(ctx context.Context, params repositories.PlanningListParams) ([]*models.PlanningEntry, error)
	Update(ctx context.Context, p *models.PlanningEntry) error
	Delete(ctx context.Context, id int64) error
	CountUpcoming(ctx context.Context, from time.Time) (int64, error)
}

type TemplateStore interface {
	Create(ctx context.Context, t *models.DocumentTemplate) error
	GetByID(ctx context.Context, id int64) (*models.DocumentTemplate, error)
	GetDefaultByKind(ctx context.Context, kind models.TemplateKind) (*models.DocumentTemplate, error)
	List(ctx context.Context, kind *models.TemplateKind) ([]*models.DocumentTemplate, error)
	Update(ctx context.Context, t *models.DocumentTemplate) error
	Delete(ctx context.Context, id int64) error
}

type SettingStore interface {
	List(ctx context.Context) ([]*models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key, value string) (*models.Setting, error)
}
