package auth

import (
	"strings"

	"github.com/yigit/internhub/internal/app/models"
)

// Resource is something a role may act on: an API entity or a page area
type Resource string

const (
	ResourceAdminArea  Resource = "area:admin"
	ResourceHRArea     Resource = "area:hr"
	ResourceTutorArea  Resource = "area:tutor"
	ResourceInternArea Resource = "area:intern"

	ResourceUser         Resource = "user"
	ResourceIntern       Resource = "intern"
	ResourceRequest      Resource = "request"
	ResourceDocument     Resource = "document"
	ResourceEvaluation   Resource = "evaluation"
	ResourcePlanning     Resource = "planning"
	ResourceNotification Resource = "notification"
	ResourceTemplate     Resource = "template"
	ResourceSetting      Resource = "setting"
	ResourceStats        Resource = "stats"
)

// Action is a verb on a resource
type Action string

const (
	ActionView      Action = "view"
	ActionList      Action = "list"
	ActionRead      Action = "read"
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionStatus    Action = "status"
	ActionGenerate  Action = "generate"
	ActionBroadcast Action = "broadcast"
)

// Permission is a resource and action pair
type Permission struct {
	Resource Resource
	Action   Action
}

// String returns resource:action
func (p Permission) String() string {
	return string(p.Resource) + ":" + string(p.Action)
}

var (
	everyone  = []models.Role{models.RoleAdmin, models.RoleHR, models.RoleTutor, models.RoleIntern}
	staff     = []models.Role{models.RoleAdmin, models.RoleHR}
	adminOnly = []models.Role{models.RoleAdmin}
	mentors   = []models.Role{models.RoleAdmin, models.RoleHR, models.RoleTutor}
	filers    = []models.Role{models.RoleAdmin, models.RoleHR, models.RoleIntern}
)

// policy is the single permission table. Row level restrictions (own
// records, supervised interns) are applied by services on top of it.
var policy = buildPolicy(map[Permission][]models.Role{
	{ResourceAdminArea, ActionView}:  adminOnly,
	{ResourceHRArea, ActionView}:     staff,
	{ResourceTutorArea, ActionView}:  mentors,
	{ResourceInternArea, ActionView}: {models.RoleAdmin, models.RoleIntern},

	{ResourceUser, ActionList}:   staff,
	{ResourceUser, ActionRead}:   mentors,
	{ResourceUser, ActionCreate}: adminOnly,
	{ResourceUser, ActionUpdate}: adminOnly,
	{ResourceUser, ActionDelete}: adminOnly,

	{ResourceIntern, ActionList}:   mentors,
	{ResourceIntern, ActionRead}:   everyone,
	{ResourceIntern, ActionCreate}: staff,
	{ResourceIntern, ActionUpdate}: staff,
	{ResourceIntern, ActionDelete}: staff,

	{ResourceRequest, ActionList}:   everyone,
	{ResourceRequest, ActionRead}:   everyone,
	{ResourceRequest, ActionCreate}: filers,
	{ResourceRequest, ActionUpdate}: filers,
	{ResourceRequest, ActionStatus}: mentors,
	{ResourceRequest, ActionDelete}: staff,

	{ResourceDocument, ActionList}:     everyone,
	{ResourceDocument, ActionRead}:     everyone,
	{ResourceDocument, ActionCreate}:   everyone,
	{ResourceDocument, ActionUpdate}:   filers,
	{ResourceDocument, ActionDelete}:   filers,
	{ResourceDocument, ActionGenerate}: staff,

	{ResourceEvaluation, ActionList}:   everyone,
	{ResourceEvaluation, ActionRead}:   everyone,
	{ResourceEvaluation, ActionCreate}: mentors,
	{ResourceEvaluation, ActionUpdate}: mentors,
	{ResourceEvaluation, ActionDelete}: staff,

	{ResourcePlanning, ActionList}:   everyone,
	{ResourcePlanning, ActionRead}:   everyone,
	{ResourcePlanning, ActionCreate}: mentors,
	{ResourcePlanning, ActionUpdate}: mentors,
	{ResourcePlanning, ActionDelete}: mentors,

	{ResourceNotification, ActionList}:      everyone,
	{ResourceNotification, ActionUpdate}:    everyone,
	{ResourceNotification, ActionDelete}:    everyone,
	{ResourceNotification, ActionBroadcast}: staff,

	{ResourceTemplate, ActionList}:   staff,
	{ResourceTemplate, ActionRead}:   staff,
	{ResourceTemplate, ActionCreate}: staff,
	{ResourceTemplate, ActionUpdate}: staff,
	{ResourceTemplate, ActionDelete}: staff,

	{ResourceSetting, ActionRead}:   staff,
	{ResourceSetting, ActionUpdate}: adminOnly,

	{ResourceStats, ActionRead}: staff,
})

func buildPolicy(table map[Permission][]models.Role) map[models.Role]map[Permission]bool {
	out := make(map[models.Role]map[Permission]bool, len(models.AllRoles))
	for perm, roles := range table {
		for _, r := range roles {
			if out[r] == nil {
				out[r] = make(map[Permission]bool)
			}
			out[r][perm] = true
		}
	}
	return out
}

// IsAllowed reports whether role may perform action on resource. Unknown
// roles, resources and actions are denied.
func IsAllowed(role models.Role, resource Resource, action Action) bool {
	return policy[role][Permission{Resource: resource, Action: action}]
}

// pageArea maps a page path prefix to the resource guarding it
type pageArea struct {
	prefix   string
	resource Resource
}

var pageAreas = []pageArea{
	{"/admin", ResourceAdminArea},
	{"/rh", ResourceHRArea},
	{"/tuteur", ResourceTutorArea},
	{"/stagiaire", ResourceInternArea},
}

// AreaForPath returns the page area resource guarding path, if any
func AreaForPath(path string) (Resource, bool) {
	for _, a := range pageAreas {
		if hasSegmentPrefix(path, a.prefix) {
			return a.resource, true
		}
	}
	return "", false
}

// HomePath is the landing page of a role
func HomePath(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleHR:
		return "/rh"
	case models.RoleTutor:
		return "/tuteur"
	case models.RoleIntern:
		return "/stagiaire"
	}
	return LoginPath
}

// LoginPath is where unauthenticated page requests are sent
const LoginPath = "/auth/login"

var publicPrefixes = []string{
	LoginPath,
	"/auth/register",
	"/auth/oidc",
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/refresh",
	"/api/auth/oidc",
	"/ping",
	"/health",
	"/swagger",
	"/assets",
	"/favicon.ico",
}

// IsPublicPath reports whether path is reachable without a session
func IsPublicPath(path string) bool {
	for _, p := range publicPrefixes {
		if hasSegmentPrefix(path, p) {
			return true
		}
	}
	return false
}

// IsAPIPath reports whether path belongs to the JSON API
func IsAPIPath(path string) bool {
	return hasSegmentPrefix(path, "/api")
}

// hasSegmentPrefix matches prefix on whole path segments, so /admin matches
// /admin and /admin/users but not /administrator
func hasSegmentPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}
