// Package web serves the job board over HTTP.
//
// Every site request passes through, in order:
//
//	Recovery → RequestLogger → RecordCampaignViews → BoardResolver → RequestFlags → handler
//
// RecordCampaignViews does its work after the handler returns, once the
// handler has listed the campaigns it rendered.
//
// Routes:
//
//	GET /health          → liveness
//	GET /                → HTML front page
//	GET /api/posts       → listed posts (showall, pinned, type, category, tag, location, domain, status)
//	GET /api/posts/all   → every listed post, paged (order_by, desc, start, limit)
//	GET /api/tags        → tag cloud (alltime)
//	GET /api/geo         → geodata for ?location=
package web

import (
	"context"
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mahesh-singh/hasjob/internal/filters"
	"github.com/mahesh-singh/hasjob/internal/model"
	"github.com/mahesh-singh/hasjob/internal/session"
	"github.com/mahesh-singh/hasjob/internal/store"
)

const version = "1.0.0"

//go:embed templates/*.html
var templateFS embed.FS

// Store is the data access the view layer needs; *store.Store satisfies it.
type Store interface {
	GetPosts(ctx context.Context, board *model.Board, f store.PostFilter) ([]model.JobPost, error)
	GetAllPosts(ctx context.Context, opts store.AllPostsOptions) (int, []model.JobPost, error)
	BoardByName(ctx context.Context, name string) (*model.Board, error)
	CampaignByName(ctx context.Context, name string) (*model.Campaign, error)
	CampaignForContext(ctx context.Context, position model.CampaignPosition, board *model.Board) (*model.Campaign, error)
	CampaignViewExists(ctx context.Context, campaignID int64, userID string) (bool, error)
	AddCampaignView(ctx context.Context, campaignID int64, userID string) (bool, error)
}

// Sessions loads browser sessions; *session.Store satisfies it.
type Sessions interface {
	Load(ctx context.Context, id string) (session.Session, error)
}

// TagSource serves tag counts; *tagcache.Cache satisfies it.
type TagSource interface {
	Tags(ctx context.Context, board *model.Board, alltime bool) ([]model.TagCount, error)
}

// Geocoder resolves location names; *geo.Client satisfies it.
type Geocoder interface {
	LocationGeodata(ctx context.Context, location string) (map[string]any, error)
}

// Deps holds the Server's collaborators.
type Deps struct {
	Store      Store
	Sessions   Sessions
	Tags       TagSource
	Geo        Geocoder
	Redis      redis.Cmdable // view counts and campaign view events
	Filters    *filters.Filters
	ServerName string
}

// Server holds shared dependencies.
type Server struct {
	Deps
	pages *template.Template
}

// NewServer parses the page templates and returns a Server.
func NewServer(d Deps) (*Server, error) {
	if d.Filters == nil {
		d.Filters = filters.New(nil, false)
	}
	pages, err := template.New("").Funcs(d.Filters.FuncMap(nil)).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{Deps: d, pages: pages}, nil
}

// Router returns a gin engine with the middleware chain and all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/health", healthHandler)

	site := r.Group("/")
	site.Use(s.RecordCampaignViews(), s.BoardResolver(), s.RequestFlags())
	site.GET("/", s.index)

	api := site.Group("/api")
	api.GET("/posts", s.listPosts)
	api.GET("/posts/all", s.listAllPosts)
	api.GET("/tags", s.listTags)
	api.GET("/geo", s.geodata)

	return r
}
