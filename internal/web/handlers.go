package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mahesh-singh/hasjob/internal/model"
	"github.com/mahesh-singh/hasjob/internal/store"
)

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "hasjob",
		"version": version,
	})
}

// ─── Pages ───────────────────────────────────────────────────────────────────

type indexPost struct {
	model.JobPost
	Views int64
}

// index renders the front page: pinned posts first, then new posts.
func (s *Server) index(c *gin.Context) {
	ctx := c.Request.Context()
	f := FlagsFrom(c)

	posts, err := s.Store.GetPosts(ctx, f.Board, store.PostFilter{Pinned: true})
	if err != nil {
		logrus.WithError(err).Error("index: getPosts")
		jsonError(c, "database error", http.StatusInternalServerError)
		return
	}

	rows := make([]indexPost, len(posts))
	for i, p := range posts {
		rows[i] = indexPost{JobPost: p, Views: f.ViewCount(p.Hashid, func() int64 {
			return s.viewCount(c, p.Hashid)
		})}
	}

	f.ShowCampaign(f.HeaderCampaign)

	page, err := s.pages.Clone()
	if err != nil {
		jsonError(c, "template error", http.StatusInternalServerError)
		return
	}
	page.Funcs(s.Filters.FuncMap(c.Request))

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "index.html", gin.H{
		"Flags": f,
		"Posts": rows,
	}); err != nil {
		logrus.WithError(err).Error("index: render")
		jsonError(c, "template error", http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// viewCount reads a post's view counter, kept in Redis by the detail page.
func (s *Server) viewCount(c *gin.Context, hashid string) int64 {
	if s.Redis == nil {
		return 0
	}
	n, err := s.Redis.Get(c.Request.Context(), "viewcounts:"+hashid).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logrus.WithError(err).WithField("hashid", hashid).Warn("view count read failed")
	}
	return n
}

// ─── API ─────────────────────────────────────────────────────────────────────

// listPosts handles GET /api/posts
func (s *Server) listPosts(c *gin.Context) {
	f := FlagsFrom(c)

	filter := store.PostFilter{
		ShowAll: queryBool(c, "showall"),
		Pinned:  queryBool(c, "pinned"),
	}
	if v := c.Query("type"); v != "" {
		filter.Scopes = append(filter.Scopes, store.ByType(v))
	}
	if v := c.Query("category"); v != "" {
		filter.Scopes = append(filter.Scopes, store.ByCategory(v))
	}
	if v := c.Query("tag"); v != "" {
		filter.Scopes = append(filter.Scopes, store.ByTag(v))
	}
	if v := c.Query("location"); v != "" {
		filter.Scopes = append(filter.Scopes, store.ByLocation(v))
	}
	if v := c.Query("domain"); v != "" {
		filter.Scopes = append(filter.Scopes, store.ByDomain(v))
	}
	if v := c.Query("status"); v != "" {
		for _, name := range strings.Split(v, ",") {
			st, err := model.ParsePostStatus(strings.ToUpper(strings.TrimSpace(name)))
			if err != nil {
				jsonError(c, err.Error(), http.StatusBadRequest)
				return
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}

	posts, err := s.Store.GetPosts(c.Request.Context(), f.Board, filter)
	if err != nil {
		logrus.WithError(err).Error("listPosts")
		jsonError(c, "database error", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// listAllPosts handles GET /api/posts/all
func (s *Server) listAllPosts(c *gin.Context) {
	opts := store.AllPostsOptions{
		OrderBy: c.Query("order_by"),
		Desc:    queryBool(c, "desc"),
	}
	paging := []struct {
		param string
		dst   **int
	}{{"start", &opts.Start}, {"limit", &opts.Limit}}
	for _, p := range paging {
		param, dst := p.param, p.dst
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			jsonError(c, param+" must be an integer", http.StatusBadRequest)
			return
		}
		*dst = &n
	}

	count, posts, err := s.Store.GetAllPosts(c.Request.Context(), opts)
	var ve *store.ValidationError
	if errors.As(err, &ve) {
		jsonError(c, ve.Msg, http.StatusBadRequest)
		return
	}
	if err != nil {
		logrus.WithError(err).Error("listAllPosts")
		jsonError(c, "database error", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "posts": posts})
}

// listTags handles GET /api/tags
func (s *Server) listTags(c *gin.Context) {
	alltime := queryBool(c, "alltime")
	tags, err := s.Tags.Tags(c.Request.Context(), FlagsFrom(c).Board, alltime)
	if err != nil {
		logrus.WithError(err).Error("listTags")
		jsonError(c, "database error", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// geodata handles GET /api/geo
func (s *Server) geodata(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		jsonError(c, "location is required", http.StatusBadRequest)
		return
	}
	data, err := s.Geo.LocationGeodata(c.Request.Context(), location)
	if err != nil {
		logrus.WithError(err).WithField("location", location).Warn("geodata lookup failed")
		jsonError(c, "geodata unavailable", http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, data)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// queryBool reports whether query parameter name is "1" or "true".
func queryBool(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "1" || v == "true"
}

func jsonError(c *gin.Context, msg string, code int) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}
