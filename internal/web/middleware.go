package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mahesh-singh/hasjob/internal/model"
	"github.com/mahesh-singh/hasjob/internal/session"
	"github.com/mahesh-singh/hasjob/internal/store"
)

const flagsKey = "hasjob.flags"

// Flags is the per-request state shared by middleware, handlers and
// templates.
type Flags struct {
	Board           *model.Board
	UserID          string
	Kiosk           bool
	PeopleflowURL   string
	ViewCounts      map[string]int64
	HeaderCampaign  *model.Campaign
	PreviewCampaign *model.Campaign
	CampaignViews   []*model.Campaign
}

// ShowCampaign records that c was rendered so that the view is counted
// once the response is done. Nil campaigns are ignored.
func (f *Flags) ShowCampaign(c *model.Campaign) {
	if c != nil {
		f.CampaignViews = append(f.CampaignViews, c)
	}
}

// ViewCount returns the view count for key, calling load at most once per
// request.
func (f *Flags) ViewCount(key string, load func() int64) int64 {
	if n, ok := f.ViewCounts[key]; ok {
		return n
	}
	n := load()
	f.ViewCounts[key] = n
	return n
}

// FlagsFrom returns the request's Flags, or nil outside the site routes.
func FlagsFrom(c *gin.Context) *Flags {
	if v, ok := c.Get(flagsKey); ok {
		return v.(*Flags)
	}
	return nil
}

func flags(c *gin.Context) *Flags {
	f := FlagsFrom(c)
	if f == nil {
		f = &Flags{ViewCounts: map[string]int64{}}
		c.Set(flagsKey, f)
	}
	return f
}

// ─── Middleware ──────────────────────────────────────────────────────────────

// RequestLogger logs one line per request through logrus.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"host":     c.Request.Host,
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("request")
			return
		}
		entry.Info("request")
	}
}

// boardName derives the board subdomain from host relative to serverName.
// The bare domain, "www." and unrelated hosts map to the default board.
func boardName(host, serverName string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	if serverName == "" || host == serverName {
		return model.DefaultBoardName
	}
	if sub, ok := strings.CutSuffix(host, "."+serverName); ok && sub != "" {
		return sub
	}
	return model.DefaultBoardName
}

// BoardResolver loads the board named by the request's subdomain. Unknown
// boards are a 404.
func (s *Server) BoardResolver() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := boardName(c.Request.Host, s.ServerName)
		board, err := s.Store.BoardByName(c.Request.Context(), name)
		if errors.Is(err, store.ErrNotFound) {
			jsonError(c, "no such board", http.StatusNotFound)
			return
		}
		if err != nil {
			logrus.WithError(err).WithField("board", name).Error("board lookup failed")
			jsonError(c, "database error", http.StatusInternalServerError)
			return
		}
		flags(c).Board = board
		c.Next()
	}
}

// RequestFlags sets up the request's Flags from the session and picks the
// header campaign. Lookup failures are logged and leave the campaign unset.
func (s *Server) RequestFlags() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		f := flags(c)

		var sess session.Session
		if id, err := c.Cookie(session.CookieName); err == nil && s.Sessions != nil {
			sess, err = s.Sessions.Load(ctx, id)
			if err != nil {
				logrus.WithError(err).Warn("session load failed")
			}
		}
		f.Kiosk = sess.Kiosk
		f.PeopleflowURL = sess.Peopleflow
		f.UserID = sess.UserID
		f.ViewCounts = map[string]int64{}
		f.CampaignViews = nil

		if name, ok := c.GetQuery("preview"); ok {
			preview, err := s.Store.CampaignByName(ctx, name)
			switch {
			case err == nil:
				f.PreviewCampaign = preview
			case !errors.Is(err, store.ErrNotFound):
				logrus.WithError(err).WithField("campaign", name).Warn("preview campaign lookup failed")
			}
		}

		if !f.Kiosk {
			header, err := s.Store.CampaignForContext(ctx, model.PositionHeader, f.Board)
			if err != nil {
				logrus.WithError(err).Warn("header campaign lookup failed")
			}
			if f.PreviewCampaign != nil && f.PreviewCampaign.Position == model.PositionHeader {
				header = f.PreviewCampaign
			}
			f.HeaderCampaign = header
		}

		c.Next()
	}
}

// RecordCampaignViews records, after the handler has run, that the signed
// in user saw each campaign the handler rendered. Errors never affect the
// response.
func (s *Server) RecordCampaignViews() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		f := FlagsFrom(c)
		if f == nil || f.UserID == "" {
			return
		}
		ctx := c.Request.Context()
		for _, campaign := range f.CampaignViews {
			s.recordView(ctx, campaign, f.UserID)
		}
	}
}

func (s *Server) recordView(ctx context.Context, campaign *model.Campaign, userID string) {
	log := logrus.WithFields(logrus.Fields{"campaign": campaign.Name, "user": userID})

	seen, err := s.Store.CampaignViewExists(ctx, campaign.ID, userID)
	if err != nil {
		log.WithError(err).Warn("campaign view lookup failed")
		return
	}
	if seen {
		return
	}

	added, err := s.Store.AddCampaignView(ctx, campaign.ID, userID)
	if err != nil {
		log.WithError(err).Warn("campaign view insert failed")
		return
	}
	if !added || s.Redis == nil {
		return
	}

	event, _ := json.Marshal(map[string]any{
		"type":       "EVENT_CAMPAIGN_VIEWED",
		"campaignId": campaign.ID,
		"userId":     userID,
	})
	if err := s.Redis.Publish(ctx, "EVENT_CAMPAIGN_VIEWED", event).Err(); err != nil {
		log.WithError(err).Warn("publish EVENT_CAMPAIGN_VIEWED failed")
	}
}
