package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mahesh-singh/hasjob/internal/model"
)

// listingColumns are the columns loaded for listings. Heavy columns such as
// the description are deferred to the detail page.
var listingColumns = []string{
	"jobpost.id", "jobpost.hashid", "jobpost.datetime", "jobpost.headline",
	"jobtype.id", "jobtype.name", "jobtype.title",
	"jobcategory.id", "jobcategory.name", "jobcategory.title",
	"jobpost.location", "jobpost.company_name", "jobpost.company_url",
	"jobpost.email_domain", "jobpost.pinned", "jobpost.status",
}

const boardJoin = "JOIN board_jobpost ON board_jobpost.jobpost_id = jobpost.id"

// basePostQuery selects listing columns for every post.
func basePostQuery() *Query {
	return Select("jobpost", listingColumns...).
		Join("JOIN jobtype ON jobtype.id = jobpost.type_id").
		Join("JOIN jobcategory ON jobcategory.id = jobpost.category_id")
}

func statusArgs(statuses []model.PostStatus) []int32 {
	out := make([]int32, len(statuses))
	for i, s := range statuses {
		out[i] = int32(s)
	}
	return out
}

// ─── Scopes ──────────────────────────────────────────────────────────────────

// ByType restricts posts to a job type name.
func ByType(name string) Scope {
	return func(q *Query) { q.Where("jobtype.name = ?", name) }
}

// ByCategory restricts posts to a job category name.
func ByCategory(name string) Scope {
	return func(q *Query) { q.Where("jobcategory.name = ?", name) }
}

// ByTag restricts posts to those carrying the tag name.
func ByTag(name string) Scope {
	return func(q *Query) {
		q.Join("JOIN jobpost_tag ON jobpost_tag.jobpost_id = jobpost.id").
			Join("JOIN tag ON tag.id = jobpost_tag.tag_id").
			Where("tag.name = ?", name)
	}
}

// ByDomain restricts posts to an employer's email domain.
func ByDomain(domain string) Scope {
	return func(q *Query) { q.Where("jobpost.email_domain = ?", strings.ToLower(domain)) }
}

// ByLocation restricts posts to locations containing name, ignoring case.
func ByLocation(name string) Scope {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return func(q *Query) { q.Where("jobpost.location ILIKE ?", "%"+r.Replace(name)+"%") }
}

// ─── Listings ────────────────────────────────────────────────────────────────

// PostFilter controls GetPosts.
type PostFilter struct {
	Scopes   []Scope
	Pinned   bool               // order pinned posts first
	ShowAll  bool               // include every post within AgeLimit, not just new ones
	Statuses []model.PostStatus // defaults to model.Listed
}

// postsQuery builds the listing query for board (nil for no board).
func postsQuery(board *model.Board, f PostFilter, now time.Time) *Query {
	statuses := f.Statuses
	if len(statuses) == 0 {
		statuses = model.Listed
	}

	q := basePostQuery().Apply(f.Scopes...).
		Where("jobpost.status = ANY(?)", statusArgs(statuses))

	if f.ShowAll {
		q.Where("jobpost.datetime > ?", now.Add(-model.AgeLimit))
	} else {
		q.Where("(jobpost.pinned AND jobpost.datetime > ?) OR (NOT jobpost.pinned AND jobpost.datetime > ?)",
			now.Add(-model.AgeLimit), now.Add(-model.NewLimit))
	}

	if board != nil && !board.IsDefault() {
		q.Join(boardJoin).Where("board_jobpost.board_id = ?", board.ID)
	}

	if f.Pinned {
		if q.HasJoin("board_jobpost") {
			q.OrderBy("board_jobpost.pinned DESC")
		} else {
			q.OrderBy("jobpost.pinned DESC")
		}
	}

	return q.OrderBy("jobpost.datetime DESC")
}

// GetPosts returns the posts listed on board, newest first.
func (s *Store) GetPosts(ctx context.Context, board *model.Board, f PostFilter) ([]model.JobPost, error) {
	sql, args := postsQuery(board, f, s.now()).SQL()
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("getPosts query: %w", err)
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("getPosts: %w", err)
	}
	return posts, nil
}

// AllPostsOptions controls GetAllPosts. Nil Start/Limit leave the result unpaged.
type AllPostsOptions struct {
	OrderBy string // one of SortableColumns; default "datetime"
	Desc    bool
	Start   *int
	Limit   *int
}

// SortableColumns maps accepted OrderBy values to SQL columns.
var SortableColumns = map[string]string{
	"datetime":     "jobpost.datetime",
	"headline":     "jobpost.headline",
	"company_name": "jobpost.company_name",
	"location":     "jobpost.location",
}

func allPostsQuery(opts AllPostsOptions) (*Query, error) {
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "datetime"
	}
	col, ok := SortableColumns[orderBy]
	if !ok {
		return nil, &ValidationError{Msg: fmt.Sprintf("cannot order by %q", orderBy)}
	}
	if opts.Start != nil && *opts.Start < 0 {
		return nil, &ValidationError{Msg: "start must not be negative"}
	}
	if opts.Limit != nil && *opts.Limit < 0 {
		return nil, &ValidationError{Msg: "limit must not be negative"}
	}

	q := basePostQuery().Where("jobpost.status = ANY(?)", statusArgs(model.Listed))
	if opts.Desc {
		q.OrderBy(col + " DESC")
	} else {
		q.OrderBy(col)
	}
	if opts.Start != nil {
		q.Offset(*opts.Start)
	}
	if opts.Limit != nil {
		q.Limit(*opts.Limit)
	}
	return q, nil
}

// GetAllPosts returns the total number of listed posts, regardless of age,
// and the requested page of them.
func (s *Store) GetAllPosts(ctx context.Context, opts AllPostsOptions) (int, []model.JobPost, error) {
	q, err := allPostsQuery(opts)
	if err != nil {
		return 0, nil, err
	}

	countSQL, countArgs := q.CountSQL()
	var count int
	if err := s.db.QueryRow(ctx, countSQL, countArgs...).Scan(&count); err != nil {
		return 0, nil, fmt.Errorf("getAllPosts count: %w", err)
	}

	sql, args := q.SQL()
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("getAllPosts query: %w", err)
	}
	posts, err := scanPosts(rows)
	if err != nil {
		return 0, nil, fmt.Errorf("getAllPosts: %w", err)
	}
	return count, posts, nil
}

func scanPosts(rows pgx.Rows) ([]model.JobPost, error) {
	defer rows.Close()
	posts := make([]model.JobPost, 0)
	for rows.Next() {
		var p model.JobPost
		var status int32
		if err := rows.Scan(
			&p.ID, &p.Hashid, &p.Datetime, &p.Headline,
			&p.Type.ID, &p.Type.Name, &p.Type.Title,
			&p.Category.ID, &p.Category.Name, &p.Category.Title,
			&p.Location, &p.CompanyName, &p.CompanyURL,
			&p.EmailDomain, &p.Pinned, &status,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p.Status = model.PostStatus(status)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ─── Tags ────────────────────────────────────────────────────────────────────

func tagsQuery(board *model.Board, alltime bool, now time.Time) *Query {
	q := Select("tag", "tag.name", "tag.title", "tag.public", "count(tag.id) AS count").
		Join("JOIN jobpost_tag ON jobpost_tag.tag_id = tag.id").
		Join("JOIN jobpost ON jobpost.id = jobpost_tag.jobpost_id").
		Where("jobpost.status = ANY(?)", statusArgs(model.Listed)).
		Where("tag.public")
	if !alltime {
		q.Where("jobpost.datetime > ?", now.Add(-model.AgeLimit))
	}
	if board != nil {
		q.Join(boardJoin).Where("board_jobpost.board_id = ?", board.ID)
	}
	return q.GroupBy("tag.id").OrderBy("count DESC", "tag.name")
}

// GetTags returns public tags with their listed post counts, most used first.
// Unless alltime is set, only posts within AgeLimit are counted.
func (s *Store) GetTags(ctx context.Context, board *model.Board, alltime bool) ([]model.TagCount, error) {
	sql, args := tagsQuery(board, alltime, s.now()).SQL()
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("getTags query: %w", err)
	}
	defer rows.Close()

	tags := make([]model.TagCount, 0)
	for rows.Next() {
		var t model.TagCount
		if err := rows.Scan(&t.Name, &t.Title, &t.Public, &t.Count); err != nil {
			return nil, fmt.Errorf("getTags scan: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
