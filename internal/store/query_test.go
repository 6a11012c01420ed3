package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahesh-singh/hasjob/internal/model"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// ── Query ──────────────────────────────────────────────────────────────────

func TestQuery_RenumbersPlaceholders(t *testing.T) {
	sql, args := Select("t", "a", "b").
		Where("a = ?", 1).
		Where("b > ? OR b < ?", 2, 3).
		OrderBy("a DESC").
		Offset(10).
		Limit(5).
		SQL()

	assert.Equal(t, "SELECT a, b FROM t WHERE (a = $1) AND (b > $2 OR b < $3) ORDER BY a DESC OFFSET 10 LIMIT 5", sql)
	assert.Equal(t, []any{1, 2, 3}, args)
}

func TestQuery_JoinDeduplicated(t *testing.T) {
	q := Select("t", "*").Join("JOIN u ON u.id = t.u_id").Join("JOIN u ON u.id = t.u_id")
	sql, _ := q.SQL()
	assert.Equal(t, 1, strings.Count(sql, "JOIN u "))
	assert.True(t, q.HasJoin("u"))
	assert.False(t, q.HasJoin("v"))
}

func TestQuery_CountIgnoresOrderAndPaging(t *testing.T) {
	sql, args := Select("t", "a").Where("a = ?", "x").OrderBy("a").Limit(3).CountSQL()
	assert.Equal(t, "SELECT count(*) FROM t WHERE (a = $1)", sql)
	assert.Equal(t, []any{"x"}, args)
}

func TestQuery_WherePanicsOnArgMismatch(t *testing.T) {
	assert.Panics(t, func() { Select("t", "a").Where("a = ?") })
}

func TestQuery_ApplySkipsNilScopes(t *testing.T) {
	sql, args := Select("t", "a").Apply(nil, func(q *Query) { q.Where("a = ?", 7) }).SQL()
	assert.Equal(t, "SELECT a FROM t WHERE (a = $1)", sql)
	assert.Equal(t, []any{7}, args)
}

// ── postsQuery ─────────────────────────────────────────────────────────────

func TestPostsQuery_DefaultsToListedAndNewLimit(t *testing.T) {
	sql, args := postsQuery(nil, PostFilter{}, fixedNow).SQL()

	assert.Contains(t, sql, "(jobpost.status = ANY($1))")
	assert.Contains(t, sql, "((jobpost.pinned AND jobpost.datetime > $2) OR (NOT jobpost.pinned AND jobpost.datetime > $3))")
	assert.NotContains(t, sql, "board_jobpost")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY jobpost.datetime DESC"))

	require.Len(t, args, 3)
	assert.Equal(t, []int32{2, 3, 9, 10}, args[0])
	assert.Equal(t, fixedNow.Add(-model.AgeLimit), args[1])
	assert.Equal(t, fixedNow.Add(-model.NewLimit), args[2])
}

func TestPostsQuery_DefersHeavyColumns(t *testing.T) {
	sql, _ := postsQuery(nil, PostFilter{}, fixedNow).SQL()
	assert.NotContains(t, sql, "description")
}

func TestPostsQuery_ShowAll(t *testing.T) {
	sql, args := postsQuery(nil, PostFilter{ShowAll: true}, fixedNow).SQL()
	assert.Contains(t, sql, "(jobpost.datetime > $2)")
	assert.NotContains(t, sql, "NOT jobpost.pinned")
	assert.Equal(t, fixedNow.Add(-model.AgeLimit), args[1])
}

func TestPostsQuery_CustomStatuses(t *testing.T) {
	_, args := postsQuery(nil, PostFilter{Statuses: []model.PostStatus{model.StatusPending}}, fixedNow).SQL()
	assert.Equal(t, []int32{1}, args[0])
}

func TestPostsQuery_DefaultBoardIsNotJoined(t *testing.T) {
	www := &model.Board{ID: 1, Name: model.DefaultBoardName}
	sql, _ := postsQuery(www, PostFilter{Pinned: true}, fixedNow).SQL()
	assert.NotContains(t, sql, "board_jobpost")
	assert.Contains(t, sql, "ORDER BY jobpost.pinned DESC, jobpost.datetime DESC")
}

func TestPostsQuery_SubBoard(t *testing.T) {
	design := &model.Board{ID: 4, Name: "design"}
	sql, args := postsQuery(design, PostFilter{Pinned: true}, fixedNow).SQL()

	assert.Contains(t, sql, boardJoin)
	assert.Contains(t, sql, "(board_jobpost.board_id = $4)")
	assert.Contains(t, sql, "ORDER BY board_jobpost.pinned DESC, jobpost.datetime DESC")
	assert.Equal(t, int64(4), args[3])
}

func TestPostsQuery_SubBoardUnpinned(t *testing.T) {
	design := &model.Board{ID: 4, Name: "design"}
	sql, _ := postsQuery(design, PostFilter{}, fixedNow).SQL()
	assert.NotContains(t, sql, "pinned DESC")
}

func TestPostsQuery_ScopesComeFirst(t *testing.T) {
	f := PostFilter{Scopes: []Scope{ByType("fulltime"), ByTag("golang")}}
	sql, args := postsQuery(nil, f, fixedNow).SQL()

	assert.Contains(t, sql, "(jobtype.name = $1)")
	assert.Contains(t, sql, "JOIN jobpost_tag ON jobpost_tag.jobpost_id = jobpost.id")
	assert.Contains(t, sql, "(tag.name = $2)")
	assert.Contains(t, sql, "(jobpost.status = ANY($3))")
	assert.Equal(t, "fulltime", args[0])
	assert.Equal(t, "golang", args[1])
}

func TestScopes(t *testing.T) {
	cases := []struct {
		scope Scope
		cond  string
		arg   any
	}{
		{ByCategory("programming"), "(jobcategory.name = $1)", "programming"},
		{ByDomain("HasGeek.com"), "(jobpost.email_domain = $1)", "hasgeek.com"},
		{ByLocation("Bangalore"), "(jobpost.location ILIKE $1)", "%Bangalore%"},
		{ByLocation("50%_off"), "(jobpost.location ILIKE $1)", `%50\%\_off%`},
	}
	for _, c := range cases {
		sql, args := Select("jobpost", "id").Apply(c.scope).SQL()
		assert.Contains(t, sql, c.cond)
		assert.Equal(t, []any{c.arg}, args)
	}
}

// ── allPostsQuery ──────────────────────────────────────────────────────────

func TestAllPostsQuery_Defaults(t *testing.T) {
	q, err := allPostsQuery(AllPostsOptions{})
	require.NoError(t, err)
	sql, args := q.SQL()
	assert.True(t, strings.HasSuffix(sql, "ORDER BY jobpost.datetime"))
	assert.NotContains(t, sql, "OFFSET")
	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "jobpost.datetime >")
	assert.Equal(t, []any{[]int32{2, 3, 9, 10}}, args)
}

func TestAllPostsQuery_OrderAndPaging(t *testing.T) {
	start, limit := 20, 10
	q, err := allPostsQuery(AllPostsOptions{OrderBy: "headline", Desc: true, Start: &start, Limit: &limit})
	require.NoError(t, err)
	sql, _ := q.SQL()
	assert.True(t, strings.HasSuffix(sql, "ORDER BY jobpost.headline DESC OFFSET 20 LIMIT 10"))

	count, _ := q.CountSQL()
	assert.NotContains(t, count, "ORDER BY")
	assert.NotContains(t, count, "LIMIT")
}

func TestAllPostsQuery_Invalid(t *testing.T) {
	neg := -1
	for _, opts := range []AllPostsOptions{
		{OrderBy: "description; DROP TABLE jobpost"},
		{Start: &neg},
		{Limit: &neg},
	} {
		_, err := allPostsQuery(opts)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	}
}

// ── tagsQuery ──────────────────────────────────────────────────────────────

func TestTagsQuery_Recent(t *testing.T) {
	sql, args := tagsQuery(nil, false, fixedNow).SQL()
	assert.Contains(t, sql, "count(tag.id) AS count")
	assert.Contains(t, sql, "(tag.public)")
	assert.Contains(t, sql, "(jobpost.datetime > $2)")
	assert.Contains(t, sql, "GROUP BY tag.id ORDER BY count DESC, tag.name")
	assert.NotContains(t, sql, "board_jobpost")
	assert.Equal(t, fixedNow.Add(-model.AgeLimit), args[1])
}

func TestTagsQuery_AlltimeOnBoard(t *testing.T) {
	www := &model.Board{ID: 1, Name: model.DefaultBoardName}
	sql, args := tagsQuery(www, true, fixedNow).SQL()
	assert.NotContains(t, sql, "jobpost.datetime >")
	assert.Contains(t, sql, "(board_jobpost.board_id = $2)")
	assert.Equal(t, int64(1), args[1])
}
