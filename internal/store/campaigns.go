package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mahesh-singh/hasjob/internal/model"
)

const campaignColumns = `c.id, c.name, c.title, c.position, c.priority, c.public, c.start_at, c.end_at, c.html`

func scanCampaign(row pgx.Row) (*model.Campaign, error) {
	var c model.Campaign
	var position int32
	if err := row.Scan(
		&c.ID, &c.Name, &c.Title, &position, &c.Priority, &c.Public,
		&c.StartAt, &c.EndAt, &c.HTML,
	); err != nil {
		return nil, err
	}
	c.Position = model.CampaignPosition(position)
	return &c, nil
}

// CampaignByName returns the named campaign whether or not it is live, so
// that unpublished campaigns can be previewed.
func (s *Store) CampaignByName(ctx context.Context, name string) (*model.Campaign, error) {
	c, err := scanCampaign(s.db.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaign c WHERE c.name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("campaignByName: %w", err)
	}
	return c, nil
}

// campaignForContextSQL picks the highest priority live public campaign at
// position. Campaigns attached to no board run everywhere.
const campaignForContextSQL = `
	SELECT ` + campaignColumns + `
	FROM campaign c
	WHERE c.public
	  AND c.position = $1
	  AND c.start_at <= $2 AND c.end_at > $2
	  AND (
	    NOT EXISTS (SELECT 1 FROM campaign_board cb WHERE cb.campaign_id = c.id)
	    OR EXISTS (SELECT 1 FROM campaign_board cb WHERE cb.campaign_id = c.id AND cb.board_id = $3)
	  )
	ORDER BY c.priority DESC, c.start_at DESC
	LIMIT 1`

// CampaignForContext returns the campaign to show at position on board, or
// nil when none is running. A nil board only matches board-less campaigns.
func (s *Store) CampaignForContext(ctx context.Context, position model.CampaignPosition, board *model.Board) (*model.Campaign, error) {
	var boardID *int64
	if board != nil {
		boardID = &board.ID
	}
	c, err := scanCampaign(s.db.QueryRow(ctx, campaignForContextSQL, int32(position), s.now(), boardID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("campaignForContext: %w", err)
	}
	return c, nil
}

// CampaignViewExists reports whether userID has already seen the campaign.
func (s *Store) CampaignViewExists(ctx context.Context, campaignID int64, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM campaign_view WHERE campaign_id = $1 AND user_id = $2)`,
		campaignID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("campaignViewExists: %w", err)
	}
	return exists, nil
}

// AddCampaignView records that userID saw the campaign. It reports false
// without error when a parallel request recorded the view first.
func (s *Store) AddCampaignView(ctx context.Context, campaignID int64, userID string) (bool, error) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO campaign_view (campaign_id, user_id, datetime) VALUES ($1, $2, $3)`,
		campaignID, userID, s.now(),
	)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("addCampaignView: %w", err)
	}
	return true, nil
}

// ─── Boards ──────────────────────────────────────────────────────────────────

// BoardByName returns the board with the given subdomain name.
func (s *Store) BoardByName(ctx context.Context, name string) (*model.Board, error) {
	var b model.Board
	err := s.db.QueryRow(ctx,
		`SELECT id, name, title FROM board WHERE name = $1`, name,
	).Scan(&b.ID, &b.Name, &b.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("boardByName: %w", err)
	}
	return &b, nil
}

// Boards returns every board ordered by name.
func (s *Store) Boards(ctx context.Context) ([]model.Board, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, title FROM board ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("boards query: %w", err)
	}
	defer rows.Close()

	boards := make([]model.Board, 0)
	for rows.Next() {
		var b model.Board
		if err := rows.Scan(&b.ID, &b.Name, &b.Title); err != nil {
			return nil, fmt.Errorf("boards scan: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}
