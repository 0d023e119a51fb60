package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresTrackerRepository persists trackers and their channels.
type PostgresTrackerRepository struct {
	db *sql.DB
}

var _ ports.TrackerRepository = (*PostgresTrackerRepository)(nil)

// NewPostgresTrackerRepository wires a sql.DB implementation.
func NewPostgresTrackerRepository(db *sql.DB) *PostgresTrackerRepository {
	return &PostgresTrackerRepository{db: db}
}

// Create inserts the tracker row and its channel rows in one transaction.
func (r *PostgresTrackerRepository) Create(ctx context.Context, tracker *domain.MonitoringTracker) error {
	if tracker.ID == "" {
		tracker.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := psql.Insert("monitoring_trackers").
		Columns("id", "organization_id", "campaign_id", "project_id", "is_active",
			"start_date", "end_date", "keywords", "created_at", "updated_at").
		Values(tracker.ID, tracker.OrganizationID, tracker.CampaignID, tracker.ProjectID,
			tracker.IsActive, tracker.StartDate, tracker.EndDate,
			pq.StringArray(tracker.Keywords), tracker.CreatedAt, tracker.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build tracker insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert tracker: %w", err)
	}

	for _, channel := range tracker.Channels {
		query, args, err := psql.Insert("monitoring_channels").
			Columns("id", "tracker_id", "type", "url", "publication_id",
				"publication_name", "organization_id", "last_success").
			Values(channel.ID, tracker.ID, channel.Type, channel.URL, channel.PublicationID,
				channel.PublicationName, channel.OrganizationID, channel.LastSuccess).
			ToSql()
		if err != nil {
			return fmt.Errorf("build channel insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert channel %s: %w", channel.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tracker: %w", err)
	}
	return nil
}

func (r *PostgresTrackerRepository) selectTrackers(ctx context.Context, pred any, args ...any) ([]domain.MonitoringTracker, error) {
	query, sqlArgs, err := psql.Select("id", "organization_id", "campaign_id", "project_id",
		"is_active", "start_date", "end_date", "keywords",
		"total_articles_found", "total_auto_confirmed", "total_manually_added",
		"created_at", "updated_at").
		From("monitoring_trackers").
		Where(pred, args...).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tracker select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, sqlArgs...)
	if err != nil {
		return nil, fmt.Errorf("query trackers: %w", err)
	}
	defer rows.Close()

	var trackers []domain.MonitoringTracker
	for rows.Next() {
		var t domain.MonitoringTracker
		var keywords pq.StringArray
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.CampaignID, &t.ProjectID,
			&t.IsActive, &t.StartDate, &t.EndDate, &keywords,
			&t.TotalArticlesFound, &t.TotalAutoConfirmed, &t.TotalManuallyAdded,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tracker: %w", err)
		}
		t.Keywords = keywords
		trackers = append(trackers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	for i := range trackers {
		channels, err := r.selectChannels(ctx, trackers[i].ID)
		if err != nil {
			return nil, err
		}
		trackers[i].Channels = channels
	}
	return trackers, nil
}

func (r *PostgresTrackerRepository) selectChannels(ctx context.Context, trackerID string) ([]domain.MonitoringChannel, error) {
	query, args, err := psql.Select("id", "type", "url", "publication_id",
		"publication_name", "organization_id", "last_success").
		From("monitoring_channels").
		Where(sq.Eq{"tracker_id": trackerID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build channel select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var channels []domain.MonitoringChannel
	for rows.Next() {
		var c domain.MonitoringChannel
		if err := rows.Scan(&c.ID, &c.Type, &c.URL, &c.PublicationID,
			&c.PublicationName, &c.OrganizationID, &c.LastSuccess); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return channels, nil
}

// GetByID returns one tracker with its channels.
func (r *PostgresTrackerRepository) GetByID(ctx context.Context, id string) (*domain.MonitoringTracker, error) {
	trackers, err := r.selectTrackers(ctx, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(trackers) == 0 {
		return nil, fmt.Errorf("tracker %s: %w", id, domain.ErrNotFound)
	}
	return &trackers[0], nil
}

// GetByCampaignID returns the tracker bound to a campaign.
func (r *PostgresTrackerRepository) GetByCampaignID(ctx context.Context, campaignID string) (*domain.MonitoringTracker, error) {
	trackers, err := r.selectTrackers(ctx, sq.Eq{"campaign_id": campaignID})
	if err != nil {
		return nil, err
	}
	if len(trackers) == 0 {
		return nil, fmt.Errorf("tracker for campaign %s: %w", campaignID, domain.ErrNotFound)
	}
	return &trackers[0], nil
}

// ListActive returns enabled trackers whose window has not expired.
func (r *PostgresTrackerRepository) ListActive(ctx context.Context, now time.Time) ([]domain.MonitoringTracker, error) {
	return r.selectTrackers(ctx, sq.And{
		sq.Eq{"is_active": true},
		sq.GtOrEq{"end_date": now},
	})
}

// List returns all trackers for one organization.
func (r *PostgresTrackerRepository) List(ctx context.Context, organizationID string) ([]domain.MonitoringTracker, error) {
	return r.selectTrackers(ctx, sq.Eq{"organization_id": organizationID})
}

// ListAll returns every tracker regardless of organization. A nil
// predicate is ignored by the builder, so no WHERE clause is emitted.
func (r *PostgresTrackerRepository) ListAll(ctx context.Context) ([]domain.MonitoringTracker, error) {
	return r.selectTrackers(ctx, nil)
}

// Update rewrites the mutable tracker fields; counters are untouched and
// only move through IncrementCounters.
func (r *PostgresTrackerRepository) Update(ctx context.Context, tracker *domain.MonitoringTracker) error {
	query, args, err := psql.Update("monitoring_trackers").
		Set("is_active", tracker.IsActive).
		Set("start_date", tracker.StartDate).
		Set("end_date", tracker.EndDate).
		Set("keywords", pq.StringArray(tracker.Keywords)).
		Set("updated_at", tracker.UpdatedAt).
		Where(sq.Eq{"id": tracker.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build tracker update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update tracker: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tracker %s: %w", tracker.ID, domain.ErrNotFound)
	}
	return nil
}

// IncrementCounters applies deltas in a single statement so concurrent
// confirmations never lose updates.
func (r *PostgresTrackerRepository) IncrementCounters(ctx context.Context, trackerID string, deltas ports.CounterDeltas) error {
	query := `UPDATE monitoring_trackers
              SET total_articles_found = total_articles_found + $1,
                  total_auto_confirmed = total_auto_confirmed + $2,
                  total_manually_added = total_manually_added + $3,
                  updated_at = NOW()
              WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		deltas.ArticlesFound, deltas.AutoConfirmed, deltas.ManuallyAdded, trackerID)
	if err != nil {
		return fmt.Errorf("increment counters: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tracker %s: %w", trackerID, domain.ErrNotFound)
	}
	return nil
}

// TouchChannel records a successful fetch timestamp on one channel.
func (r *PostgresTrackerRepository) TouchChannel(ctx context.Context, trackerID, channelID string, at time.Time) error {
	query, args, err := psql.Update("monitoring_channels").
		Set("last_success", at).
		Where(sq.Eq{"id": channelID, "tracker_id": trackerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build channel touch: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("touch channel: %w", err)
	}
	return nil
}

// PostgresSuggestionRepository persists candidate articles.
type PostgresSuggestionRepository struct {
	db *sql.DB
}

var _ ports.SuggestionRepository = (*PostgresSuggestionRepository)(nil)

// NewPostgresSuggestionRepository wires a sql.DB implementation.
func NewPostgresSuggestionRepository(db *sql.DB) *PostgresSuggestionRepository {
	return &PostgresSuggestionRepository{db: db}
}

var suggestionColumns = []string{"id", "organization_id", "campaign_id", "tracker_id",
	"channel_id", "status", "url", "normalized_url", "title", "excerpt",
	"publication_name", "confidence_score", "sentiment", "matched_keyword",
	"clipping_id", "published_at", "created_at", "updated_at"}

func scanSuggestion(scanner interface{ Scan(...any) error }) (domain.MonitoringSuggestion, error) {
	var s domain.MonitoringSuggestion
	var clippingID sql.NullString
	var publishedAt sql.NullTime
	err := scanner.Scan(&s.ID, &s.OrganizationID, &s.CampaignID, &s.TrackerID,
		&s.ChannelID, &s.Status, &s.URL, &s.NormalizedURL, &s.Title, &s.Excerpt,
		&s.PublicationName, &s.ConfidenceScore, &s.Sentiment, &s.MatchedKeyword,
		&clippingID, &publishedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.ClippingID = clippingID.String
	if publishedAt.Valid {
		s.PublishedAt = publishedAt.Time
	}
	return s, nil
}

// Create inserts the suggestion; a duplicate (tracker, normalized URL)
// pair inserts nothing and reports false.
func (r *PostgresSuggestionRepository) Create(ctx context.Context, suggestion *domain.MonitoringSuggestion) (bool, error) {
	if suggestion.ID == "" {
		suggestion.ID = uuid.NewString()
	}

	var clippingID any
	if suggestion.ClippingID != "" {
		clippingID = suggestion.ClippingID
	}
	var publishedAt any
	if !suggestion.PublishedAt.IsZero() {
		publishedAt = suggestion.PublishedAt
	}

	query, args, err := psql.Insert("monitoring_suggestions").
		Columns(suggestionColumns...).
		Values(suggestion.ID, suggestion.OrganizationID, suggestion.CampaignID,
			suggestion.TrackerID, suggestion.ChannelID, suggestion.Status,
			suggestion.URL, suggestion.NormalizedURL, suggestion.Title,
			suggestion.Excerpt, suggestion.PublicationName, suggestion.ConfidenceScore,
			suggestion.Sentiment, suggestion.MatchedKeyword, clippingID,
			publishedAt, suggestion.CreatedAt, suggestion.UpdatedAt).
		Suffix("ON CONFLICT (tracker_id, normalized_url) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build suggestion insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert suggestion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetByID returns one suggestion.
func (r *PostgresSuggestionRepository) GetByID(ctx context.Context, id string) (*domain.MonitoringSuggestion, error) {
	query, args, err := psql.Select(suggestionColumns...).
		From("monitoring_suggestions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build suggestion select: %w", err)
	}

	suggestion, err := scanSuggestion(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("suggestion %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan suggestion: %w", err)
	}
	return &suggestion, nil
}

// ExistsByURL reports whether a tracker already saw a normalized URL.
func (r *PostgresSuggestionRepository) ExistsByURL(ctx context.Context, trackerID, normalizedURL string) (bool, error) {
	query, args, err := psql.Select("1").
		From("monitoring_suggestions").
		Where(sq.Eq{"tracker_id": trackerID, "normalized_url": normalizedURL}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build existence check: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return true, nil
}

// Transition is a compare-and-set on the status column; a mismatch on the
// expected current status surfaces as InvalidStateError.
func (r *PostgresSuggestionRepository) Transition(ctx context.Context, id string, from, to domain.SuggestionStatus) error {
	query, args, err := psql.Update("monitoring_suggestions").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build transition: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transition suggestion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return domain.NewInvalidStateError("suggestion %s is %s, expected %s", id, current.Status, from)
}

// SetClippingID links a suggestion to the clipping it produced.
func (r *PostgresSuggestionRepository) SetClippingID(ctx context.Context, id, clippingID string) error {
	query, args, err := psql.Update("monitoring_suggestions").
		Set("clipping_id", clippingID).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clipping link: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("link clipping: %w", err)
	}
	return nil
}

// List filters suggestions; zero-value filter fields match all.
func (r *PostgresSuggestionRepository) List(ctx context.Context, filter ports.SuggestionFilter) ([]domain.MonitoringSuggestion, error) {
	builder := psql.Select(suggestionColumns...).
		From("monitoring_suggestions").
		OrderBy("created_at")

	if filter.OrganizationID != "" {
		builder = builder.Where(sq.Eq{"organization_id": filter.OrganizationID})
	}
	if filter.TrackerID != "" {
		builder = builder.Where(sq.Eq{"tracker_id": filter.TrackerID})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if !filter.CreatedAfter.IsZero() {
		builder = builder.Where(sq.GtOrEq{"created_at": filter.CreatedAfter})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build suggestion list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []domain.MonitoringSuggestion
	for rows.Next() {
		suggestion, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, suggestion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return suggestions, nil
}

// PostgresClippingRepository persists confirmed media coverage.
type PostgresClippingRepository struct {
	db *sql.DB
}

var _ ports.ClippingRepository = (*PostgresClippingRepository)(nil)

// NewPostgresClippingRepository wires a sql.DB implementation.
func NewPostgresClippingRepository(db *sql.DB) *PostgresClippingRepository {
	return &PostgresClippingRepository{db: db}
}

var clippingColumns = []string{"id", "organization_id", "campaign_id", "project_id",
	"suggestion_id", "title", "url", "excerpt", "outlet_name", "outlet_type",
	"reach", "ave", "sentiment", "published_at", "detected_by", "created_at", "updated_at"}

func scanClipping(scanner interface{ Scan(...any) error }) (domain.MediaClipping, error) {
	var c domain.MediaClipping
	var ave sql.NullFloat64
	var publishedAt sql.NullTime
	err := scanner.Scan(&c.ID, &c.OrganizationID, &c.CampaignID, &c.ProjectID,
		&c.SuggestionID, &c.Title, &c.URL, &c.Excerpt, &c.OutletName, &c.OutletType,
		&c.Reach, &ave, &c.Sentiment, &publishedAt, &c.DetectedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if ave.Valid {
		value := ave.Float64
		c.AVE = &value
	}
	if publishedAt.Valid {
		c.PublishedAt = publishedAt.Time
	}
	return c, nil
}

// Create inserts a clipping.
func (r *PostgresClippingRepository) Create(ctx context.Context, clipping *domain.MediaClipping) error {
	if clipping.ID == "" {
		clipping.ID = uuid.NewString()
	}

	var publishedAt any
	if !clipping.PublishedAt.IsZero() {
		publishedAt = clipping.PublishedAt
	}

	query, args, err := psql.Insert("media_clippings").
		Columns(clippingColumns...).
		Values(clipping.ID, clipping.OrganizationID, clipping.CampaignID, clipping.ProjectID,
			clipping.SuggestionID, clipping.Title, clipping.URL, clipping.Excerpt,
			clipping.OutletName, clipping.OutletType, clipping.Reach, clipping.AVE,
			clipping.Sentiment, publishedAt, clipping.DetectedBy,
			clipping.CreatedAt, clipping.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clipping insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert clipping: %w", err)
	}
	return nil
}

// GetByID returns one clipping.
func (r *PostgresClippingRepository) GetByID(ctx context.Context, id string) (*domain.MediaClipping, error) {
	query, args, err := psql.Select(clippingColumns...).
		From("media_clippings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build clipping select: %w", err)
	}

	clipping, err := scanClipping(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clipping %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan clipping: %w", err)
	}
	return &clipping, nil
}

// Update rewrites the correctable clipping fields.
func (r *PostgresClippingRepository) Update(ctx context.Context, clipping *domain.MediaClipping) error {
	query, args, err := psql.Update("media_clippings").
		Set("reach", clipping.Reach).
		Set("ave", clipping.AVE).
		Set("sentiment", clipping.Sentiment).
		Set("updated_at", clipping.UpdatedAt).
		Where(sq.Eq{"id": clipping.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clipping update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update clipping: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("clipping %s: %w", clipping.ID, domain.ErrNotFound)
	}
	return nil
}

// List returns all clippings for one organization.
func (r *PostgresClippingRepository) List(ctx context.Context, organizationID string) ([]domain.MediaClipping, error) {
	query, args, err := psql.Select(clippingColumns...).
		From("media_clippings").
		Where(sq.Eq{"organization_id": organizationID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build clipping list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clippings: %w", err)
	}
	defer rows.Close()

	var clippings []domain.MediaClipping
	for rows.Next() {
		clipping, err := scanClipping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clipping: %w", err)
		}
		clippings = append(clippings, clipping)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return clippings, nil
}

// PostgresAVESettingsRepository stores rate tables as JSONB documents.
type PostgresAVESettingsRepository struct {
	db *sql.DB
}

var _ ports.AVESettingsRepository = (*PostgresAVESettingsRepository)(nil)

// NewPostgresAVESettingsRepository wires a sql.DB implementation.
func NewPostgresAVESettingsRepository(db *sql.DB) *PostgresAVESettingsRepository {
	return &PostgresAVESettingsRepository{db: db}
}

// GetByOrganization returns the organization's rate table, nil when unset.
func (r *PostgresAVESettingsRepository) GetByOrganization(ctx context.Context, organizationID string) (*domain.AVESettings, error) {
	query, args, err := psql.Select("id", "organization_id", "factors",
		"sentiment_multipliers", "updated_by", "created_at", "updated_at").
		From("ave_settings").
		Where(sq.Eq{"organization_id": organizationID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build settings select: %w", err)
	}

	var settings domain.AVESettings
	var factors, multipliers []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&settings.ID,
		&settings.OrganizationID, &factors, &multipliers,
		&settings.UpdatedBy, &settings.CreatedAt, &settings.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan settings: %w", err)
	}

	if err := json.Unmarshal(factors, &settings.Factors); err != nil {
		return nil, fmt.Errorf("decode factors: %w", err)
	}
	if err := json.Unmarshal(multipliers, &settings.SentimentMultipliers); err != nil {
		return nil, fmt.Errorf("decode multipliers: %w", err)
	}
	return &settings, nil
}

// Save upserts an organization's rate table.
func (r *PostgresAVESettingsRepository) Save(ctx context.Context, settings *domain.AVESettings) error {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}

	factors, err := json.Marshal(settings.Factors)
	if err != nil {
		return fmt.Errorf("encode factors: %w", err)
	}
	multipliers, err := json.Marshal(settings.SentimentMultipliers)
	if err != nil {
		return fmt.Errorf("encode multipliers: %w", err)
	}

	query := `INSERT INTO ave_settings (id, organization_id, factors, sentiment_multipliers,
                  updated_by, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              ON CONFLICT (organization_id) DO UPDATE
              SET factors = EXCLUDED.factors,
                  sentiment_multipliers = EXCLUDED.sentiment_multipliers,
                  updated_by = EXCLUDED.updated_by,
                  updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query, settings.ID, settings.OrganizationID,
		factors, multipliers, settings.UpdatedBy, settings.CreatedAt, settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// PostgresCrawlLogRepository is the append-only ingestion audit trail.
type PostgresCrawlLogRepository struct {
	db *sql.DB
}

var _ ports.CrawlLogRepository = (*PostgresCrawlLogRepository)(nil)

// NewPostgresCrawlLogRepository wires a sql.DB implementation.
func NewPostgresCrawlLogRepository(db *sql.DB) *PostgresCrawlLogRepository {
	return &PostgresCrawlLogRepository{db: db}
}

// CreateRun appends one run-log entry.
func (r *PostgresCrawlLogRepository) CreateRun(ctx context.Context, run *domain.CrawlRunLog) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	query, args, err := psql.Insert("crawl_run_logs").
		Columns("id", "started_at", "duration_ms", "trackers_processed",
			"articles_found", "status", "error_message").
		Values(run.ID, run.StartedAt, run.Duration.Milliseconds(),
			run.TrackersProcessed, run.ArticlesFound, run.Status, run.ErrorMessage).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run, nil when none exist.
func (r *PostgresCrawlLogRepository) LatestRun(ctx context.Context) (*domain.CrawlRunLog, error) {
	query, args, err := psql.Select("id", "started_at", "duration_ms",
		"trackers_processed", "articles_found", "status", "error_message").
		From("crawl_run_logs").
		OrderBy("started_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build run select: %w", err)
	}

	var run domain.CrawlRunLog
	var durationMs int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.StartedAt,
		&durationMs, &run.TrackersProcessed, &run.ArticlesFound, &run.Status, &run.ErrorMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}

// CreateError appends one channel-failure entry.
func (r *PostgresCrawlLogRepository) CreateError(ctx context.Context, entry *domain.CrawlErrorLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query, args, err := psql.Insert("crawl_error_logs").
		Columns("id", "tracker_id", "channel_id", "channel_url", "occurred_at", "message").
		Values(entry.ID, entry.TrackerID, entry.ChannelID, entry.ChannelURL,
			entry.OccurredAt, entry.Message).
		ToSql()
	if err != nil {
		return fmt.Errorf("build error insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert error entry: %w", err)
	}
	return nil
}

// RecentErrorsByChannel returns the newest entries first, capped at limit.
func (r *PostgresCrawlLogRepository) RecentErrorsByChannel(ctx context.Context, channelID string, limit int) ([]domain.CrawlErrorLog, error) {
	builder := psql.Select("id", "tracker_id", "channel_id", "channel_url",
		"occurred_at", "message").
		From("crawl_error_logs").
		Where(sq.Eq{"channel_id": channelID}).
		OrderBy("occurred_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build error select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CrawlErrorLog
	for rows.Next() {
		var entry domain.CrawlErrorLog
		if err := rows.Scan(&entry.ID, &entry.TrackerID, &entry.ChannelID,
			&entry.ChannelURL, &entry.OccurredAt, &entry.Message); err != nil {
			return nil, fmt.Errorf("scan error entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return entries, nil
}
