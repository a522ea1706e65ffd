package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_store.go -package=mocks klema-chatbot/internal/storage ChatStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ChatStore defines the persistence operations of chat sessions and product
// recommendation analytics.
type ChatStore interface {
	// GetSession returns a session with its conversation, or ErrNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)
	// CreateSession inserts a session and its conversation.
	CreateSession(ctx context.Context, s *Session) error
	// AppendMessage adds a message to an existing session, recounts its
	// messages and latches flags. It returns the updated session.
	AppendMessage(ctx context.Context, sessionID string, msg Message, flags SessionFlags) (*Session, error)
	// LatchFlags sets the true flags of a session. Missing sessions are ignored.
	LatchFlags(ctx context.Context, sessionID string, flags SessionFlags) error
	// EndSession stamps the end time and duration, or returns ErrNotFound.
	EndSession(ctx context.Context, sessionID string, endedAt time.Time, durationSeconds int) (*Session, error)
	// CreateRecommendation inserts a recommendation and its products.
	CreateRecommendation(ctx context.Context, rec *Recommendation) error
	// RecordClick inserts a click and, when recommendationID is set, marks the
	// product of that recommendation as clicked.
	RecordClick(ctx context.Context, click *Click, recommendationID string) error
	// ListRecommendedProducts returns the products of a recommendation by position.
	ListRecommendedProducts(ctx context.Context, recommendationID string) ([]RecommendedProduct, error)
	// Ping checks the database connection.
	Ping(ctx context.Context) error
}

// ChatRepo implements ChatStore on SQLite or PostgreSQL.
type ChatRepo struct {
	db  *DB
	now func() time.Time
}

// NewChatRepo creates a new ChatRepo.
func NewChatRepo(db *DB) *ChatRepo {
	return &ChatRepo{db: db, now: time.Now}
}

// GetSession returns a session with its conversation ordered by message index.
func (r *ChatRepo) GetSession(ctx context.Context, id string) (*Session, error) {
	return r.getSession(ctx, r.db.DB, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *ChatRepo) getSession(ctx context.Context, q queryer, id string) (*Session, error) {
	var (
		s       Session
		userID  sql.NullString
		geoCity sql.NullString
		endedAt sql.NullTime
	)
	err := q.QueryRowContext(ctx, r.db.Rebind(
		`SELECT id, website, user_id, started_at, ended_at, total_messages, geo_city,
		 email_submitted, had_product_recommendation, had_product_click, duration_seconds
		 FROM chat_sessions WHERE id = ?`), id,
	).Scan(&s.ID, &s.Website, &userID, &s.StartedAt, &endedAt, &s.TotalMessages, &geoCity,
		&s.EmailSubmitted, &s.HadProductRecommendation, &s.HadProductClick, &s.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	s.UserID = userID.String
	s.GeoCity = geoCity.String
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}

	rows, err := q.QueryContext(ctx, r.db.Rebind(
		`SELECT message_index, user_message, bot_response, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY created_at, message_index`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	s.Conversation = []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Index, &m.User, &m.Bot, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		s.Conversation = append(s.Conversation, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &s, nil
}

// CreateSession inserts a session and its conversation in one transaction.
// TotalMessages is set from the conversation length.
func (r *ChatRepo) CreateSession(ctx context.Context, s *Session) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = r.now().UTC()
	}
	s.TotalMessages = len(s.Conversation)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(
			`INSERT INTO chat_sessions (id, website, user_id, started_at, total_messages, geo_city,
			 email_submitted, had_product_recommendation, had_product_click, duration_seconds)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			s.ID, s.Website, nullString(s.UserID), s.StartedAt, s.TotalMessages, nullString(s.GeoCity),
			s.EmailSubmitted, s.HadProductRecommendation, s.HadProductClick, s.DurationSeconds,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		for _, m := range s.Conversation {
			if err := r.insertMessage(ctx, tx, s.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendMessage adds msg to the session and updates its counters and flags.
func (r *ChatRepo) AppendMessage(ctx context.Context, sessionID string, msg Message, flags SessionFlags) (*Session, error) {
	var updated *Session
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.insertMessage(ctx, tx, sessionID, msg); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, r.db.Rebind(
			`UPDATE chat_sessions SET
			 total_messages = (SELECT COUNT(*) FROM chat_messages WHERE session_id = ?)
			 WHERE id = ?`), sessionID, sessionID)
		if err != nil {
			return fmt.Errorf("failed to update message count: %w", err)
		}
		if err := r.latch(ctx, tx, sessionID, flags); err != nil {
			return err
		}
		updated, err = r.getSession(ctx, tx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LatchFlags sets the true flags of a session.
func (r *ChatRepo) LatchFlags(ctx context.Context, sessionID string, flags SessionFlags) error {
	return r.latch(ctx, r.db.DB, sessionID, flags)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *ChatRepo) latch(ctx context.Context, e execer, sessionID string, flags SessionFlags) error {
	_, err := e.ExecContext(ctx, r.db.Rebind(
		`UPDATE chat_sessions SET
		 email_submitted = (email_submitted OR ?),
		 had_product_recommendation = (had_product_recommendation OR ?),
		 had_product_click = (had_product_click OR ?),
		 geo_city = COALESCE(geo_city, ?)
		 WHERE id = ?`),
		flags.EmailSubmitted, flags.HadProductRecommendation, flags.HadProductClick,
		nullString(flags.GeoCity), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session flags: %w", err)
	}
	return nil
}

func (r *ChatRepo) insertMessage(ctx context.Context, tx *sql.Tx, sessionID string, m Message) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = r.now().UTC()
	}
	_, err := tx.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO chat_messages (id, session_id, message_index, user_message, bot_response, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		uuid.New().String(), sessionID, m.Index, m.User, m.Bot, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// EndSession stamps ended_at and duration_seconds.
func (r *ChatRepo) EndSession(ctx context.Context, sessionID string, endedAt time.Time, durationSeconds int) (*Session, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE chat_sessions SET ended_at = ?, duration_seconds = ? WHERE id = ?`),
		endedAt, durationSeconds, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return r.GetSession(ctx, sessionID)
}

// CreateRecommendation inserts rec and its products, assigning UUIDs. A
// product without a position gets its 1-based index.
func (r *ChatRepo) CreateRecommendation(ctx context.Context, rec *Recommendation) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(
			`INSERT INTO chat_product_recommendations
			 (id, session_id, chat_log_id, website, query_text, category, user_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			rec.ID, rec.SessionID, nullString(rec.ChatLogID), nullString(rec.Website),
			nullString(rec.QueryText), nullString(rec.Category), nullString(rec.UserID), rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert recommendation: %w", err)
		}

		for i := range rec.Products {
			p := &rec.Products[i]
			p.ID = uuid.New().String()
			p.RecommendationID = rec.ID
			if p.Position == 0 {
				p.Position = i + 1
			}
			_, err := tx.ExecContext(ctx, r.db.Rebind(
				`INSERT INTO chat_recommended_products
				 (id, recommendation_id, product_id, product_name, product_url, position, price, was_clicked)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
				p.ID, p.RecommendationID, p.ProductID, nullString(p.ProductName), nullString(p.ProductURL),
				p.Position, p.Price, false,
			)
			if err != nil {
				return fmt.Errorf("failed to insert recommended product: %w", err)
			}
		}
		return nil
	})
}

// RecordClick inserts click and marks the matching recommended product.
func (r *ChatRepo) RecordClick(ctx context.Context, click *Click, recommendationID string) error {
	if click.ID == "" {
		click.ID = uuid.New().String()
	}
	if click.ClickedAt.IsZero() {
		click.ClickedAt = r.now().UTC()
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(
			`INSERT INTO chat_product_clicks (id, session_id, product_id, position, website, user_id, clicked_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`),
			click.ID, click.SessionID, click.ProductID, click.Position,
			nullString(click.Website), nullString(click.UserID), click.ClickedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert click: %w", err)
		}
		if recommendationID == "" {
			return nil
		}
		_, err = tx.ExecContext(ctx, r.db.Rebind(
			`UPDATE chat_recommended_products SET was_clicked = TRUE
			 WHERE recommendation_id = ? AND product_id = ?`),
			recommendationID, click.ProductID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark product clicked: %w", err)
		}
		return nil
	})
}

// ListRecommendedProducts returns the products of a recommendation.
func (r *ChatRepo) ListRecommendedProducts(ctx context.Context, recommendationID string) ([]RecommendedProduct, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT id, recommendation_id, product_id, product_name, product_url, position, price, was_clicked
		 FROM chat_recommended_products WHERE recommendation_id = ? ORDER BY position`), recommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommended products: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var products []RecommendedProduct
	for rows.Next() {
		var (
			p         RecommendedProduct
			name, url sql.NullString
			price     sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.RecommendationID, &p.ProductID, &name, &url, &p.Position, &price, &p.WasClicked); err != nil {
			return nil, fmt.Errorf("failed to scan recommended product: %w", err)
		}
		p.ProductName = name.String
		p.ProductURL = url.String
		if price.Valid {
			v := price.Float64
			p.Price = &v
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

// Ping checks the database connection.
func (r *ChatRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *ChatRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
