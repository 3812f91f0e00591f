package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for durable persistence.
//
// The store uses WAL mode with a busy timeout and keeps a single writer
// connection, which is how SQLite behaves best under concurrent load.
// Each Increment is a single UPSERT statement, so a whole Delta commits
// atomically: two concurrent interactions for the same user cannot lose
// an update. Lazy window resets ride inside the same statement via CASE
// arms driven by the delta's reset flags.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string

	getStmt       *sql.Stmt
	incrementStmt *sql.Stmt
}

// SQLiteConfig configures the SQLite ledger store.
type SQLiteConfig struct {
	// DBPath is the path to the database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (or creates) a SQLite ledger store with defaults.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{DBPath: dbPath})
}

// NewSQLiteStoreWithConfig opens a SQLite ledger store with custom settings.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	store := &SQLiteStore{
		db:     db,
		dbPath: cfg.DBPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_ledgers (
		user_id TEXT PRIMARY KEY,
		total_minutes_used REAL NOT NULL DEFAULT 0,
		input_seconds_used REAL NOT NULL DEFAULT 0,
		output_seconds_used REAL NOT NULL DEFAULT 0,
		request_count INTEGER NOT NULL DEFAULT 0,
		requests_this_hour INTEGER NOT NULL DEFAULT 0,
		last_used_at INTEGER NOT NULL DEFAULT 0,
		savings_accumulated REAL NOT NULL DEFAULT 0,
		bonus_minutes_earned REAL NOT NULL DEFAULT 0,
		bonus_minutes_used REAL NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_ledgers_last_used ON usage_ledgers(last_used_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getStmt, err = s.db.Prepare(`
		SELECT user_id, total_minutes_used, input_seconds_used, output_seconds_used,
		       request_count, requests_this_hour, last_used_at, savings_accumulated,
		       bonus_minutes_earned, bonus_minutes_used, created_at, updated_at
		FROM usage_ledgers
		WHERE user_id = ?1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	// One statement applies the whole delta. The reset flags (?13 daily,
	// ?14 hourly) switch the covered counters from add to overwrite.
	s.incrementStmt, err = s.db.Prepare(`
		INSERT INTO usage_ledgers (
			user_id, total_minutes_used, input_seconds_used, output_seconds_used,
			request_count, requests_this_hour, last_used_at, savings_accumulated,
			bonus_minutes_earned, bonus_minutes_used, created_at, updated_at
		)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11, ?12)
		ON CONFLICT (user_id) DO UPDATE SET
			total_minutes_used = CASE WHEN ?13 THEN ?2 ELSE total_minutes_used + ?2 END,
			input_seconds_used = CASE WHEN ?13 THEN ?3 ELSE input_seconds_used + ?3 END,
			output_seconds_used = CASE WHEN ?13 THEN ?4 ELSE output_seconds_used + ?4 END,
			request_count = request_count + ?5,
			requests_this_hour = CASE WHEN ?14 THEN ?6 ELSE requests_this_hour + ?6 END,
			last_used_at = CASE WHEN ?7 != 0 THEN ?7 ELSE last_used_at END,
			savings_accumulated = savings_accumulated + ?8,
			bonus_minutes_earned = bonus_minutes_earned + ?9,
			bonus_minutes_used = bonus_minutes_used + ?10,
			updated_at = ?12
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare increment statement: %w", err)
	}

	return nil
}

// Get returns the user's row, or an all-zero row if none exists.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (*Ledger, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	var (
		led        Ledger
		lastUsedAt int64
		createdAt  int64
		updatedAt  int64
	)

	err := s.getStmt.QueryRowContext(ctx, userID).Scan(
		&led.UserID,
		&led.TotalMinutesUsed,
		&led.InputSecondsUsed,
		&led.OutputSecondsUsed,
		&led.RequestCount,
		&led.RequestsThisHour,
		&lastUsedAt,
		&led.SavingsAccumulated,
		&led.BonusMinutesEarned,
		&led.BonusMinutesUsed,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return &Ledger{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	if lastUsedAt != 0 {
		led.LastUsedAt = time.Unix(lastUsedAt, 0)
	}
	led.CreatedAt = time.Unix(createdAt, 0)
	led.UpdatedAt = time.Unix(updatedAt, 0)

	return &led, nil
}

// Increment applies a delta as one atomic UPSERT.
func (s *SQLiteStore) Increment(ctx context.Context, userID string, delta Delta) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	now := time.Now().Unix()

	var lastUsedAt int64
	if !delta.LastUsedAt.IsZero() {
		lastUsedAt = delta.LastUsedAt.Unix()
	}

	_, err := s.incrementStmt.ExecContext(ctx,
		userID,
		delta.Minutes,
		delta.InputSeconds,
		delta.OutputSeconds,
		delta.Requests,
		delta.HourRequests,
		lastUsedAt,
		delta.Savings,
		delta.BonusEarned,
		delta.BonusUsed,
		now,
		now,
		boolToInt(delta.ResetDaily),
		boolToInt(delta.ResetHourly),
	)
	if err != nil {
		return fmt.Errorf("failed to apply ledger delta: %w", err)
	}

	return nil
}

// Checkpoint flushes the WAL into the main database file. Invoked by the
// maintenance scheduler; safe to call while the store is in use.
func (s *SQLiteStore) Checkpoint(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	if err != nil {
		return fmt.Errorf("wal checkpoint failed: %w", err)
	}
	return nil
}

// Close releases prepared statements and the database handle.
func (s *SQLiteStore) Close() error {
	if s.getStmt != nil {
		s.getStmt.Close()
	}
	if s.incrementStmt != nil {
		s.incrementStmt.Close()
	}
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
