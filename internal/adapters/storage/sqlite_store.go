package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
	"github.com/ralphtown/ralphtown/internal/ports"
)

// defaultOutputPageSize caps ListOutput when the query carries no limit.
const defaultOutputPageSize = 1000

// SQLiteStore implements ports.Store using GORM
type SQLiteStore struct {
	db *gorm.DB
}

// Verify interface compliance at compile time
var _ ports.Store = (*SQLiteStore)(nil)

// gormLogger wraps the ralphtown logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error",
			"error", err,
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else if elapsed > 200*time.Millisecond {
		logging.Logger.Warn("slow query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else {
		logging.Logger.Debug("gorm query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	}
}

func newGormLogger() logger.Interface {
	if os.Getenv("RALPHTOWN_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// NewSQLiteStore opens (and migrates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Expand home directory if present
	if len(dbPath) > 0 && dbPath[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, dbPath[1:])
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Per-connection pragmas ride the DSN so every pooled connection
	// enforces the foreign keys
	dsn := dbPath + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for concurrent access
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")

	if err := db.AutoMigrate(&RepositoryModel{}, &ConfigModel{}); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	// Child tables are created manually so the foreign keys cascade
	migrator := db.Migrator()

	if !migrator.HasTable(&SessionModel{}) {
		if err := db.Exec(`
			CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				repo_id TEXT NOT NULL,
				name TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'idle',
				orchestrator TEXT NOT NULL DEFAULT 'ralph',
				created_at DATETIME,
				updated_at DATETIME,
				FOREIGN KEY (repo_id) REFERENCES repos(id) ON UPDATE CASCADE ON DELETE CASCADE
			)
		`).Error; err != nil {
			return nil, fmt.Errorf("failed to create sessions table: %w", err)
		}
		if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_repo_id ON sessions(repo_id)`).Error; err != nil {
			return nil, fmt.Errorf("failed to index sessions table: %w", err)
		}
	}

	if !migrator.HasTable(&MessageModel{}) {
		if err := db.Exec(`
			CREATE TABLE IF NOT EXISTS messages (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL,
				role TEXT NOT NULL,
				content TEXT NOT NULL,
				created_at DATETIME,
				FOREIGN KEY (session_id) REFERENCES sessions(id) ON UPDATE CASCADE ON DELETE CASCADE
			)
		`).Error; err != nil {
			return nil, fmt.Errorf("failed to create messages table: %w", err)
		}
		if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id)`).Error; err != nil {
			return nil, fmt.Errorf("failed to index messages table: %w", err)
		}
	}

	if !migrator.HasTable(&OutputLogModel{}) {
		if err := db.Exec(`
			CREATE TABLE IF NOT EXISTS output_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL,
				stream TEXT NOT NULL,
				content TEXT NOT NULL,
				created_at DATETIME,
				FOREIGN KEY (session_id) REFERENCES sessions(id) ON UPDATE CASCADE ON DELETE CASCADE
			)
		`).Error; err != nil {
			return nil, fmt.Errorf("failed to create output_logs table: %w", err)
		}
		if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_output_logs_session_id ON output_logs(session_id)`).Error; err != nil {
			return nil, fmt.Errorf("failed to index output_logs table: %w", err)
		}
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AddRepo implements RepoStore.AddRepo
func (s *SQLiteStore) AddRepo(ctx context.Context, repo domain.Repository) error {
	return withRetry(func() error {
		model := domainToRepoModel(repo)
		if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
			if isConstraintErr(err) {
				return fmt.Errorf("repository at %s already registered: %w", repo.Path, domain.ErrConflict)
			}
			return fmt.Errorf("failed to create repository: %w", err)
		}
		return nil
	}, 3)
}

// GetRepo implements RepoStore.GetRepo
func (s *SQLiteStore) GetRepo(ctx context.Context, id string) (*domain.Repository, error) {
	var model RepositoryModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	repo := repoModelToDomain(model)
	return &repo, nil
}

// GetRepoByPath implements RepoStore.GetRepoByPath
func (s *SQLiteStore) GetRepoByPath(ctx context.Context, path string) (*domain.Repository, error) {
	var model RepositoryModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("path = ?", path).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("repository at %s: %w", path, domain.ErrNotFound)
		}
		return nil, err
	}
	repo := repoModelToDomain(model)
	return &repo, nil
}

// ListRepos implements RepoStore.ListRepos, newest first
func (s *SQLiteStore) ListRepos(ctx context.Context) ([]domain.Repository, error) {
	var models []RepositoryModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	repos := make([]domain.Repository, len(models))
	for i, m := range models {
		repos[i] = repoModelToDomain(m)
	}
	return repos, nil
}

// DeleteRepo implements RepoStore.DeleteRepo. Sessions, messages and
// output logs under the repository cascade away with it.
func (s *SQLiteStore) DeleteRepo(ctx context.Context, id string) error {
	return withRetry(func() error {
		result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&RepositoryModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
		}
		return nil
	}, 3)
}

// AddSession implements SessionStore.AddSession
func (s *SQLiteStore) AddSession(ctx context.Context, session domain.Session) error {
	return withRetry(func() error {
		model := domainToSessionModel(session)
		if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
			if isConstraintErr(err) {
				return fmt.Errorf("session %s: %w", session.ID, domain.ErrConflict)
			}
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	}, 3)
}

// GetSession implements SessionStore.GetSession
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var model SessionModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	session := sessionModelToDomain(model)
	return &session, nil
}

// ListSessions implements SessionStore.ListSessions, newest first
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return s.listSessions(ctx, "")
}

// ListSessionsByRepo implements SessionStore.ListSessionsByRepo
func (s *SQLiteStore) ListSessionsByRepo(ctx context.Context, repoID string) ([]domain.Session, error) {
	return s.listSessions(ctx, repoID)
}

func (s *SQLiteStore) listSessions(ctx context.Context, repoID string) ([]domain.Session, error) {
	var models []SessionModel
	err := withRetry(func() error {
		query := s.db.WithContext(ctx)
		if repoID != "" {
			query = query.Where("repo_id = ?", repoID)
		}
		return query.Order("created_at DESC").Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, len(models))
	for i, m := range models {
		sessions[i] = sessionModelToDomain(m)
	}
	return sessions, nil
}

// UpdateSessionStatus implements SessionStore.UpdateSessionStatus
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, id string, status domain.SessionStatus) error {
	return withRetry(func() error {
		result := s.db.WithContext(ctx).Model(&SessionModel{}).
			Where("id = ?", id).
			Update("status", string(status))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
		}
		return nil
	}, 3)
}

// DeleteSession implements SessionStore.DeleteSession. Messages and
// output logs cascade away with the session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	return withRetry(func() error {
		result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&SessionModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
		}
		return nil
	}, 3)
}

// AddMessage implements MessageStore.AddMessage
func (s *SQLiteStore) AddMessage(ctx context.Context, message domain.Message) error {
	return withRetry(func() error {
		model := domainToMessageModel(message)
		if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
			if isConstraintErr(err) {
				return fmt.Errorf("message %s: %w", message.ID, domain.ErrConflict)
			}
			return fmt.Errorf("failed to create message: %w", err)
		}
		return nil
	}, 3)
}

// ListMessages implements MessageStore.ListMessages, oldest first
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var models []MessageModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).
			Where("session_id = ?", sessionID).
			Order("created_at ASC").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, len(models))
	for i, m := range models {
		messages[i] = messageModelToDomain(m)
	}
	return messages, nil
}

// AppendOutput implements OutputLogStore.AppendOutput
func (s *SQLiteStore) AppendOutput(ctx context.Context, sessionID string, stream domain.OutputStream, content string) error {
	return withRetry(func() error {
		model := OutputLogModel{
			Content:   content,
			SessionID: sessionID,
			Stream:    string(stream),
		}
		if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
			if isConstraintErr(err) {
				return fmt.Errorf("output for session %s: %w", sessionID, domain.ErrConflict)
			}
			return fmt.Errorf("failed to append output: %w", err)
		}
		return nil
	}, 3)
}

// ListOutput implements OutputLogStore.ListOutput. Records come back in
// insertion order so replays read the way the process wrote.
func (s *SQLiteStore) ListOutput(ctx context.Context, q ports.OutputLogQuery) ([]domain.OutputLog, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultOutputPageSize
	}

	var models []OutputLogModel
	err := withRetry(func() error {
		query := s.db.WithContext(ctx).Where("session_id = ?", q.SessionID)
		if q.Stream != "" {
			query = query.Where("stream = ?", string(q.Stream))
		}
		return query.Order("id ASC").Limit(limit).Offset(q.Offset).Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	logs := make([]domain.OutputLog, len(models))
	for i, m := range models {
		logs[i] = outputLogModelToDomain(m)
	}
	return logs, nil
}

// DeleteOutput implements OutputLogStore.DeleteOutput
func (s *SQLiteStore) DeleteOutput(ctx context.Context, sessionID string) error {
	return withRetry(func() error {
		return s.db.WithContext(ctx).
			Where("session_id = ?", sessionID).
			Delete(&OutputLogModel{}).Error
	}, 3)
}

// GetConfig implements ConfigStore.GetConfig
func (s *SQLiteStore) GetConfig(ctx context.Context, key string) (string, error) {
	var model ConfigModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("key = ?", key).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("config key %s: %w", key, domain.ErrNotFound)
		}
		return "", err
	}
	return model.Value, nil
}

// SetConfig implements ConfigStore.SetConfig
func (s *SQLiteStore) SetConfig(ctx context.Context, key, value string) error {
	return withRetry(func() error {
		return s.db.WithContext(ctx).Save(&ConfigModel{
			Key:   key,
			Value: value,
		}).Error
	}, 3)
}

// DeleteConfig implements ConfigStore.DeleteConfig
func (s *SQLiteStore) DeleteConfig(ctx context.Context, key string) error {
	return withRetry(func() error {
		result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&ConfigModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("config key %s: %w", key, domain.ErrNotFound)
		}
		return nil
	}, 3)
}

// ListConfig implements ConfigStore.ListConfig
func (s *SQLiteStore) ListConfig(ctx context.Context) (map[string]string, error) {
	var models []ConfigModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	config := make(map[string]string, len(models))
	for _, m := range models {
		config[m.Key] = m.Value
	}
	return config, nil
}

// isConstraintErr reports whether err is a SQLite constraint violation
func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// withRetry retries operations on SQLITE_BUSY with exponential backoff
func withRetry(fn func() error, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries", maxRetries)
}
