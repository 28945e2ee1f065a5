package storage

import "time"

// RepositoryModel is the GORM model for the repos table
type RepositoryModel struct {
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Path      string `gorm:"not null;uniqueIndex:idx_repos_path"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (RepositoryModel) TableName() string { return "repos" }

// SessionModel is the GORM model for the sessions table
type SessionModel struct {
	CreatedAt    time.Time
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Orchestrator string `gorm:"not null;default:'ralph'"`
	RepoID       string `gorm:"not null;index:idx_sessions_repo_id"`
	Status       string `gorm:"not null;default:'idle'"`
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string { return "sessions" }

// MessageModel is the GORM model for the messages table
type MessageModel struct {
	Content   string `gorm:"not null"`
	CreatedAt time.Time
	ID        string `gorm:"primaryKey"`
	Role      string `gorm:"not null"`
	SessionID string `gorm:"not null;index:idx_messages_session_id"`
}

// TableName specifies the table name for GORM
func (MessageModel) TableName() string { return "messages" }

// OutputLogModel is the GORM model for the output_logs table
type OutputLogModel struct {
	Content   string `gorm:"not null"`
	CreatedAt time.Time
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"not null;index:idx_output_logs_session_id"`
	Stream    string `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (OutputLogModel) TableName() string { return "output_logs" }

// ConfigModel is the GORM model for the config table
type ConfigModel struct {
	CreatedAt time.Time
	Key       string `gorm:"primaryKey"`
	UpdatedAt time.Time
	Value     string `gorm:"not null;default:''"`
}

// TableName specifies the table name for GORM
func (ConfigModel) TableName() string { return "config" }
