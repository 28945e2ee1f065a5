package storage

import (
	"github.com/ralphtown/ralphtown/internal/domain"
)

// repoModelToDomain converts a RepositoryModel (GORM) to domain.Repository
func repoModelToDomain(m RepositoryModel) domain.Repository {
	return domain.Repository{
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		Name:      m.Name,
		Path:      m.Path,
		UpdatedAt: m.UpdatedAt,
	}
}

// domainToRepoModel converts a domain.Repository to RepositoryModel (GORM)
func domainToRepoModel(r domain.Repository) RepositoryModel {
	return RepositoryModel{
		CreatedAt: r.CreatedAt,
		ID:        r.ID,
		Name:      r.Name,
		Path:      r.Path,
		UpdatedAt: r.UpdatedAt,
	}
}

// sessionModelToDomain converts a SessionModel (GORM) to domain.Session
func sessionModelToDomain(m SessionModel) domain.Session {
	return domain.Session{
		CreatedAt:    m.CreatedAt,
		ID:           m.ID,
		Name:         m.Name,
		Orchestrator: m.Orchestrator,
		RepoID:       m.RepoID,
		Status:       domain.SessionStatus(m.Status),
		UpdatedAt:    m.UpdatedAt,
	}
}

// domainToSessionModel converts a domain.Session to SessionModel (GORM)
func domainToSessionModel(s domain.Session) SessionModel {
	orchestrator := s.Orchestrator
	if orchestrator == "" {
		orchestrator = domain.DefaultOrchestrator
	}
	status := s.Status
	if status == "" {
		status = domain.StatusIdle
	}
	return SessionModel{
		CreatedAt:    s.CreatedAt,
		ID:           s.ID,
		Name:         s.Name,
		Orchestrator: orchestrator,
		RepoID:       s.RepoID,
		Status:       string(status),
		UpdatedAt:    s.UpdatedAt,
	}
}

// messageModelToDomain converts a MessageModel (GORM) to domain.Message
func messageModelToDomain(m MessageModel) domain.Message {
	return domain.Message{
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		Role:      domain.MessageRole(m.Role),
		SessionID: m.SessionID,
	}
}

// domainToMessageModel converts a domain.Message to MessageModel (GORM)
func domainToMessageModel(m domain.Message) MessageModel {
	return MessageModel{
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		Role:      string(m.Role),
		SessionID: m.SessionID,
	}
}

// outputLogModelToDomain converts an OutputLogModel (GORM) to domain.OutputLog
func outputLogModelToDomain(m OutputLogModel) domain.OutputLog {
	return domain.OutputLog{
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		ID:        m.ID,
		SessionID: m.SessionID,
		Stream:    domain.OutputStream(m.Stream),
	}
}
