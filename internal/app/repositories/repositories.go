package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	PupilRepository      *PupilRepository
	ExamRepository       *ExamRepository
	CorrectionRepository *CorrectionRepository
	ReportRepository     *ReportRepository
	ChatRepository       *ChatRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		TokenRepository:      NewTokenRepository(db),
		PupilRepository:      NewPupilRepository(db),
		ExamRepository:       NewExamRepository(db),
		CorrectionRepository: NewCorrectionRepository(db),
		ReportRepository:     NewReportRepository(db),
		ChatRepository:       NewChatRepository(db),
	}
}
