package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/klassenhub/klassenhub/internal/app/models"
	appRepos "github.com/klassenhub/klassenhub/internal/app/repositories"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/auth"
)

const (
	demoEmail    = "demo@klassenhub.app"
	demoPassword = "demo1234"
)

// CreateDemoData creates a demo teacher with a pupil and a sample exam so a
// fresh installation has something to click on. Safe to run repeatedly.
func CreateDemoData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	pupilRepo := appRepos.NewPupilRepository(dbPool)
	examRepo := appRepos.NewExamRepository(dbPool)

	if _, err := userRepo.GetUserByEmail(ctx, demoEmail); err == nil {
		lgr.Debug().Str("email", demoEmail).Msg("Demo teacher already exists, skipping seed")
		return nil
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	lgr.Info().Msg("Creating demo data...")

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	teacherID, err := userRepo.CreateUser(ctx, &appModels.User{
		Email:        demoEmail,
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     "Teacher",
	})
	if err != nil {
		return err
	}

	var finalErr error

	if _, err := pupilRepo.CreatePupil(ctx, &appModels.Pupil{
		TeacherID: teacherID,
		Name:      "Lena Schmidt",
	}); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo pupil")
		finalErr = errors.Join(finalErr, err)
	}

	if _, err := examRepo.CreateExam(ctx, &appModels.Exam{
		TeacherID: teacherID,
		Title:     "Mathematik Klassenarbeit 1",
		Content:   "# Mathematik Klassenarbeit 1\n\n1. Berechne 12 × 8.\n\n2. Löse die Gleichung 3x + 4 = 19.",
	}); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo exam")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Str("email", demoEmail).Int64("teacherID", teacherID).Msg("Demo data created")
	return finalErr
}
