package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/repositories"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/docconv"
	"github.com/klassenhub/klassenhub/internal/pkg/editor"
	"github.com/klassenhub/klassenhub/internal/pkg/filestorage"
	"github.com/klassenhub/klassenhub/internal/pkg/helpers"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// maxUploadSize limits a single uploaded exam document.
const maxUploadSize = 20 << 20 // 20MB

// ExamService defines the interface for exam operations
type ExamService interface {
	CreateExam(ctx context.Context, teacherID int64, req *dto.CreateExamRequest) (*dto.ExamResponse, error)
	GetAllExams(ctx context.Context, teacherID int64, page, pageSize int) ([]dto.ExamListItem, dto.PaginationInfo, error)
	GetExamByID(ctx context.Context, teacherID, id int64) (*dto.ExamResponse, error)
	UpdateExam(ctx context.Context, teacherID, id int64, req *dto.UpdateExamRequest) (*dto.ExamResponse, error)
	DeleteExam(ctx context.Context, teacherID, id int64) error
	UploadExams(ctx context.Context, teacherID int64, files []*multipart.FileHeader) ([]dto.UploadedExamResponse, error)
	DownloadExam(ctx context.Context, teacherID, id int64) (filename string, data []byte, err error)
	EditorState(ctx context.Context, teacherID, examID int64) (*dto.EditorStateResponse, error)
	EditorAction(ctx context.Context, teacherID, examID int64, req *dto.EditorActionRequest) (*dto.EditorStateResponse, error)
}

// examServiceImpl implements ExamService
type examServiceImpl struct {
	examRepo *repositories.ExamRepository
	storage  *filestorage.LocalStorage
	sessions *editor.Manager
}

// NewExamService creates a new ExamService. The editor manager is shared
// so exam deletion can drop the open session.
func NewExamService(
	examRepo *repositories.ExamRepository,
	storage *filestorage.LocalStorage,
	sessions *editor.Manager,
) ExamService {
	return &examServiceImpl{
		examRepo: examRepo,
		storage:  storage,
		sessions: sessions,
	}
}

// CreateExam creates an exam from already-converted content
func (s *examServiceImpl) CreateExam(ctx context.Context, teacherID int64, req *dto.CreateExamRequest) (*dto.ExamResponse, error) {
	exam, err := s.examRepo.CreateExam(ctx, &models.Exam{
		TeacherID: teacherID,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("teacherID", teacherID).Int64("examID", exam.ID).Msg("Exam created")
	return examToResponse(exam), nil
}

// GetAllExams lists the teacher's exams, most recently edited first
func (s *examServiceImpl) GetAllExams(ctx context.Context, teacherID int64, page, pageSize int) ([]dto.ExamListItem, dto.PaginationInfo, error) {
	exams, total, err := s.examRepo.GetAllExams(ctx, teacherID, page, pageSize)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	items := make([]dto.ExamListItem, 0, len(exams))
	for _, exam := range exams {
		items = append(items, dto.ExamListItem{
			ID:        exam.ID,
			Title:     exam.Title,
			UpdatedAt: exam.UpdatedAt,
		})
	}
	return items, helpers.NewPaginationInfo(total, page, pageSize), nil
}

// GetExamByID returns one exam with its full content
func (s *examServiceImpl) GetExamByID(ctx context.Context, teacherID, id int64) (*dto.ExamResponse, error) {
	exam, err := s.examRepo.GetExamByID(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	return examToResponse(exam), nil
}

// UpdateExam patches the exam title and/or content
func (s *examServiceImpl) UpdateExam(ctx context.Context, teacherID, id int64, req *dto.UpdateExamRequest) (*dto.ExamResponse, error) {
	if req.Title == nil && req.Content == nil {
		return nil, apperrors.NewValidationError("nothing to update")
	}
	exam, err := s.examRepo.UpdateExam(ctx, teacherID, id, req.Title, req.Content)
	if err != nil {
		return nil, err
	}
	return examToResponse(exam), nil
}

// DeleteExam removes the exam, its stored source file and any open editor
// session. Corrections and chat messages go with it via FK cascade.
func (s *examServiceImpl) DeleteExam(ctx context.Context, teacherID, id int64) error {
	exam, err := s.examRepo.GetExamByID(ctx, teacherID, id)
	if err != nil {
		return err
	}

	if err := s.examRepo.DeleteExam(ctx, teacherID, id); err != nil {
		return err
	}

	s.sessions.Close(id, teacherID)
	if exam.SourceFilePath != nil {
		if err := s.storage.DeleteFile(*exam.SourceFilePath); err != nil {
			logger.Warn().Err(err).Str("path", *exam.SourceFilePath).Msg("Failed to delete exam source file")
		}
	}

	logger.Info().Int64("teacherID", teacherID).Int64("examID", id).Msg("Exam deleted")
	return nil
}

// isWordDocument accepts the extensions exams may be uploaded with. Files
// named .doc must still carry docx content; the conversion rejects anything
// else.
func isWordDocument(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".docx" || ext == ".doc"
}

// UploadExams converts a batch of uploaded Word files into exams, one exam
// per file. The whole batch is rejected when any file has the wrong type.
func (s *examServiceImpl) UploadExams(ctx context.Context, teacherID int64, files []*multipart.FileHeader) ([]dto.UploadedExamResponse, error) {
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("no files uploaded")
	}
	for _, fh := range files {
		if !isWordDocument(fh.Filename) {
			return nil, apperrors.NewCustomError(apperrors.ErrUnsupportedFileType,
				fmt.Sprintf("unsupported file type: %s", fh.Filename))
		}
		if fh.Size > maxUploadSize {
			return nil, apperrors.NewValidationError(fmt.Sprintf("file too large: %s", fh.Filename))
		}
	}

	results := make([]dto.UploadedExamResponse, 0, len(files))
	for _, fh := range files {
		content, err := readDocxContent(fh)
		if err != nil {
			return results, err
		}

		storedPath, err := s.storage.SaveFile(fh, "exams")
		if err != nil {
			return results, fmt.Errorf("error storing uploaded file %s: %w", fh.Filename, err)
		}

		title := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
		exam, err := s.examRepo.CreateExam(ctx, &models.Exam{
			TeacherID:      teacherID,
			Title:          title,
			Content:        content,
			SourceFilePath: &storedPath,
		})
		if err != nil {
			return results, err
		}

		logger.Info().
			Int64("teacherID", teacherID).
			Int64("examID", exam.ID).
			Str("filename", fh.Filename).
			Msg("Exam created from upload")
		results = append(results, dto.UploadedExamResponse{
			ExamID:   exam.ID,
			Title:    exam.Title,
			Filename: fh.Filename,
		})
	}
	return results, nil
}

// DownloadExam renders the exam content back into a .docx file
func (s *examServiceImpl) DownloadExam(ctx context.Context, teacherID, id int64) (string, []byte, error) {
	exam, err := s.examRepo.GetExamByID(ctx, teacherID, id)
	if err != nil {
		return "", nil, err
	}

	data, err := docconv.ToDocx(exam.Content)
	if err != nil {
		return "", nil, fmt.Errorf("error rendering exam document: %w", err)
	}
	return exam.Title + ".docx", data, nil
}

// EditorState returns the current state of the exam's editor session,
// opening one in edit mode on first access.
func (s *examServiceImpl) EditorState(ctx context.Context, teacherID, examID int64) (*dto.EditorStateResponse, error) {
	session, err := s.sessions.Session(ctx, examID, teacherID)
	if err != nil {
		return nil, err
	}
	return editorStateResponse(examID, session), nil
}

// EditorAction applies one editor command: buffer replace, mode toggle or
// save. The resulting state is returned either way.
func (s *examServiceImpl) EditorAction(ctx context.Context, teacherID, examID int64, req *dto.EditorActionRequest) (*dto.EditorStateResponse, error) {
	session, err := s.sessions.Session(ctx, examID, teacherID)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case "buffer":
		session.SetBuffer(req.Buffer)
	case "toggle":
		if err := session.Toggle(ctx); err != nil {
			return nil, err
		}
	case "save":
		if err := session.Save(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError("unknown editor action")
	}
	return editorStateResponse(examID, session), nil
}

func editorStateResponse(examID int64, session *editor.Session) *dto.EditorStateResponse {
	return &dto.EditorStateResponse{
		ExamID: examID,
		Mode:   string(session.Mode()),
		Buffer: session.Buffer(),
		Dirty:  session.Dirty(),
	}
}

func examToResponse(e *models.Exam) *dto.ExamResponse {
	return &dto.ExamResponse{
		ID:        e.ID,
		Title:     e.Title,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func readDocxContent(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("error opening uploaded file %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("error reading uploaded file %s: %w", fh.Filename, err)
	}

	content, err := docconv.FromDocx(data)
	if errors.Is(err, docconv.ErrNotDocx) {
		return "", apperrors.NewCustomError(apperrors.ErrUnsupportedFileType,
			fmt.Sprintf("%s does not contain a Word document", fh.Filename))
	}
	if err != nil {
		return "", apperrors.NewCustomError(err, fmt.Sprintf("could not convert %s", fh.Filename))
	}
	return content, nil
}
