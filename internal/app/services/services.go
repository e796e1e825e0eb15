package services

// Services defined in this package:
// - AuthService: teacher registration, login and token refresh
// - PupilService: pupil roster management
// - ExamService: exam CRUD, docx upload/download and editor sessions
// - CorrectionService: per-exam correction lookup and upsert
// - ReportService: report workflow trigger, CRUD and exports
// - ChatService: per-exam AI chat through the webhook
