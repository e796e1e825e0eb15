package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/docconv"
)

// uploadFileHeader builds a parsed multipart file header the way gin hands
// them to the service.
func uploadFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("files", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	headers := form.File["files"]
	require.Len(t, headers, 1)
	return headers[0]
}

func TestIsWordDocument(t *testing.T) {
	assert.True(t, isWordDocument("Klassenarbeit.docx"))
	assert.True(t, isWordDocument("Klassenarbeit.doc"))
	assert.True(t, isWordDocument("KLASSENARBEIT.DOCX"))
	assert.False(t, isWordDocument("Klassenarbeit.pdf"))
	assert.False(t, isWordDocument("Klassenarbeit"))
}

func TestUploadExams_RejectsUnsupportedExtension(t *testing.T) {
	svc := NewExamService(nil, nil, nil)
	fh := uploadFileHeader(t, "notizen.pdf", []byte("%PDF-1.4"))

	_, err := svc.UploadExams(context.Background(), 1, []*multipart.FileHeader{fh})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFileType)
}

func TestUploadExams_DocExtensionPassesGateButContentIsChecked(t *testing.T) {
	svc := NewExamService(nil, nil, nil)

	// a .doc file must make it past the extension check; the garbage body
	// is then rejected by the converter, not the gate
	fh := uploadFileHeader(t, "arbeit.doc", []byte("not a word document"))
	_, err := svc.UploadExams(context.Background(), 1, []*multipart.FileHeader{fh})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFileType)
	assert.ErrorContains(t, err, "does not contain a Word document")
}

func TestReadDocxContent_AcceptsDocNamedDocument(t *testing.T) {
	data, err := docconv.ToDocx("# Klassenarbeit\n\nAufgabe 1.")
	require.NoError(t, err)

	fh := uploadFileHeader(t, "arbeit.doc", data)
	content, err := readDocxContent(fh)
	require.NoError(t, err)
	assert.Contains(t, content, "# Klassenarbeit")
	assert.Contains(t, content, "Aufgabe 1.")
}
