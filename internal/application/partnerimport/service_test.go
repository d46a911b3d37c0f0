package partnerimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeWorkbook struct {
	rows    [][]string
	readErr error
	written [][]string
}

func (f *fakeWorkbook) ReadRows(io.Reader) ([][]string, error) {
	return f.rows, f.readErr
}

func (f *fakeWorkbook) Write(_ string, header []string, rows [][]string) ([]byte, error) {
	f.written = append([][]string{header}, rows...)
	return []byte("xlsx"), nil
}

type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string][]byte{}}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type MockPartnerSaver struct {
	mock.Mock
}

func (m *MockPartnerSaver) SaveAll(ctx context.Context, ps []*partner.Partner) error {
	return m.Called(ctx, ps).Error(0)
}

type recordingArchive struct {
	keys []string
	err  error
}

func (a *recordingArchive) Upload(_ context.Context, key string, _ []byte, _ string) error {
	if a.err != nil {
		return a.err
	}
	a.keys = append(a.keys, key)
	return nil
}

func sheetWithOneBadRow() [][]string {
	return [][]string{
		{"company_name", "category", "is_active"},
		{"Acme", "client", "YES"},
		{"", "carrier", "MAYBE"},
	}
}

func TestService_UploadEditCommit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPartnerSaver)
	archive := &recordingArchive{}
	svc := NewService(&fakeWorkbook{rows: sheetWithOneBadRow()}, newMemoryKV(), repo, WithArchive(archive))

	sess, err := svc.Upload(ctx, "partners.xlsx", []byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, 1, sess.ErrorCount())
	require.Len(t, archive.keys, 1)
	assert.Equal(t, archive.keys[0], sess.ArchiveKey)
	assert.Contains(t, sess.ArchiveKey, sess.ID+".xlsx")

	_, err = svc.Commit(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrInvalidRows)
	repo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)

	_, err = svc.EditCell(ctx, sess.ID, 1, ColCompanyName, "Beta")
	require.NoError(t, err)
	row, err := svc.EditCell(ctx, sess.ID, 1, ColIsActive, "NO")
	require.NoError(t, err)
	assert.True(t, row.Valid())

	reloaded, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Valid(), "edits are persisted")

	repo.On("SaveAll", ctx, mock.MatchedBy(func(ps []*partner.Partner) bool {
		return len(ps) == 2 && ps[0].Title == "Acme" && ps[1].Title == "Beta" && !ps[1].IsActive
	})).Return(nil).Once()

	n, err := svc.Commit(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	repo.AssertExpectations(t)

	_, err = svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_ConcurrentCellEdits(t *testing.T) {
	const n = 20
	sheet := [][]string{{"company_name", "category", "is_active"}}
	for i := 0; i < n; i++ {
		sheet = append(sheet, []string{"", "client", "YES"})
	}
	ctx := context.Background()
	svc := NewService(&fakeWorkbook{rows: sheet}, newMemoryKV(), new(MockPartnerSaver))

	sess, err := svc.Upload(ctx, "partners.xlsx", []byte("raw"))
	require.NoError(t, err)
	require.Equal(t, n, sess.ErrorCount())

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.EditCell(ctx, sess.ID, i, ColCompanyName, fmt.Sprintf("Partner %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	reloaded, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Valid(), "no edit is lost")
	for i, row := range reloaded.Rows {
		assert.Equal(t, fmt.Sprintf("Partner %d", i), row.Record.CompanyName)
	}
	assert.Empty(t, svc.locks.locks)
}

func TestService_UploadRejectsFile(t *testing.T) {
	svc := NewService(&fakeWorkbook{rows: [][]string{{"name"}, {"Acme"}}}, newMemoryKV(), new(MockPartnerSaver))
	_, err := svc.Upload(context.Background(), "p.xlsx", nil)
	assert.ErrorIs(t, err, ErrMissingHeader)

	svc = NewService(&fakeWorkbook{readErr: errors.New("zip: not a valid zip file")}, newMemoryKV(), new(MockPartnerSaver))
	_, err = svc.Upload(context.Background(), "p.xlsx", nil)
	assert.ErrorContains(t, err, "cannot read workbook")
}

func TestService_ArchiveFailureDoesNotBlockImport(t *testing.T) {
	svc := NewService(&fakeWorkbook{rows: sheetWithOneBadRow()}, newMemoryKV(), new(MockPartnerSaver),
		WithArchive(&recordingArchive{err: errors.New("bucket unavailable")}))

	sess, err := svc.Upload(context.Background(), "p.xlsx", nil)
	require.NoError(t, err)
	assert.Empty(t, sess.ArchiveKey)
}

func TestService_Template(t *testing.T) {
	wb := &fakeWorkbook{}
	svc := NewService(wb, newMemoryKV(), new(MockPartnerSaver))

	data, err := svc.Template()
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	require.Len(t, wb.written, 2)
	assert.Equal(t, Columns, wb.written[0])
	assert.Empty(t, ValidateRow(Record{
		CompanyName: wb.written[1][0],
		Category:    wb.written[1][4],
		Status:      wb.written[1][5],
		IsActive:    wb.written[1][6],
	}), "the example row is itself importable")
}
