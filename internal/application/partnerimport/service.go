package partnerimport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SheetName is the sheet written to templates
const SheetName = "Partenaires"

// XLSXContentType is the MIME type of workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = shared.NewDomainError("NOT_FOUND", "import session not found or expired")

// Workbook reads and writes spreadsheet files
type Workbook interface {
	ReadRows(r io.Reader) ([][]string, error)
	Write(sheet string, header []string, rows [][]string) ([]byte, error)
}

// Archive keeps a copy of uploaded originals
type Archive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// KV stores serialized sessions between requests
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Saver persists the partners of a committed session in one batch
type Saver interface {
	SaveAll(ctx context.Context, partners []*partner.Partner) error
}

// Service runs partner import sessions
type Service struct {
	workbook Workbook
	archive  Archive
	store    KV
	saver    Saver
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
	locks    sessionLocks
}

// Option configures a Service
type Option func(*Service)

// WithArchive archives every uploaded file
func WithArchive(a Archive) Option {
	return func(s *Service) { s.archive = a }
}

// WithTTL sets how long an idle session is kept
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service
func NewService(workbook Workbook, store KV, saver Saver, opts ...Option) *Service {
	s := &Service{
		workbook: workbook,
		store:    store,
		saver:    saver,
		ttl:      time.Hour,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload parses a workbook into a new session. A file without the required
// header or without data rows is rejected as a whole.
func (s *Service) Upload(ctx context.Context, fileName string, data []byte) (*Session, error) {
	sheet, err := s.workbook.ReadRows(bytes.NewReader(data))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_FILE", "cannot read workbook: "+err.Error())
	}
	rows, err := ParseRows(sheet)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.NewString(),
		FileName:  fileName,
		CreatedAt: s.now(),
		Rows:      rows,
	}

	if s.archive != nil {
		key := path.Join("imports", "partners", sess.CreatedAt.Format("2006/01"), sess.ID+path.Ext(fileName))
		if err := s.archive.Upload(ctx, key, data, XLSXContentType); err != nil {
			s.logger.Warn("failed to archive import file",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
		} else {
			sess.ArchiveKey = key
		}
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("partner import session created",
		zap.String("session_id", sess.ID),
		zap.Int("rows", len(rows)),
		zap.Int("invalid_rows", sess.ErrorCount()),
	)
	return sess, nil
}

// Get loads a session
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	raw, found, err := s.store.Get(ctx, sessionKey(id))
	if err != nil {
		return nil, fmt.Errorf("load import session: %w", err)
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode import session: %w", err)
	}
	return &sess, nil
}

// EditCell corrects one cell of a session row
func (s *Service) EditCell(ctx context.Context, id string, index int, column, value string) (Row, error) {
	defer s.locks.lock(id)()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return Row{}, err
	}
	row, err := sess.EditCell(index, column, value)
	if err != nil {
		return Row{}, err
	}
	if err := s.save(ctx, sess); err != nil {
		return Row{}, err
	}
	return row, nil
}

// Commit inserts every row as a partner, only when all of them are valid.
// The session is discarded afterwards.
func (s *Service) Commit(ctx context.Context, id string) (int, error) {
	defer s.locks.lock(id)()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if !sess.Valid() {
		return 0, ErrInvalidRows
	}

	partners := make([]*partner.Partner, 0, len(sess.Rows))
	for _, row := range sess.Rows {
		p, err := ToPartner(row.Record)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", row.Line, err)
		}
		partners = append(partners, p)
	}
	if err := s.saver.SaveAll(ctx, partners); err != nil {
		return 0, err
	}

	if err := s.store.Delete(ctx, sessionKey(id)); err != nil {
		s.logger.Warn("failed to drop committed import session", zap.String("session_id", id), zap.Error(err))
	}
	s.logger.Info("partner import committed", zap.String("session_id", id), zap.Int("partners", len(partners)))
	return len(partners), nil
}

// Template returns an empty workbook carrying the expected header and one example row
func (s *Service) Template() ([]byte, error) {
	example := Record{
		CompanyName: "Exemple SARL",
		Email:       "contact@exemple.ma",
		Category:    partner.Categories[0].Name,
		Status:      "0",
		IsActive:    "YES",
	}
	return s.workbook.Write(SheetName, Columns, [][]string{example.Values()})
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode import session: %w", err)
	}
	if err := s.store.Set(ctx, sessionKey(sess.ID), raw, s.ttl); err != nil {
		return fmt.Errorf("store import session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "import:partners:" + id
}

// sessionLocks serializes the read-modify-write cycles on one session
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// lock blocks until id is free and returns the matching unlock
func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
