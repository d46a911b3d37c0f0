// Package records implements the server-side operations every administrable
// entity shares: list with the list-view engine, create, partial update,
// delete, flag toggle, dashboards and export.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/application/stats"
	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/domain/shared"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"
)

// RecordPtr is satisfied by pointers to entity structs embedding shared.BaseEntity
type RecordPtr[T any] interface {
	*T
	shared.Record
	Base() *shared.BaseEntity
}

// Cache keeps serialized record lists between requests
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Config declares one entity
type Config[T any] struct {
	Schema   listview.Schema[T]
	Fields   []shared.FieldSpec
	Statuses shared.StatusTable
	// StatusKey is the schema bucket holding the status code
	StatusKey string
	// ToggleField is the flag flipped when no field is named
	ToggleField string
	// Breakdowns are the extra dashboard summaries
	Breakdowns []string
	Titles     map[string]string
	// Resolve refreshes denormalized display names from referenced ids
	Resolve func(ctx context.Context, rec *T) error
	// Prepare runs before validation, e.g. to assign a reference
	Prepare func(rec *T, now time.Time)
}

// ListRequest carries the list inputs
type ListRequest struct {
	Query listview.Query
	// Stats adds every aggregate of the schema to the response
	Stats bool
}

// ListResponse is the data part of a list response
type ListResponse[T any] struct {
	Items         []T                         `json:"items"`
	Totals        map[string]int              `json:"totals"`
	Groups        []listview.Group[T]         `json:"groups,omitempty"`
	Aggregates    map[string]listview.Summary `json:"aggregates,omitempty"`
	ActiveFilters int                         `json:"active_filters"`
}

// TotalCountKey is the totals entry holding the number of listed items
const TotalCountKey = "total"

// Service runs the operations of one entity
type Service[T any, P RecordPtr[T]] struct {
	cfg      Config[T]
	repo     shared.Repository[T]
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
	allowed  map[string]shared.FieldSpec
}

// Option configures a Service
type Option func(*options)

type options struct {
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// WithCache caches full record lists
func WithCache(c Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = c
		o.cacheTTL = ttl
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewService creates a Service
func NewService[T any, P RecordPtr[T]](cfg Config[T], repo shared.Repository[T], opts ...Option) *Service[T, P] {
	o := options{logger: zap.NewNop(), now: time.Now, cacheTTL: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	allowed := make(map[string]shared.FieldSpec, len(cfg.Fields))
	for _, f := range cfg.Fields {
		allowed[f.Name] = f
	}
	return &Service[T, P]{
		cfg:      cfg,
		repo:     repo,
		cache:    o.cache,
		cacheTTL: o.cacheTTL,
		logger:   o.logger.With(zap.String("entity", cfg.Schema.Entity)),
		now:      o.now,
		allowed:  allowed,
	}
}

// Entity returns the resource key
func (s *Service[T, P]) Entity() string { return s.cfg.Schema.Entity }

// Schema returns the list-view schema
func (s *Service[T, P]) Schema() listview.Schema[T] { return s.cfg.Schema }

// Fields returns the editable fields
func (s *Service[T, P]) Fields() []shared.FieldSpec { return s.cfg.Fields }

// List runs the list-view engine over every record
func (s *Service[T, P]) List(ctx context.Context, req ListRequest) (*ListResponse[T], error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	res := listview.Apply(s.cfg.Schema, all, req.Query, s.now())

	out := &ListResponse[T]{
		Items:         res.Records,
		Totals:        s.totals(res.Records),
		ActiveFilters: res.ActiveFilters,
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	if req.Query.GroupBy != "" {
		out.Groups = res.Groups
	}
	if req.Stats {
		out.Aggregates = make(map[string]listview.Summary)
		for _, key := range s.cfg.Schema.BucketKeys() {
			if sum, ok := listview.SummarizeBy(s.cfg.Schema, res.Records, key); ok {
				out.Aggregates[key] = sum
			}
		}
	}
	return out, nil
}

func (s *Service[T, P]) totals(items []T) map[string]int {
	totals := map[string]int{}
	if key, ok := s.cfg.Schema.Buckets[s.cfg.StatusKey]; ok {
		totals = listview.CountBy(items, key, stats.StatusCodes(s.cfg.Statuses))
	}
	totals[TotalCountKey] = len(items)
	return totals
}

// Dashboard computes the statistics page over the filtered records
func (s *Service[T, P]) Dashboard(ctx context.Context, q listview.Query, theme stats.Theme) (stats.Dashboard, error) {
	all, err := s.all(ctx)
	if err != nil {
		return stats.Dashboard{}, err
	}
	now := s.now()
	filtered := listview.Filter(s.cfg.Schema, all, q, now)
	return stats.Build(stats.Definition[T]{
		Schema:     s.cfg.Schema,
		Statuses:   s.cfg.Statuses,
		StatusKey:  s.cfg.StatusKey,
		Breakdowns: s.cfg.Breakdowns,
		Titles:     s.cfg.Titles,
		Months:     12,
	}, filtered, now, theme), nil
}

// Get loads one record
func (s *Service[T, P]) Get(ctx context.Context, id string) (*T, error) {
	return s.repo.FindByID(ctx, id)
}

// Create builds a record from the whitelisted payload fields
func (s *Service[T, P]) Create(ctx context.Context, payload map[string]any) (*T, error) {
	var rec T
	if err := decode(s.whitelist(payload), &rec); err != nil {
		return nil, err
	}
	p := P(&rec)
	*p.Base() = shared.NewBaseEntity()
	p.Base().CreatedAt = s.now()
	p.Base().UpdatedAt = p.Base().CreatedAt

	if err := s.finish(ctx, &rec); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &rec); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("record created", zap.String("id", p.GetID()))
	return &rec, nil
}

// Update merges the whitelisted payload fields into the stored record.
// Fields absent from the payload keep their value; null clears a field.
func (s *Service[T, P]) Update(ctx context.Context, id string, payload map[string]any) (*T, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	original, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.Entity(), err)
	}
	patch, err := json.Marshal(s.whitelist(payload))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "payload cannot be encoded")
	}
	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "payload cannot be merged: "+err.Error())
	}

	var next T
	if err := json.Unmarshal(merged, &next); err != nil {
		return nil, invalidInput(err)
	}
	base := *P(current).Base()
	base.UpdatedAt = s.now()
	*P(&next).Base() = base

	if err := s.finish(ctx, &next); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("record updated", zap.String("id", id))
	return &next, nil
}

// Toggle flips a 0/1 flag; an empty field means the entity's toggle field
func (s *Service[T, P]) Toggle(ctx context.Context, id, field string) (*T, error) {
	if field == "" {
		field = s.cfg.ToggleField
	}
	spec, ok := s.allowed[field]
	if !ok || spec.Kind != shared.KindStatus {
		return nil, shared.NewDomainError("INVALID_INPUT", "field "+field+" cannot be toggled")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	values, err := asMap(current)
	if err != nil {
		return nil, err
	}
	v, _ := values[field].(float64)
	if v != 0 && v != 1 {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("%s is not a binary flag", field))
	}
	return s.Update(ctx, id, map[string]any{field: int(1 - v)})
}

// Delete removes a record
func (s *Service[T, P]) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info("record deleted", zap.String("id", id))
	return nil
}

// SaveAll persists several prepared records at once
func (s *Service[T, P]) SaveAll(ctx context.Context, recs []*T) error {
	for _, r := range recs {
		if err := s.finish(ctx, r); err != nil {
			return fmt.Errorf("%s: %w", P(r).DisplayLabel(), err)
		}
	}
	if err := s.repo.SaveBatch(ctx, recs); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service[T, P]) finish(ctx context.Context, rec *T) error {
	if s.cfg.Resolve != nil {
		if err := s.cfg.Resolve(ctx, rec); err != nil {
			return err
		}
	}
	if s.cfg.Prepare != nil {
		s.cfg.Prepare(rec, s.now())
	}
	return P(rec).Validate()
}

func (s *Service[T, P]) whitelist(payload map[string]any) map[string]any {
	clean := make(map[string]any, len(payload))
	for k, v := range payload {
		if _, ok := s.allowed[k]; ok {
			clean[k] = v
		}
	}
	return clean
}

func (s *Service[T, P]) cacheKey() string {
	return "list:" + s.Entity()
}

func (s *Service[T, P]) all(ctx context.Context) ([]T, error) {
	if s.cache != nil {
		raw, found, err := s.cache.Get(ctx, s.cacheKey())
		if err != nil {
			s.logger.Warn("list cache read failed", zap.Error(err))
		} else if found {
			var cached []T
			decodeErr := json.Unmarshal(raw, &cached)
			if decodeErr == nil {
				return cached, nil
			}
			s.logger.Warn("list cache entry is corrupt", zap.String("entity", s.Entity()), zap.Error(decodeErr))
		}
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(all); err == nil {
			if err := s.cache.Set(ctx, s.cacheKey(), raw, s.cacheTTL); err != nil {
				s.logger.Warn("list cache write failed", zap.Error(err))
			}
		}
	}
	return all, nil
}

func (s *Service[T, P]) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey()); err != nil {
		s.logger.Warn("list cache invalidation failed", zap.Error(err))
	}
}

func decode(values map[string]any, into any) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT", "payload cannot be encoded")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return invalidInput(err)
	}
	return nil
}

func asMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func invalidInput(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return shared.NewDomainError("INVALID_INPUT", "invalid value for "+typeErr.Field)
	}
	return shared.NewDomainError("INVALID_INPUT", err.Error())
}
