// Package form implements the record form controller shared by every
// create and edit screen.
package form

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/erp/backoffice/internal/application/mutation"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// Mode tells whether the form creates or edits a record
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// FallbackError is shown when a failed mutation carries no message
const FallbackError = "Une erreur est survenue, veuillez réessayer"

var (
	// ErrClosed is returned when submitting a form that is not open
	ErrClosed = errors.New("form is not open")
	// ErrMutationFailed wraps the message of a failed mutation
	ErrMutationFailed = errors.New("mutation failed")
)

// ValidationError lists the required fields left empty
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Schema describes the form of one entity. The declared fields are also the
// payload whitelist: anything else in the draft never leaves the form.
type Schema struct {
	Entity string
	Fields []shared.FieldSpec
}

// Template returns the empty draft: every declared field at its zero value
func (s Schema) Template() map[string]any {
	draft := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		draft[f.Name] = zeroValue(f.Kind)
	}
	return draft
}

func (s Schema) field(name string) (shared.FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return shared.FieldSpec{}, false
}

// Controller holds the draft of one record and submits it
type Controller struct {
	schema    Schema
	mutator   mutation.Mutator
	notifier  mutation.Notifier
	refetcher mutation.Refetcher
	validate  *validator.Validate

	open  bool
	mode  Mode
	id    string
	draft map[string]any
}

// NewController creates a closed form controller
func NewController(schema Schema, mutator mutation.Mutator, notifier mutation.Notifier, refetcher mutation.Refetcher) *Controller {
	return &Controller{
		schema:    schema,
		mutator:   mutator,
		notifier:  notifier,
		refetcher: refetcher,
		validate:  validator.New(),
		draft:     schema.Template(),
	}
}

// OpenCreate opens the form on the empty template
func (c *Controller) OpenCreate() {
	c.open = true
	c.mode = ModeCreate
	c.id = ""
	c.draft = c.schema.Template()
}

// OpenEdit opens the form seeded with the current values of record id
func (c *Controller) OpenEdit(id string, values map[string]any) {
	c.open = true
	c.mode = ModeEdit
	c.id = id
	c.draft = c.schema.Template()
	for k, v := range values {
		if f, ok := c.schema.field(k); ok {
			v = normalize(f.Kind, v)
		}
		c.draft[k] = v
	}
}

// Close hides the form and drops the draft
func (c *Controller) Close() {
	c.open = false
	c.id = ""
	c.draft = c.schema.Template()
}

// IsOpen reports whether the form is shown
func (c *Controller) IsOpen() bool { return c.open }

// Mode returns the current mode
func (c *Controller) Mode() Mode { return c.mode }

// ID returns the identifier of the edited record, "" in create mode
func (c *Controller) ID() string { return c.id }

// Draft returns a copy of the current draft
func (c *Controller) Draft() map[string]any {
	out := make(map[string]any, len(c.draft))
	for k, v := range c.draft {
		out[k] = v
	}
	return out
}

// Change merges one raw input value into the draft. Numeric fields parse
// as floats and fall back to 0 on bad input.
func (c *Controller) Change(field, raw string) {
	kind := shared.KindText
	if f, ok := c.schema.field(field); ok {
		kind = f.Kind
	}
	c.draft[field] = coerce(kind, raw)
}

// Missing returns the required fields that are empty, in declaration order
func (c *Controller) Missing() []string {
	required := shared.RequiredFields(c.schema.Fields)
	if len(required) == 0 {
		return nil
	}
	data := make(map[string]any, len(required))
	rules := make(map[string]any, len(required))
	for _, name := range required {
		v := c.draft[name]
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		data[name] = v
		rules[name] = "required"
	}
	errs := c.validate.ValidateMap(data, rules)
	var missing []string
	for _, name := range required {
		if _, bad := errs[name]; bad {
			missing = append(missing, name)
		}
	}
	return missing
}

// Payload returns the whitelisted fields of the draft. In edit mode the
// record identifier is merged in.
func (c *Controller) Payload() mutation.Payload {
	payload := make(mutation.Payload, len(c.schema.Fields)+1)
	for _, f := range c.schema.Fields {
		if v, ok := c.draft[f.Name]; ok {
			payload[f.Name] = v
		}
	}
	if c.mode == ModeEdit {
		payload["id"] = c.id
	}
	return payload
}

// Submit validates the draft and calls the create or update mutation.
// A validation failure returns *ValidationError and makes no call.
func (c *Controller) Submit(ctx context.Context) error {
	if !c.open {
		return ErrClosed
	}
	if missing := c.Missing(); len(missing) > 0 {
		verr := &ValidationError{Fields: missing}
		c.notifier.Error(verr.Error())
		return verr
	}

	var (
		res *mutation.Result
		err error
	)
	if c.mode == ModeEdit {
		res, err = c.mutator.Update(ctx, c.id, c.Payload())
	} else {
		res, err = c.mutator.Create(ctx, c.Payload())
	}
	return c.HandleResult(ctx, mutation.Resolve(res, err))
}

// HandleResult reacts to the result of a mutation. On failure the error is
// shown and the form stays open; on success the list is reloaded and the
// form is closed and reset.
func (c *Controller) HandleResult(ctx context.Context, res *mutation.Result) error {
	if res.Error {
		msg := res.Message
		if msg == "" {
			msg = FallbackError
		}
		c.notifier.Error(msg)
		return fmt.Errorf("%w: %s", ErrMutationFailed, msg)
	}

	var refetchErr error
	if c.refetcher != nil {
		refetchErr = c.refetcher.Refetch(ctx)
	}
	c.notifier.Success(c.successMessage())
	c.Close()
	if refetchErr != nil {
		return fmt.Errorf("reload %s: %w", c.schema.Entity, refetchErr)
	}
	return nil
}

func (c *Controller) successMessage() string {
	if c.mode == ModeEdit {
		return "Modifications enregistrées"
	}
	return "Enregistrement créé"
}

func zeroValue(kind shared.FieldKind) any {
	switch kind {
	case shared.KindNumber:
		return float64(0)
	case shared.KindStatus:
		return 0
	case shared.KindBool:
		return false
	default:
		return ""
	}
}

func coerce(kind shared.FieldKind, raw string) any {
	switch kind {
	case shared.KindNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return float64(0)
		}
		return f
	case shared.KindStatus:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return 0
		}
		return n
	case shared.KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return false
		}
		return b
	default:
		return raw
	}
}

// normalize brings a seeded value to the Go type the field kind uses
func normalize(kind shared.FieldKind, v any) any {
	switch t := v.(type) {
	case nil:
		return zeroValue(kind)
	case string:
		if kind == shared.KindText || kind == shared.KindRef || kind == shared.KindDate {
			return t
		}
		return coerce(kind, t)
	case float64:
		if kind == shared.KindStatus {
			return int(t)
		}
		return t
	case int:
		if kind == shared.KindNumber {
			return float64(t)
		}
		return t
	default:
		return v
	}
}
