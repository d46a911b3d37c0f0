// Package toggle flips binary status and visibility flags after an explicit confirmation.
package toggle

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/application/mutation"
	"github.com/erp/backoffice/internal/domain/shared"
)

// Confirmer asks the user to confirm an action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Target is the record and flag a toggle acts on
type Target struct {
	ID      string
	Label   string
	Field   string
	Current shared.Status
}

// Outcome reports what a toggle did
type Outcome struct {
	Applied bool
	Value   shared.Status
}

// Toggler runs the confirm-then-mutate flow
type Toggler struct {
	confirmer Confirmer
	mutator   mutation.Mutator
	notifier  mutation.Notifier
	refetcher mutation.Refetcher
}

// NewToggler creates a Toggler; refetcher may be nil
func NewToggler(confirmer Confirmer, mutator mutation.Mutator, notifier mutation.Notifier, refetcher mutation.Refetcher) *Toggler {
	return &Toggler{
		confirmer: confirmer,
		mutator:   mutator,
		notifier:  notifier,
		refetcher: refetcher,
	}
}

// Prompt is the confirmation text shown for target
func Prompt(target Target, next shared.Status) string {
	return fmt.Sprintf("Passer %s de « %s » à %s ?", target.Field, target.Label, next)
}

// Toggle flips a 0/1 flag. Cancelling makes no call and keeps the current value.
func (t *Toggler) Toggle(ctx context.Context, target Target) (Outcome, error) {
	if target.Current != 0 && target.Current != 1 {
		return Outcome{Value: target.Current}, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("%s is not a binary flag (value %s)", target.Field, target.Current))
	}
	return t.Set(ctx, target, 1-target.Current)
}

// Set moves a small-enum status to next through the same confirmation flow
func (t *Toggler) Set(ctx context.Context, target Target, next shared.Status) (Outcome, error) {
	keep := Outcome{Value: target.Current}

	ok, err := t.confirmer.Confirm(ctx, Prompt(target, next))
	if err != nil {
		return keep, err
	}
	if !ok {
		return keep, nil
	}

	res := mutation.Resolve(t.mutator.Update(ctx, target.ID, mutation.Payload{target.Field: int(next)}))
	if res.Error {
		msg := res.Message
		if msg == "" {
			msg = "Le changement de statut a échoué"
		}
		t.notifier.Error(msg)
		return keep, fmt.Errorf("toggle %s: %s", target.Field, msg)
	}

	t.notifier.Success(fmt.Sprintf("« %s » mis à jour", target.Label))
	if t.refetcher != nil {
		if err := t.refetcher.Refetch(ctx); err != nil {
			return Outcome{Applied: true, Value: next}, err
		}
	}
	return Outcome{Applied: true, Value: next}, nil
}
