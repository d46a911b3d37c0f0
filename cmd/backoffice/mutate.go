package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/application/form"
	"github.com/erp/backoffice/internal/application/mutation"
	"github.com/erp/backoffice/internal/application/toggle"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/apiclient"
	"github.com/spf13/cobra"
)

func newCreateCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:     "create <entité>",
		Short:   "Créer un enregistrement",
		Example: `  backoffice create partners --set title="Atlas Fret" --set category_id=carrier`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			return e.Create(cmd.Context(), a, sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "valeur champ=valeur (répétable)")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:     "edit <entité> <id>",
		Short:   "Modifier un enregistrement",
		Example: `  backoffice edit partners 6f1c... --set phone="+212 522 00 00 00"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				return errors.New("rien à modifier: utilisez --set champ=valeur")
			}
			return e.Edit(cmd.Context(), a, args[1], sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "valeur champ=valeur (répétable)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <entité> <id>",
		Short: "Supprimer un enregistrement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			return e.Delete(cmd.Context(), a, args[1], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "ne pas demander de confirmation")
	return cmd
}

type toggleOptions struct {
	field string
	to    int
	setTo bool
	yes   bool
}

func newToggleCmd(a *app) *cobra.Command {
	var opts toggleOptions
	cmd := &cobra.Command{
		Use:   "toggle <entité> <id>",
		Short: "Basculer un statut ou une visibilité",
		Long: `Bascule un indicateur 0/1 après confirmation. Pour les statuts à plusieurs
valeurs (cotations, appels d'offres), indiquez la valeur cible avec --to.`,
		Example: `  backoffice toggle partners 6f1c...
  backoffice toggle cotations 9a2e... --to 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			opts.setTo = cmd.Flags().Changed("to")
			return e.Toggle(cmd.Context(), a, args[1], opts)
		},
	}
	cmd.Flags().StringVar(&opts.field, "field", "", "champ à basculer (défaut: celui de l'entité)")
	cmd.Flags().IntVar(&opts.to, "to", 0, "valeur cible d'un statut à plusieurs valeurs")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "ne pas demander de confirmation")
	return cmd
}

func (e *entity[T, P]) formController(a *app) *form.Controller {
	return form.NewController(
		form.Schema{Entity: e.name, Fields: e.fields},
		apiclient.NewResource[T](a.client, e.name),
		notifier{out: a.out, log: a.log},
		nil,
	)
}

func (e *entity[T, P]) change(ctrl *form.Controller, sets []string) error {
	pairs, err := parseSets(sets)
	if err != nil {
		return err
	}
	for _, kv := range pairs {
		if _, ok := e.field(kv[0]); !ok {
			return fmt.Errorf("champ inconnu %q (attendu: %s)", kv[0], strings.Join(shared.FieldNames(e.fields), ", "))
		}
		ctrl.Change(kv[0], kv[1])
	}
	return nil
}

// submitted hides the controller's error once it has been shown as a toast
func submitted(err error) error {
	var verr *form.ValidationError
	if errors.As(err, &verr) || errors.Is(err, form.ErrMutationFailed) {
		return errAlreadyReported
	}
	return err
}

var errAlreadyReported = errors.New("opération refusée")

func (e *entity[T, P]) Create(ctx context.Context, a *app, sets []string) error {
	ctrl := e.formController(a)
	ctrl.OpenCreate()
	if err := e.change(ctrl, sets); err != nil {
		return err
	}
	return submitted(ctrl.Submit(ctx))
}

func (e *entity[T, P]) Edit(ctx context.Context, a *app, id string, sets []string) error {
	values, err := apiclient.NewResource[T](a.client, e.name).Values(ctx, id)
	if err != nil {
		return err
	}
	ctrl := e.formController(a)
	ctrl.OpenEdit(id, values)
	if err := e.change(ctrl, sets); err != nil {
		return err
	}
	return submitted(ctrl.Submit(ctx))
}

func (e *entity[T, P]) Delete(ctx context.Context, a *app, id string, assumeYes bool) error {
	res := apiclient.NewResource[T](a.client, e.name)
	rec, err := res.Get(ctx, id)
	if err != nil {
		return err
	}
	confirm := promptConfirmer{in: a.in, out: a.out, assumeYes: assumeYes}
	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Supprimer « %s » ?", P(rec).DisplayLabel()))
	if err != nil || !ok {
		return err
	}
	n := notifier{out: a.out, log: a.log}
	result := mutation.Resolve(res.Delete(ctx, id))
	if result.Error {
		n.Error(result.Message)
		return errAlreadyReported
	}
	n.Success(fmt.Sprintf("« %s » supprimé", P(rec).DisplayLabel()))
	return nil
}

func (e *entity[T, P]) Toggle(ctx context.Context, a *app, id string, opts toggleOptions) error {
	field := opts.field
	if field == "" {
		field = e.toggleField
	}
	if field == "" {
		field = e.statusKey
		if !opts.setTo {
			return fmt.Errorf("%s n'a pas d'indicateur 0/1: indiquez la valeur cible avec --to", e.name)
		}
	}
	spec, ok := e.field(field)
	if !ok || spec.Kind != shared.KindStatus {
		return fmt.Errorf("le champ %q ne peut pas être basculé", field)
	}

	res := apiclient.NewResource[T](a.client, e.name)
	rec, values, err := res.Fetch(ctx, id)
	if err != nil {
		return err
	}
	current, _ := values[field].(float64)

	t := toggle.NewToggler(
		promptConfirmer{in: a.in, out: a.out, assumeYes: opts.yes},
		res,
		notifier{out: a.out, log: a.log},
		nil,
	)
	target := toggle.Target{ID: id, Label: P(rec).DisplayLabel(), Field: field, Current: shared.Status(int(current))}

	var outcome toggle.Outcome
	if opts.setTo {
		if field == e.statusKey && !e.statuses.Has(shared.Status(opts.to)) {
			return fmt.Errorf("statut %d inconnu", opts.to)
		}
		outcome, err = t.Set(ctx, target, shared.Status(opts.to))
	} else {
		outcome, err = t.Toggle(ctx, target)
	}
	if err != nil {
		return err
	}
	if !outcome.Applied {
		fmt.Fprintln(a.out, subtleStyle.Render("Annulé"))
	}
	return nil
}
