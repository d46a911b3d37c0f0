package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/erp/backoffice/internal/application/partnerimport"
	"github.com/erp/backoffice/internal/infrastructure/apiclient"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Importer des partenaires depuis un classeur .xlsx",
		Long: `Le classeur est validé ligne par ligne côté serveur. Les cellules en erreur se
corrigent avec "import fix" ou interactivement avec "import upload --fix",
puis "import commit" insère toutes les lignes une fois le fichier valide.`,
	}
	cmd.AddCommand(
		newImportUploadCmd(a),
		newImportShowCmd(a),
		newImportFixCmd(a),
		newImportCommitCmd(a),
		newImportTemplateCmd(a),
	)
	return cmd
}

func newImportUploadCmd(a *app) *cobra.Command {
	var fix, commit bool
	cmd := &cobra.Command{
		Use:   "upload <fichier.xlsx>",
		Short: "Envoyer un classeur et afficher les lignes en erreur",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := a.client.UploadImport(ctx, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			printSession(a, s)

			if fix && !s.Valid {
				if s, err = fixInteractively(ctx, a, s); err != nil {
					return err
				}
			}
			if commit {
				return commitSession(ctx, a, s.ID)
			}
			if s.Valid {
				fmt.Fprintln(a.out, subtleStyle.Render("Fichier valide: backoffice import commit "+s.ID))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "corriger les cellules en erreur de façon interactive")
	cmd.Flags().BoolVar(&commit, "commit", false, "importer dès que le fichier est valide")
	return cmd
}

func newImportShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Afficher une session d'import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.ImportSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSession(a, s)
			return nil
		},
	}
}

func newImportFixCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "fix <session> <ligne> <colonne> <valeur>",
		Short:   "Corriger une cellule; la ligne est celle du classeur",
		Example: `  backoffice import fix 3b0f... 4 category Fournisseur`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("numéro de ligne invalide %q", args[1])
			}
			s, err := a.client.ImportSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			index, ok := rowIndex(s, line)
			if !ok {
				return fmt.Errorf("la ligne %d n'existe pas dans %s", line, s.FileName)
			}
			row, err := a.client.EditImportCell(cmd.Context(), s.ID, index, args[2], args[3])
			if err != nil {
				return err
			}
			printRowResult(a, row)
			return nil
		},
	}
}

func newImportCommitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <session>",
		Short: "Importer toutes les lignes d'une session valide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commitSession(cmd.Context(), a, args[0])
		},
	}
}

func newImportTemplateCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Télécharger le modèle de classeur",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.client.ImportTemplate(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			notifier{out: a.out, log: a.log}.Success("Modèle enregistré dans " + out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "partenaires-modele.xlsx", "fichier de sortie")
	return cmd
}

func commitSession(ctx context.Context, a *app, id string) error {
	n, err := a.client.CommitImport(ctx, id)
	if err != nil {
		return err
	}
	notifier{out: a.out, log: a.log}.Success(fmt.Sprintf("%d partenaire(s) importé(s)", n))
	return nil
}

func rowIndex(s *apiclient.ImportSession, line int) (int, bool) {
	for i, r := range s.Rows {
		if r.Line == line {
			return i, true
		}
	}
	return 0, false
}

func printSession(a *app, s *apiclient.ImportSession) {
	fmt.Fprintln(a.out, titleStyle.Render(fmt.Sprintf("%s: %d ligne(s), %d en erreur", s.FileName, s.TotalRows, s.InvalidRows)))
	header := append([]string{"Ligne"}, partnerimport.Columns...)
	header = append(header, "Erreurs")
	rows := make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		row := append([]string{strconv.Itoa(r.Line)}, r.Record.Values()...)
		rows[i] = append(row, strings.Join(r.Errors, "; "))
	}
	fmt.Fprintln(a.out, renderTable(header, rows, func(i int) bool {
		return i < len(s.Rows) && !s.Rows[i].Valid()
	}))
	fmt.Fprintln(a.out, subtleStyle.Render("Session "+s.ID))
}

func printRowResult(a *app, row partnerimport.Row) {
	n := notifier{out: a.out, log: a.log}
	if row.Valid() {
		n.Success(fmt.Sprintf("Ligne %d valide", row.Line))
		return
	}
	n.Error(fmt.Sprintf("Ligne %d: %s", row.Line, strings.Join(row.Errors, "; ")))
}

// fixInteractively walks the invalid rows and asks for colonne=valeur corrections;
// an empty answer moves to the next row
func fixInteractively(ctx context.Context, a *app, s *apiclient.ImportSession) (*apiclient.ImportSession, error) {
	for i := range s.Rows {
		for !s.Rows[i].Valid() {
			fmt.Fprintln(a.out, warningStyle.Render(fmt.Sprintf("Ligne %d: %s", s.Rows[i].Line, strings.Join(s.Rows[i].Errors, "; "))))
			fmt.Fprint(a.out, "colonne=valeur (vide pour passer): ")
			answer, err := readLine(ctx, a.in)
			if err != nil {
				return nil, err
			}
			if answer == "" {
				break
			}
			column, value, ok := strings.Cut(answer, "=")
			if !ok {
				fmt.Fprintln(a.out, errorStyle.Render("format attendu: colonne=valeur"))
				continue
			}
			row, err := a.client.EditImportCell(ctx, s.ID, i, strings.TrimSpace(column), strings.TrimSpace(value))
			if err != nil {
				fmt.Fprintln(a.out, errorStyle.Render(err.Error()))
				continue
			}
			s.Rows[i] = row
			printRowResult(a, row)
		}
	}
	return a.client.ImportSession(ctx, s.ID)
}
