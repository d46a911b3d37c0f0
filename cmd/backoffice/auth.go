package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Se connecter et enregistrer le jeton d'accès",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var err error
			if username == "" {
				fmt.Fprint(a.out, "Identifiant: ")
				if username, err = readLine(ctx, a.in); err != nil {
					return err
				}
			}
			if password == "" {
				fmt.Fprint(a.out, "Mot de passe: ")
				if password, err = readLine(ctx, a.in); err != nil {
					return err
				}
			}
			if username == "" || password == "" {
				return errors.New("identifiant et mot de passe requis")
			}

			s, err := a.client.Login(ctx, username, password)
			if err != nil {
				return err
			}
			if err := saveToken(s.AccessToken); err != nil {
				return fmt.Errorf("enregistrement du jeton: %w", err)
			}
			notifier{out: a.out, log: a.log}.Success(fmt.Sprintf("Connecté en tant que %s (%s), jeton valable jusqu'au %s", s.Username, s.Role, s.ExpiresAt))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "identifiant")
	cmd.Flags().StringVarP(&password, "password", "p", "", "mot de passe (demandé si absent)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Révoquer le jeton enregistré",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.client.Token() == "" {
				return errors.New("aucune session ouverte")
			}
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := saveToken(""); err != nil {
				return err
			}
			notifier{out: a.out, log: a.log}.Success("Déconnecté")
			return nil
		},
	}
}
