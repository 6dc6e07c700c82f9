package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/repository"
	"github.com/easylearn/easylearn-backend/internal/worker"
	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Manage registration access tokens",
	}
	cmd.AddCommand(newTokensIssueCmd(), newTokensListCmd(), newTokensSweepCmd())
	return cmd
}

func newTokensIssueCmd() *cobra.Command {
	var role string
	var count int

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue one or more access tokens for a role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := model.ParseRole(role)
			if err != nil {
				return err
			}
			if count < 1 {
				return errors.New("count must be at least 1")
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			tokens := a.accessTokens()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOKEN\tROLE\tEXPIRES")
			for i := 0; i < count; i++ {
				t, err := tokens.Generate(ctx, r, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Token, t.Role, t.ExpiresAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "ADMIN, PROFESSOR or STUDENT")
	cmd.Flags().IntVar(&count, "count", 1, "number of tokens to issue")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newTokensListCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unused, unexpired access tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *model.Role
			if role != "" {
				r, err := model.ParseRole(role)
				if err != nil {
					return err
				}
				filter = &r
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.accessTokens().ListAvailable(ctx, filter)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOKEN\tROLE\tEXPIRES")
			for _, t := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Token, t.Role, t.ExpiresAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only list tokens for this role")
	return cmd
}

func newTokensSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired access tokens and provider credentials now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			sweeper := worker.NewTokenSweeper(
				a.rdb,
				repository.NewAccessTokenRepository(a.pool),
				repository.NewProviderTokenRepository(a.pool),
				a.cfg.SweepInterval, a.log,
			)
			res, err := sweeper.SweepOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d access tokens, %d provider tokens\n", res.AccessTokens, res.ProviderTokens)
			return nil
		},
	}
}
