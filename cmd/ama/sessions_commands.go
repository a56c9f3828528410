package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hwetherall/innovera-ama/internal/store"
)

func newSessionsCommand(configFlag *string) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage all-hands sessions",
	}

	sessionsCmd.AddCommand(newSessionsListCommand(configFlag))
	sessionsCmd.AddCommand(newSessionsCreateMonthlyCommand(configFlag))

	return sessionsCmd
}

func newSessionsListCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions with their question counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			sessions, err := st.ListSessions(ctx)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, session := range sessions {
				count, err := st.CountQuestions(ctx, session.ID)
				if err != nil {
					return fmt.Errorf("count questions: %w", err)
				}
				rows = append(rows, []string{
					session.ID,
					session.MonthYear,
					string(session.Status),
					strconv.Itoa(count),
					session.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Month", "Status", "Questions", "Created"},
				rows,
			))
			return nil
		},
	}
}

func newSessionsCreateMonthlyCommand(configFlag *string) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "create-monthly",
		Short: "Close any active session and open one for the current month",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			ctx := cmd.Context()
			if label == "" {
				label = time.Now().Format("January 2006")
			}

			closed, err := st.CloseActiveSessions(ctx)
			if err != nil {
				return fmt.Errorf("close active sessions: %w", err)
			}
			if closed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %d active session(s) to waiting_transcript.\n", closed)
			}

			existing, err := st.FindSessionByMonthYear(ctx, label)
			if err != nil {
				return fmt.Errorf("find session: %w", err)
			}
			if existing != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Session for %s already exists (%s, %s).\n", label, existing.ID, existing.Status)
				return nil
			}

			session, err := st.CreateSession(ctx, label, store.SessionActive)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created session %s for %s.\n", session.ID, label)
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "month", "", "Month label to use (defaults to the current month)")
	return cmd
}
