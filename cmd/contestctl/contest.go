package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/fantasy-contest/internal/app"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
)

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run one live stats ingestion pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				if c.Ingestion == nil {
					return fmt.Errorf("live stats ingestion needs APIFOOTBALL_ENABLED=true")
				}
				report, err := c.Ingestion.Run(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, report)
			})
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Dispatch settlement for every complete unscored competition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				dispatched := c.Sweep.Run(ctx)
				return printJSON(cmd, map[string]any{"dispatched": dispatched})
			})
		},
	}
}

func settleCmd() *cobra.Command {
	var ref refFlags
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle one competition now",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := ref.parse()
			if err != nil {
				return err
			}
			return withContainer(func(ctx context.Context, c *app.Container) error {
				outcome, err := c.Settlement.Settle(ctx, target)
				if err != nil {
					return err
				}
				return printJSON(cmd, outcome)
			})
		},
	}
	ref.register(cmd)
	return cmd
}

func completionCmd() *cobra.Command {
	var ref refFlags
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Report whether every player-match of a competition is finished",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := ref.parse()
			if err != nil {
				return err
			}
			return withContainer(func(ctx context.Context, c *app.Container) error {
				complete, err := c.Completion.IsComplete(ctx, target)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]any{
					"competition_type": target.Type,
					"competition_id":   target.ID,
					"complete":         complete,
				})
			})
		},
	}
	ref.register(cmd)
	return cmd
}

func availabilityCmd() *cobra.Command {
	var (
		fixtureID string
		players   string
	)
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "List pickable players for a fixture, or check specific players",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				ids := splitIDs(players)
				if len(ids) == 0 {
					items, err := c.Availability.AvailablePlayers(ctx, fixtureID)
					if err != nil {
						return err
					}
					return printJSON(cmd, items)
				}
				reasons, err := c.Availability.CheckAvailability(ctx, ids, fixtureID)
				if err != nil {
					return err
				}
				return printJSON(cmd, reasons)
			})
		},
	}
	cmd.Flags().StringVar(&fixtureID, "fixture", "", "Fixture ID")
	cmd.Flags().StringVar(&players, "players", "", "Comma separated player IDs to check")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}

func walletCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Show a user's wallet balance and ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				item, found, err := c.Wallets.GetByUserID(ctx, userID)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("wallet for user %q not found", userID)
				}
				ledger, err := c.Wallets.ListTransactionsByUser(ctx, userID)
				if err != nil {
					return err
				}

				rows := make([]map[string]any, 0, len(ledger))
				for _, entry := range ledger {
					rows = append(rows, map[string]any{
						"id":             entry.ID,
						"action":         entry.ActionType,
						"amount":         entry.Amount.StringFixed(2),
						"balance_before": entry.BalanceBefore.StringFixed(2),
						"balance_after":  entry.BalanceAfter.StringFixed(2),
						"status":         entry.Status,
						"reference_type": entry.ReferenceType,
						"reference_id":   entry.ReferenceID,
						"participant_id": entry.ParticipantID,
						"created_at":     entry.CreatedAt,
					})
				}
				return printJSON(cmd, map[string]any{
					"user_id":      item.UserID,
					"balance":      item.Balance.StringFixed(2),
					"updated_at":   item.UpdatedAt,
					"transactions": rows,
				})
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func inboxCmd() *cobra.Command {
	var (
		userID string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List a user's in-app notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *app.Container) error {
				items, err := c.Notifications.ListInbox(ctx, userID, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, items)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries, 1 to 100")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

type refFlags struct {
	competitionType string
	competitionID   string
}

func (f *refFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.competitionType, "type", string(competition.TypeTournament), "Competition type (tournament, peer)")
	cmd.Flags().StringVar(&f.competitionID, "id", "", "Competition ID")
	_ = cmd.MarkFlagRequired("id")
}

func (f *refFlags) parse() (competition.Ref, error) {
	competitionType, err := competition.ParseType(f.competitionType)
	if err != nil {
		return competition.Ref{}, err
	}
	id := strings.TrimSpace(f.competitionID)
	if id == "" {
		return competition.Ref{}, fmt.Errorf("--id cannot be empty")
	}
	return competition.Ref{Type: competitionType, ID: id}, nil
}

func splitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
