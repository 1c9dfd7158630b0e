package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/domain/wallet"
	"github.com/riskibarqy/fantasy-contest/internal/platform/id"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/shopspring/decimal"
)

// CompetitionNotifier receives one event per participant after settlement
// commits. Failures never undo a settlement.
type CompetitionNotifier interface {
	NotifyCompetitionCompleted(ctx context.Context, event notification.CompetitionCompleted) error
}

type SettlementConfig struct {
	TournamentFeePercent decimal.Decimal
	PeerFeePercent       decimal.Decimal
	PeerWinnerShare      decimal.Decimal
	AggregationMode      competition.AggregationMode
}

func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		TournamentFeePercent: decimal.NewFromInt(10),
		PeerFeePercent:       decimal.NewFromInt(5),
		PeerWinnerShare:      decimal.RequireFromString("0.7"),
		AggregationMode:      competition.AggregationBestOf,
	}
}

func (c SettlementConfig) feePercent(competitionType competition.Type) decimal.Decimal {
	if competitionType == competition.TypePeer {
		return c.PeerFeePercent
	}
	return c.TournamentFeePercent
}

type SettlementStatus string

const (
	SettlementSettled SettlementStatus = "settled"
	SettlementSkipped SettlementStatus = "skipped"
)

type WinnerPayout struct {
	ParticipantID string          `json:"participant_id"`
	UserID        string          `json:"user_id"`
	Points        int             `json:"points"`
	Prize         decimal.Decimal `json:"prize"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

type SettlementOutcome struct {
	Competition   competition.Ref            `json:"-"`
	Status        SettlementStatus           `json:"status"`
	SkipReason    string                     `json:"skip_reason,omitempty"`
	Participants  int                        `json:"participants"`
	Winners       []WinnerPayout             `json:"winners"`
	Breakdown     competition.PrizeBreakdown `json:"-"`
	SettledAt     time.Time                  `json:"settled_at"`
	Notifications int                        `json:"notifications"`
}

// SettlementEngine scores, ranks and pays out a competition exactly once.
type SettlementEngine struct {
	store      SettlementStore
	aggregator *SquadAggregator
	notifier   CompetitionNotifier
	idGen      id.Generator
	cfg        SettlementConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewSettlementEngine(
	store SettlementStore,
	aggregator *SquadAggregator,
	notifier CompetitionNotifier,
	idGen id.Generator,
	cfg SettlementConfig,
	logger *logging.Logger,
) *SettlementEngine {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator("txn-")
	}
	if cfg.AggregationMode == "" {
		cfg.AggregationMode = competition.AggregationBestOf
	}
	if cfg.PeerWinnerShare.IsZero() {
		cfg.PeerWinnerShare = DefaultSettlementConfig().PeerWinnerShare
	}

	return &SettlementEngine{
		store:      store,
		aggregator: aggregator,
		notifier:   notifier,
		idGen:      idGen,
		cfg:        cfg,
		logger:     logger.Named("settlement"),
		now:        time.Now,
	}
}

// Settle returns a skipped outcome with a nil error when the competition is
// no longer open or was already scored.
func (s *SettlementEngine) Settle(ctx context.Context, ref competition.Ref) (SettlementOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementEngine.Settle")
	defer span.End()

	outcome := SettlementOutcome{Competition: ref}
	var (
		events []notification.CompetitionCompleted
		comp   competition.Competition
	)

	err := s.store.WithinSettlement(ctx, func(ctx context.Context, tx SettlementTx) error {
		outcome = SettlementOutcome{Competition: ref}
		events = nil

		item, exists, err := tx.LockCompetition(ctx, ref)
		if err != nil {
			return fmt.Errorf("lock competition=%s: %w", ref, err)
		}
		if !exists {
			return fmt.Errorf("%w: competition=%s", ErrNotFound, ref)
		}
		comp = item
		if !item.Settleable() {
			outcome.Status = SettlementSkipped
			outcome.SkipReason = fmt.Errorf("%w: status=%s scoring_calculated=%t",
				ErrSettlementPrecondition, item.Status, item.ScoringCalculated).Error()
			return nil
		}

		participants, err := tx.ListParticipants(ctx, ref)
		if err != nil {
			return fmt.Errorf("list participants competition=%s: %w", ref, err)
		}
		if len(participants) == 0 {
			return fmt.Errorf("settle competition=%s: %w", ref, ErrNoParticipants)
		}

		totals, err := s.aggregator.AggregateCompetition(ctx, tx, participants, s.cfg.AggregationMode)
		if err != nil {
			return fmt.Errorf("aggregate competition=%s: %w", ref, err)
		}
		for i := range participants {
			participants[i].TotalPoints = totals[participants[i].ID]
		}

		winners, err := competition.ResolveWinners(participants, ref.Type)
		if err != nil {
			return fmt.Errorf("resolve winners competition=%s: %w", ref, err)
		}
		winnerIDs := make(map[string]struct{}, len(winners))
		for _, winner := range winners {
			winnerIDs[winner.ID] = struct{}{}
		}

		for _, participant := range participants {
			_, isWinner := winnerIDs[participant.ID]
			if err := tx.SaveParticipantResult(ctx, ref, participant.ID, participant.TotalPoints, isWinner); err != nil {
				return fmt.Errorf("save participant result participant=%s: %w", participant.ID, err)
			}
		}

		settledAt := s.now().UTC()
		if err := tx.MarkSettled(ctx, ref, ref.Type.TerminalStatus(), winners[0].UserID, settledAt); err != nil {
			return fmt.Errorf("mark competition settled competition=%s: %w", ref, err)
		}

		breakdown, err := competition.ComputePrizes(competition.PrizeInput{
			Type:             ref.Type,
			EntryFee:         item.EntryFee,
			ParticipantCount: len(participants),
			WinnerCount:      len(winners),
			FeePercent:       s.cfg.feePercent(ref.Type),
			SharingRatio:     item.SharingRatio,
			PeerWinnerShare:  s.cfg.PeerWinnerShare,
		})
		if err != nil {
			return fmt.Errorf("compute prizes competition=%s: %w", ref, err)
		}

		payouts := make([]WinnerPayout, 0, len(winners))
		for _, winner := range winners {
			payout := WinnerPayout{
				ParticipantID: winner.ID,
				UserID:        winner.UserID,
				Points:        winner.TotalPoints,
				Prize:         breakdown.PrizePerWinner,
			}
			if breakdown.PrizePerWinner.IsPositive() {
				txnID, err := s.creditWinner(ctx, tx, item, winner, breakdown.PrizePerWinner, settledAt)
				if err != nil {
					return markFinancial(fmt.Errorf("credit winner user=%s competition=%s: %w", winner.UserID, ref, err))
				}
				payout.TransactionID = txnID
			}
			payouts = append(payouts, payout)
		}

		outcome.Status = SettlementSettled
		outcome.Participants = len(participants)
		outcome.Winners = payouts
		outcome.Breakdown = breakdown
		outcome.SettledAt = settledAt
		events = completionEvents(item, participants, winnerIDs, breakdown.PrizePerWinner, settledAt)
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoParticipants):
			s.logger.WarnContext(ctx, "settlement aborted without participants", "competition", ref.String(), "error", err)
		case errors.Is(err, ErrNotFound):
			// caller supplied an unknown id
		default:
			s.logger.ErrorContext(ctx, "settlement rolled back", "competition", ref.String(), "error", err)
		}
		return SettlementOutcome{Competition: ref}, err
	}

	if outcome.Status == SettlementSkipped {
		s.logger.InfoContext(ctx, "settlement skipped", "competition", ref.String(), "reason", outcome.SkipReason)
		return outcome, nil
	}

	if outcome.Breakdown.Undistributed.IsPositive() {
		s.logger.WarnContext(ctx, "peer prize remainder left undistributed",
			"competition", ref.String(),
			"sharing_ratio", comp.SharingRatio,
			"undistributed", outcome.Breakdown.Undistributed,
		)
	}
	s.logger.InfoContext(ctx, "competition settled",
		"competition", ref.String(),
		"participants", outcome.Participants,
		"winners", len(outcome.Winners),
		"total_pool", outcome.Breakdown.TotalPool,
		"fee", outcome.Breakdown.Fee,
		"prize_per_winner", outcome.Breakdown.PrizePerWinner,
		"residue", outcome.Breakdown.Residue,
	)

	outcome.Notifications = s.notify(ctx, events)
	return outcome, nil
}

func (s *SettlementEngine) creditWinner(
	ctx context.Context,
	tx SettlementTx,
	item competition.Competition,
	winner competition.Participant,
	amount decimal.Decimal,
	at time.Time,
) (string, error) {
	txnID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate transaction id: %w", err)
	}

	balance, err := tx.CreditWallet(ctx, winner.UserID, amount)
	if err != nil {
		return "", err
	}

	referenceType := wallet.ReferenceTournamentPrize
	if item.Type == competition.TypePeer {
		referenceType = wallet.ReferencePeerPrize
	}
	entry := wallet.Transaction{
		ID:            txnID,
		UserID:        winner.UserID,
		Amount:        amount,
		ActionType:    wallet.ActionCredit,
		BalanceBefore: balance.Before,
		BalanceAfter:  balance.After,
		Status:        wallet.TransactionCompleted,
		Description:   fmt.Sprintf("Prize for winning %s %q", item.Type, item.Name),
		ReferenceType: referenceType,
		ReferenceID:   item.ID,
		ParticipantID: winner.ID,
		CreatedAt:     at,
	}
	if err := tx.RecordTransaction(ctx, entry); err != nil {
		return "", err
	}
	return txnID, nil
}

func completionEvents(
	item competition.Competition,
	participants []competition.Participant,
	winnerIDs map[string]struct{},
	prize decimal.Decimal,
	at time.Time,
) []notification.CompetitionCompleted {
	out := make([]notification.CompetitionCompleted, 0, len(participants))
	for _, participant := range participants {
		_, isWinner := winnerIDs[participant.ID]
		event := notification.CompetitionCompleted{
			UserID:          participant.UserID,
			CompetitionType: item.Type,
			CompetitionID:   item.ID,
			CompetitionName: item.Name,
			IsWinner:        isWinner,
			Points:          participant.TotalPoints,
			PrizeAmount:     decimal.Zero,
			OccurredAt:      at,
		}
		if isWinner {
			event.PrizeAmount = prize
		}
		out = append(out, event)
	}
	return out
}

func (s *SettlementEngine) notify(ctx context.Context, events []notification.CompetitionCompleted) int {
	if s.notifier == nil {
		return 0
	}
	sent := 0
	for _, event := range events {
		if err := s.notifier.NotifyCompetitionCompleted(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "competition completion notification failed",
				"competition_id", event.CompetitionID,
				"user_id", event.UserID,
				"error", err,
			)
			continue
		}
		sent++
	}
	return sent
}
