package competition

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the precision used for every credited amount.
const MoneyPlaces = 2

var (
	ErrInvalidPrizeInput = errors.New("invalid prize input")
	hundred              = decimal.NewFromInt(100)
)

type PrizeInput struct {
	Type             Type
	EntryFee         decimal.Decimal
	ParticipantCount int
	WinnerCount      int
	FeePercent       decimal.Decimal
	SharingRatio     int
	PeerWinnerShare  decimal.Decimal
}

// PrizeBreakdown satisfies TotalPool = Fee + Distributed + Undistributed + Residue.
type PrizeBreakdown struct {
	TotalPool      decimal.Decimal
	Fee            decimal.Decimal
	NetPool        decimal.Decimal
	PrizePerWinner decimal.Decimal
	Distributed    decimal.Decimal
	// Undistributed is the peer remainder with no defined destination.
	Undistributed decimal.Decimal
	// Residue is what rounding each prize down to cents leaves behind.
	Residue decimal.Decimal
}

func ComputePrizes(in PrizeInput) (PrizeBreakdown, error) {
	if in.ParticipantCount <= 0 {
		return PrizeBreakdown{}, fmt.Errorf("%w: participant count must be > 0", ErrInvalidPrizeInput)
	}
	if in.WinnerCount <= 0 || in.WinnerCount > in.ParticipantCount {
		return PrizeBreakdown{}, fmt.Errorf("%w: winner count %d out of range", ErrInvalidPrizeInput, in.WinnerCount)
	}
	if in.EntryFee.IsNegative() {
		return PrizeBreakdown{}, fmt.Errorf("%w: entry fee must be >= 0", ErrInvalidPrizeInput)
	}
	if in.FeePercent.IsNegative() || in.FeePercent.GreaterThan(hundred) {
		return PrizeBreakdown{}, fmt.Errorf("%w: fee percent must be within 0..100", ErrInvalidPrizeInput)
	}

	out := PrizeBreakdown{}
	out.TotalPool = in.EntryFee.Mul(decimal.NewFromInt(int64(in.ParticipantCount)))
	out.Fee = out.TotalPool.Mul(in.FeePercent).Div(hundred)
	out.NetPool = out.TotalPool.Sub(out.Fee)

	winners := decimal.NewFromInt(int64(in.WinnerCount))
	switch in.Type {
	case TypeTournament:
		out.PrizePerWinner = out.NetPool.Div(winners).RoundDown(MoneyPlaces)
		out.Distributed = out.PrizePerWinner.Mul(winners)
		out.Undistributed = decimal.Zero
	case TypePeer:
		if in.WinnerCount != 1 {
			return PrizeBreakdown{}, fmt.Errorf("%w: peer must have exactly one winner, got %d", ErrInvalidPrizeInput, in.WinnerCount)
		}
		if in.SharingRatio == 1 {
			out.PrizePerWinner = out.NetPool.RoundDown(MoneyPlaces)
			out.Undistributed = decimal.Zero
		} else {
			if in.PeerWinnerShare.LessThanOrEqual(decimal.Zero) || in.PeerWinnerShare.GreaterThan(decimal.NewFromInt(1)) {
				return PrizeBreakdown{}, fmt.Errorf("%w: peer winner share must be within (0, 1]", ErrInvalidPrizeInput)
			}
			share := out.NetPool.Mul(in.PeerWinnerShare)
			out.PrizePerWinner = share.RoundDown(MoneyPlaces)
			out.Undistributed = out.NetPool.Sub(share)
		}
		out.Distributed = out.PrizePerWinner
	default:
		return PrizeBreakdown{}, fmt.Errorf("%w: unknown competition type %q", ErrInvalidPrizeInput, in.Type)
	}

	out.Residue = out.NetPool.Sub(out.Distributed).Sub(out.Undistributed)
	return out, nil
}
