package competition

import "context"

// Repository exposes competition reads and live total updates outside of
// settlement.
type Repository interface {
	GetByID(ctx context.Context, ref Ref) (Competition, bool, error)
	ListOpenUnscored(ctx context.Context, competitionType Type) ([]Competition, error)
	// ListOpenUnscoredByFixtures returns open unscored competitions whose
	// squads reference a player-match of any given fixture.
	ListOpenUnscoredByFixtures(ctx context.Context, fixtureIDs []string) ([]Ref, error)
	// ListParticipants returns participants in join order with their slots.
	ListParticipants(ctx context.Context, ref Ref) ([]Participant, error)
	UpdateParticipantTotals(ctx context.Context, ref Ref, totals map[string]int) error
}
