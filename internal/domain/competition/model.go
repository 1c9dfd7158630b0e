package competition

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type distinguishes the two competition formats.
type Type string

const (
	TypeTournament Type = "tournament"
	TypePeer       Type = "peer"
)

func ParseType(value string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(value))) {
	case TypeTournament:
		return TypeTournament, nil
	case TypePeer:
		return TypePeer, nil
	default:
		return "", fmt.Errorf("unknown competition type %q", value)
	}
}

func AllTypes() []Type {
	return []Type{TypeTournament, TypePeer}
}

type Status string

const (
	StatusOpen     Status = "open"
	StatusClose    Status = "close"
	StatusFinished Status = "finished"
)

// TerminalStatus is the status a settled competition of this type moves to.
func (t Type) TerminalStatus() Status {
	if t == TypePeer {
		return StatusFinished
	}
	return StatusClose
}

// Competition is a tournament or a peer contest.
type Competition struct {
	ID                string
	Type              Type
	Name              string
	EntryFee          decimal.Decimal
	Status            Status
	ScoringCalculated bool
	WinnerUserID      string
	// SharingRatio applies to peers only; 1 means winner takes all.
	SharingRatio int
	StartsAt     time.Time
	SettledAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Settleable reports whether the settlement precondition holds.
func (c Competition) Settleable() bool {
	return c.Status == StatusOpen && !c.ScoringCalculated
}

// Participant is a user entered into a competition.
type Participant struct {
	ID            string
	CompetitionID string
	UserID        string
	TotalPoints   int
	IsWinner      bool
	JoinedAt      time.Time
	Slots         []SquadSlot
}

// SquadSlot is one star tier of a participant's squad.
type SquadSlot struct {
	ID                string
	ParticipantID     string
	StarRating        int
	MainPlayerID      string
	SubPlayerID       string
	MainPlayerMatchID string
	SubPlayerMatchID  string
}

// Ref points at one competition of a given type.
type Ref struct {
	Type Type
	ID   string
}

func (r Ref) String() string {
	return string(r.Type) + ":" + r.ID
}

// PlayerMatchIDs returns the distinct main and substitute player-match ids
// referenced by all participants.
func PlayerMatchIDs(participants []Participant) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(participants)*SlotsPerSquad*2)
	for _, participant := range participants {
		for _, slot := range participant.Slots {
			for _, id := range []string{slot.MainPlayerMatchID, slot.SubPlayerMatchID} {
				if id == "" {
					continue
				}
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}
