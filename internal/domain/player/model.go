package player

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
)

// Player is a selectable athlete synced from the data provider.
type Player struct {
	ID         string
	ExternalID int64
	TeamID     string
	Name       string
	Position   playerstat.Position
	IsActive   bool
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if p.ExternalID <= 0 {
		return fmt.Errorf("player external id must be greater than zero")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	switch p.Position {
	case playerstat.PositionGoalkeeper, playerstat.PositionDefender, playerstat.PositionMidfielder, playerstat.PositionForward:
	default:
		return fmt.Errorf("invalid player position: %s", p.Position)
	}

	return nil
}
