package competition

import (
	"errors"
	"sort"
)

var ErrNoParticipants = errors.New("competition has no participants")

// RankParticipants returns a copy ordered by total points descending. Equal
// scores keep their original order.
func RankParticipants(participants []Participant) []Participant {
	ranked := append([]Participant(nil), participants...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalPoints > ranked[j].TotalPoints
	})
	return ranked
}

// ResolveWinners marks and returns the winners. Tournaments share the top
// score between every tied participant; peers take the first participant
// with the top score in original order.
func ResolveWinners(participants []Participant, policy Type) ([]Participant, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	ranked := RankParticipants(participants)
	top := ranked[0].TotalPoints

	winners := make([]Participant, 0, 1)
	for _, item := range ranked {
		if item.TotalPoints != top {
			break
		}
		item.IsWinner = true
		winners = append(winners, item)
		if policy == TypePeer {
			break
		}
	}

	return winners, nil
}
