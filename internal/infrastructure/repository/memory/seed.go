package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/player"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	"github.com/riskibarqy/fantasy-contest/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

const (
	FixtureIDPersijaPersib  = "fx-idn-001"
	FixtureIDPersebayaBali  = "fx-idn-002"
	TournamentIDDailyDerby  = "trn-daily-derby"
	PeerIDWeekendShowdown   = "peer-weekend-showdown"
	demoTournamentEntryFee  = "1000"
	demoPeerEntryFee        = "500"
	demoFixtureKickoffShift = 2 * time.Hour
)

// SeedDemo builds a small Liga 1 matchday with one tournament and one peer
// contest, with kickoffs relative to now so the ingestion window picks them up.
func SeedDemo(now time.Time) Seed {
	now = now.UTC()
	fixtures := []fixture.Fixture{
		{
			ID:         FixtureIDPersijaPersib,
			ExternalID: 1208001,
			LeagueName: "Liga 1",
			HomeTeamID: "idn-persija",
			AwayTeamID: "idn-persib",
			StartsAt:   now.Add(-demoFixtureKickoffShift),
			Status:     fixture.StatusSecondHalf,
		},
		{
			ID:         FixtureIDPersebayaBali,
			ExternalID: 1208002,
			LeagueName: "Liga 1",
			HomeTeamID: "idn-persebaya",
			AwayTeamID: "idn-baliutd",
			StartsAt:   now.Add(-demoFixtureKickoffShift + 30*time.Minute),
			Status:     fixture.StatusFirstHalf,
		},
	}

	players := []player.Player{
		{ID: "idn-gk-01", ExternalID: 51001, TeamID: "idn-persija", Name: "Andritany Ardhiyasa", Position: playerstat.PositionGoalkeeper, IsActive: true},
		{ID: "idn-gk-02", ExternalID: 51002, TeamID: "idn-persib", Name: "Teja Paku Alam", Position: playerstat.PositionGoalkeeper, IsActive: true},
		{ID: "idn-def-01", ExternalID: 51003, TeamID: "idn-persija", Name: "Hansamu Yama", Position: playerstat.PositionDefender, IsActive: true},
		{ID: "idn-def-02", ExternalID: 51004, TeamID: "idn-persib", Name: "Nick Kuipers", Position: playerstat.PositionDefender, IsActive: true},
		{ID: "idn-mid-01", ExternalID: 51005, TeamID: "idn-persija", Name: "Maciej Gajos", Position: playerstat.PositionMidfielder, IsActive: true},
		{ID: "idn-mid-02", ExternalID: 51006, TeamID: "idn-persib", Name: "Marc Klok", Position: playerstat.PositionMidfielder, IsActive: true},
		{ID: "idn-fwd-01", ExternalID: 51007, TeamID: "idn-persija", Name: "Gustavo Almeida", Position: playerstat.PositionForward, IsActive: true},
		{ID: "idn-fwd-02", ExternalID: 51008, TeamID: "idn-persib", Name: "David da Silva", Position: playerstat.PositionForward, IsActive: true},
		{ID: "idn-def-03", ExternalID: 51009, TeamID: "idn-persebaya", Name: "Dusan Stevanovic", Position: playerstat.PositionDefender, IsActive: true},
		{ID: "idn-def-04", ExternalID: 51010, TeamID: "idn-baliutd", Name: "Ricky Fajrin", Position: playerstat.PositionDefender, IsActive: true},
		{ID: "idn-mid-03", ExternalID: 51011, TeamID: "idn-persebaya", Name: "Bruno Moreira", Position: playerstat.PositionMidfielder, IsActive: true},
		{ID: "idn-mid-04", ExternalID: 51012, TeamID: "idn-baliutd", Name: "Eber Bessa", Position: playerstat.PositionMidfielder, IsActive: true},
		{ID: "idn-fwd-03", ExternalID: 51013, TeamID: "idn-persebaya", Name: "Paulo Henrique", Position: playerstat.PositionForward, IsActive: true},
		{ID: "idn-mid-05", ExternalID: 51014, TeamID: "idn-baliutd", Name: "Mitsuru Maruoka", Position: playerstat.PositionMidfielder, IsActive: true},
		{ID: "idn-def-05", ExternalID: 51015, TeamID: "idn-persebaya", Name: "Arief Catur", Position: playerstat.PositionDefender, IsActive: true},
		{ID: "idn-gk-03", ExternalID: 51016, TeamID: "idn-baliutd", Name: "Adilson Maringa", Position: playerstat.PositionGoalkeeper, IsActive: true},
	}

	matches := make([]playermatch.PlayerMatch, 0, len(players))
	for i, item := range players {
		fixtureID := FixtureIDPersijaPersib
		if i >= 8 {
			fixtureID = FixtureIDPersebayaBali
		}
		matches = append(matches, playermatch.PlayerMatch{
			ID:        "pm-" + item.ID,
			PlayerID:  item.ID,
			FixtureID: fixtureID,
			CreatedAt: now.Add(-24 * time.Hour),
		})
	}

	tournamentFee := decimal.RequireFromString(demoTournamentEntryFee)
	peerFee := decimal.RequireFromString(demoPeerEntryFee)
	competitions := []competition.Competition{
		{
			ID:        TournamentIDDailyDerby,
			Type:      competition.TypeTournament,
			Name:      "Daily Derby",
			EntryFee:  tournamentFee,
			Status:    competition.StatusOpen,
			StartsAt:  fixtures[0].StartsAt,
			CreatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID:           PeerIDWeekendShowdown,
			Type:         competition.TypePeer,
			Name:         "Weekend Showdown",
			EntryFee:     peerFee,
			Status:       competition.StatusOpen,
			SharingRatio: 1,
			StartsAt:     fixtures[0].StartsAt,
			CreatedAt:    now.Add(-24 * time.Hour),
		},
	}

	participants := []competition.Participant{
		demoParticipant(TournamentIDDailyDerby, "tu-1", "user-andi", matches, 0),
		demoParticipant(TournamentIDDailyDerby, "tu-2", "user-budi", matches, 3),
		demoParticipant(TournamentIDDailyDerby, "tu-3", "user-citra", matches, 6),
		demoParticipant(PeerIDWeekendShowdown, "pu-1", "user-andi", matches, 1),
		demoParticipant(PeerIDWeekendShowdown, "pu-2", "user-dewi", matches, 5),
	}

	wallets := []wallet.Wallet{
		{UserID: "user-andi", Balance: decimal.RequireFromString("2500")},
		{UserID: "user-budi", Balance: decimal.RequireFromString("1000")},
		{UserID: "user-citra", Balance: decimal.RequireFromString("1000")},
		{UserID: "user-dewi", Balance: decimal.RequireFromString("500")},
	}

	return Seed{
		Fixtures:      fixtures,
		Players:       players,
		PlayerMatches: matches,
		Competitions:  competitions,
		Participants:  participants,
		Wallets:       wallets,
	}
}

// demoParticipant picks ten consecutive player-matches starting at offset.
func demoParticipant(competitionID, participantID, userID string, matches []playermatch.PlayerMatch, offset int) competition.Participant {
	slots := make([]competition.SquadSlot, 0, competition.SlotsPerSquad)
	for star := 1; star <= competition.SlotsPerSquad; star++ {
		main := matches[(offset+(star-1)*2)%len(matches)]
		sub := matches[(offset+(star-1)*2+1)%len(matches)]
		slots = append(slots, competition.SquadSlot{
			ID:                fmt.Sprintf("%s-s%d", participantID, star),
			ParticipantID:     participantID,
			StarRating:        star,
			MainPlayerID:      main.PlayerID,
			SubPlayerID:       sub.PlayerID,
			MainPlayerMatchID: main.ID,
			SubPlayerMatchID:  sub.ID,
		})
	}
	return competition.Participant{
		ID:            participantID,
		CompetitionID: competitionID,
		UserID:        userID,
		Slots:         slots,
	}
}
