package apifootball

import (
	"strconv"

	sonic "github.com/bytedance/sonic"
)

// envelope is the common wrapper of every v3 response. errors is an empty
// array on success and an object keyed by field on failure.
type envelope[T any] struct {
	Errors   sonic.NoCopyRawMessage `json:"errors"`
	Results  int                    `json:"results"`
	Response []T                    `json:"response"`
}

type teamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type playerRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Pos    string `json:"pos"`
}

type fixturePlayersItem struct {
	Team    teamRef             `json:"team"`
	Players []fixturePlayerLine `json:"players"`
}

type fixturePlayerLine struct {
	Player     playerRef          `json:"player"`
	Statistics []playerStatsBlock `json:"statistics"`
}

type playerStatsBlock struct {
	Games struct {
		Minutes    *int   `json:"minutes"`
		Number     int    `json:"number"`
		Position   string `json:"position"`
		Rating     string `json:"rating"`
		Captain    bool   `json:"captain"`
		Substitute bool   `json:"substitute"`
	} `json:"games"`
	Shots struct {
		Total *int `json:"total"`
		On    *int `json:"on"`
	} `json:"shots"`
	Goals struct {
		Total    *int `json:"total"`
		Conceded *int `json:"conceded"`
		Assists  *int `json:"assists"`
		Saves    *int `json:"saves"`
	} `json:"goals"`
	Cards struct {
		Yellow *int `json:"yellow"`
		Red    *int `json:"red"`
	} `json:"cards"`
}

type fixtureItem struct {
	Fixture struct {
		ID     int64 `json:"id"`
		Status struct {
			Long    string `json:"long"`
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
}

type lineupItem struct {
	Team        teamRef           `json:"team"`
	Formation   string            `json:"formation"`
	StartXI     []lineupPlayerRow `json:"startXI"`
	Substitutes []lineupPlayerRow `json:"substitutes"`
}

type lineupPlayerRow struct {
	Player playerRef `json:"player"`
}

type injuryItem struct {
	Player struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"player"`
	Team teamRef `json:"team"`
}

// providerErrors flattens the errors field. An empty array or object means
// no error.
func providerErrors(raw sonic.NoCopyRawMessage) map[string]string {
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var out map[string]any
	if err := sonic.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		return nil
	}
	flat := make(map[string]string, len(out))
	for key, value := range out {
		switch v := value.(type) {
		case string:
			flat[key] = v
		case float64:
			flat[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			flat[key] = "unexpected error value"
		}
	}
	return flat
}
