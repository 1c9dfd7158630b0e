package scoring

import "github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"

// Evaluate converts one statistic row into points. It is pure.
func Evaluate(stat playerstat.PlayerStatistic, rules Rules) Result {
	if !stat.Played() {
		return Result{}
	}

	baseline := stat.GoalsTotal*rules.Goal +
		stat.GoalsAssists*rules.Assist +
		stat.ShotsTotal*rules.ShotsTotal +
		stat.ShotsOnTarget*rules.ShotOnTarget +
		stat.YellowCards*rules.YellowCard +
		stat.RedCards*rules.RedCard
	if stat.ShotsOnGoal != stat.ShotsOnTarget {
		baseline += stat.ShotsOnGoal * rules.ShotOnGoal
	}

	result := Result{Baseline: baseline}
	if stat.Minutes >= rules.CleanSheetMinutes {
		cleanSheet := stat.GoalsConceded == 0
		switch stat.Position {
		case playerstat.PositionGoalkeeper:
			result.BonusEvaluated = true
			result.CleanSheet = cleanSheet
			result.CleanSheetBonus = stat.GoalsSaves * rules.Save
			if cleanSheet {
				result.CleanSheetBonus += rules.CleanSheetGK
			}
		case playerstat.PositionDefender:
			result.BonusEvaluated = true
			result.CleanSheet = cleanSheet
			if cleanSheet {
				result.CleanSheetBonus = rules.CleanSheetDefender
			}
		}
	}

	result.Points = max(0, baseline+result.CleanSheetBonus)
	return result
}

// ComputePoints returns the final points and the clean-sheet bonus part.
func ComputePoints(stat playerstat.PlayerStatistic, rules Rules) (int, int) {
	result := Evaluate(stat, rules)
	return result.Points, result.CleanSheetBonus
}

// ApplyDerived writes total_point and, when evaluated, clean_sheet onto stat.
// It reports whether either cached value changed.
func ApplyDerived(stat *playerstat.PlayerStatistic, rules Rules) bool {
	if stat == nil {
		return false
	}

	result := Evaluate(*stat, rules)
	changed := false

	if stat.TotalPoint == nil || *stat.TotalPoint != result.Points {
		points := result.Points
		stat.TotalPoint = &points
		changed = true
	}
	if result.BonusEvaluated && (stat.CleanSheet == nil || *stat.CleanSheet != result.CleanSheet) {
		cleanSheet := result.CleanSheet
		stat.CleanSheet = &cleanSheet
		changed = true
	}

	return changed
}
