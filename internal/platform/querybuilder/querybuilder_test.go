package querybuilder

import (
	"testing"
	"time"
)

func TestSelect_LockedCompetitionRow(t *testing.T) {
	query, args, err := Select("id", "status", "scoring_calculated").
		From("tournaments").
		Where(Eq("public_id", "trn-1"), IsNull("deleted_at")).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT id, status, scoring_calculated FROM tournaments WHERE public_id = $1 AND deleted_at IS NULL FOR UPDATE"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 1 || args[0] != "trn-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelect_IngestionWindow(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	to := from.Add(9 * time.Hour)

	query, args, err := Select("public_id").
		From("fixtures").
		Where(
			Gte("kickoff_at", from),
			Lte("kickoff_at", to),
			InValues("status", []string{"NS", "1H", "HT"}),
			Expr("(home_score IS NULL OR away_score >= ?)", 0),
		).
		OrderBy("kickoff_at ASC", "public_id ASC").
		Limit(50).
		ForUpdateSkipLocked().
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT public_id FROM fixtures WHERE kickoff_at >= $1 AND kickoff_at <= $2 AND status IN ($3, $4, $5) AND (home_score IS NULL OR away_score >= $6) ORDER BY kickoff_at ASC, public_id ASC LIMIT 50 FOR UPDATE SKIP LOCKED"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 6 || args[2] != "NS" || args[5] != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelect_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("player_matches").Where(InValues("public_id", []string{})).ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	if query != "SELECT id FROM player_matches WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelect_EqLiteralIsQuoted(t *testing.T) {
	query, args, err := Select("id").From("peers").Where(EqLiteral("status", "o'pen")).ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	if query != "SELECT id FROM peers WHERE status = 'o''pen'" || len(args) != 0 {
		t.Fatalf("unexpected query %q args %+v", query, args)
	}
}

func TestSelect_Validation(t *testing.T) {
	if _, _, err := Select().From("wallets").ToSQL(); err == nil {
		t.Fatalf("expected error without columns")
	}
	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatalf("expected error without table")
	}
}

func TestInsert_MultiRowWithConflict(t *testing.T) {
	query, args, err := InsertInto("player_match_statistics").
		Columns("player_match_id", "goals").
		Values("pm-1", 1).
		Values("pm-2", 0).
		Suffix("ON CONFLICT (player_match_id) DO UPDATE SET goals = EXCLUDED.goals").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO player_match_statistics (player_match_id, goals) VALUES ($1, $2), ($3, $4) ON CONFLICT (player_match_id) DO UPDATE SET goals = EXCLUDED.goals"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 4 || args[2] != "pm-2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsert_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("wallets").Columns("user_id", "balance").Values("u1").ToSQL()
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestInsertModel(t *testing.T) {
	type walletTxRow struct {
		PublicID string  `db:"public_id"`
		UserID   string  `db:"user_id,omitempty"`
		Note     string  `db:"-"`
		internal string  `db:"internal"`
		Amount   float64 `db:"amount"`
	}

	row := walletTxRow{PublicID: "txn-1", UserID: "u1", Note: "skip", internal: "skip", Amount: 12.5}
	query, args, err := InsertModel("wallet_transactions", &row, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}

	want := "INSERT INTO wallet_transactions (public_id, user_id, amount) VALUES ($1, $2, $3) RETURNING id"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 3 || args[2] != 12.5 {
		t.Fatalf("unexpected args: %+v", args)
	}

	var nilRow *walletTxRow
	if _, _, err := InsertModel("wallet_transactions", nilRow, ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, _, err := InsertModel("wallet_transactions", 42, ""); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
}

func TestUpdate_SetAndExpr(t *testing.T) {
	query, args, err := Update("wallets").
		SetExpr("balance", "balance + ?", "25.00").
		Set("updated_at", "2026-03-01T00:00:00Z").
		SetExpr("version", "version + 1").
		Where(Eq("user_id", "u1")).
		Suffix("RETURNING balance").
		ToSQL()
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	want := "UPDATE wallets SET balance = balance + $1, updated_at = $2, version = version + 1 WHERE user_id = $3 RETURNING balance"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 3 || args[0] != "25.00" || args[2] != "u1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdate_RequiresAssignments(t *testing.T) {
	if _, _, err := Update("wallets").Where(Eq("user_id", "u1")).ToSQL(); err == nil {
		t.Fatalf("expected error without assignments")
	}
}
