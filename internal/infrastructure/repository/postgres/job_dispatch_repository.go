package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-contest/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
)

type JobDispatchRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db, now: time.Now}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	write, err := newJobDispatchWrite(event, r.now())
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("job_dispatches", write, jobDispatchUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", write.DispatchID, write.Status, err)
	}
	return nil
}

func (r *JobDispatchRepository) GetByDispatchID(ctx context.Context, dispatchID string) (jobscheduler.DispatchEvent, bool, error) {
	query, args, err := qb.Select(jobDispatchColumns...).From("job_dispatches").
		Where(
			qb.Eq("dispatch_id", strings.TrimSpace(dispatchID)),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return jobscheduler.DispatchEvent{}, false, fmt.Errorf("build get job dispatch query: %w", err)
	}

	var row jobDispatchRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return jobscheduler.DispatchEvent{}, false, nil
		}
		return jobscheduler.DispatchEvent{}, false, fmt.Errorf("get job dispatch dispatch_id=%s: %w", dispatchID, err)
	}
	event, err := row.toEvent()
	if err != nil {
		return jobscheduler.DispatchEvent{}, false, err
	}
	return event, true, nil
}
