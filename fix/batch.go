package fix

import (
	"context"

	"github.com/npillmayer/fontfix/ot"
	"golang.org/x/sync/errgroup"
)

// FamilyJob is one independent unit of batch work: a family plus the saver
// that persists its members. No two jobs may share a font handle.
type FamilyJob struct {
	Name  string
	Fonts []*ot.Font
	Saver Saver
}

// FixFamilies fixes independent families concurrently, each family as a
// whole unit. limit bounds the number of families in flight; a limit < 1
// means no bound. The first fatal family error cancels the batch, but
// families already running complete their save-or-skip decision.
func FixFamilies(ctx context.Context, jobs []FamilyJob, opts Options, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fixFamilyJob(job, opts)
		})
	}
	return g.Wait()
}

func fixFamilyJob(job FamilyJob, opts Options) error {
	tracer().Infof("fixing family %s (%d fonts)", job.Name, len(job.Fonts))
	res, err := FixFamily(job.Fonts, opts)
	for _, msg := range res.Messages {
		tracer().Infof("%s: %s", job.Name, msg)
	}
	if err != nil {
		// already-applied in-memory mutations of other families stay valid;
		// only this family's processing aborts
		return err
	}
	if !res.Changed || job.Saver == nil {
		return nil
	}
	for _, f := range job.Fonts {
		if err := job.Saver.Save(f); err != nil {
			return err
		}
	}
	return nil
}
