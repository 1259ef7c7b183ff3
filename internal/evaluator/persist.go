package evaluator

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/logger"
	"github.com/spigell/jobstir/internal/storage"
)

// persist hands the result to the sink in the background. The save outlives
// the request context and is bounded by the persist timeout only.
func (e *Evaluator) persist(ctx context.Context, req Request, res *Result) {
	if e.sink == nil {
		return
	}

	rec, err := storage.NewRecord(res)
	if err != nil {
		e.logger.Warn("persisting evaluation failed", zap.String(logger.FieldCacheKey, res.CacheKey), zap.Error(err))
		return
	}
	rec.CacheKey = res.CacheKey
	rec.ResumeText = req.ResumeText
	rec.JobDescription = req.JobDescription
	rec.TotalScore = res.Total
	rec.Summary = res.Summary
	rec.EvaluatedAt = res.EvaluatedAt

	e.closeMu.Lock()
	if e.closed {
		e.closeMu.Unlock()
		e.logger.Warn("evaluator is closed, evaluation is not persisted", zap.String(logger.FieldCacheKey, res.CacheKey))
		return
	}
	e.persisting.Add(1)
	e.closeMu.Unlock()

	go func() {
		defer e.persisting.Done()

		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.PersistTimeout)
		defer cancel()

		if err := e.sink.Save(saveCtx, rec); err != nil {
			e.logger.Warn("persisting evaluation failed",
				zap.String(logger.FieldRecordID, rec.ID),
				zap.String(logger.FieldCacheKey, rec.CacheKey),
				zap.Error(err),
			)
			return
		}

		e.logger.Debug("evaluation persisted", zap.String(logger.FieldRecordID, rec.ID))
	}()
}

// Close waits for background saves and closes the sink. Evaluations finished
// after Close are not persisted. Repeated calls do nothing.
func (e *Evaluator) Close() error {
	e.closeMu.Lock()
	if e.closed {
		e.closeMu.Unlock()
		return nil
	}
	e.closed = true
	e.closeMu.Unlock()

	e.persisting.Wait()
	if e.sink == nil {
		return nil
	}
	return e.sink.Close()
}
