package app

import (
	"context"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/backup"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/storage"
)

// Export writes pending changes and packages the stored entries.
func (w *Workspace) Export(ctx context.Context) (backup.Package, error) {
	w.Flush()
	return w.codec.Export(ctx)
}

// Import restores entries from an artifact and reloads the workspace from
// the store. A countdown in progress is left running.
func (w *Workspace) Import(ctx context.Context, text string) (backup.Result, error) {
	w.Flush()
	res, err := w.codec.Import(ctx, text)
	if err != nil {
		return res, err
	}
	if err := w.Load(ctx); err != nil {
		res.Warnings = append(res.Warnings, "reload: "+err.Error())
	}
	return res, nil
}

func (w *Workspace) Footprint(ctx context.Context) (storage.Footprint, error) {
	w.Flush()
	return w.codec.Footprint(ctx)
}
