/*
	Timelinize
	Copyright (c) 2013 Matthew Holt

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package stamp copies the media files of a Google Photos Takeout export
// into a flat output directory and repairs their timestamps from the JSON
// sidecars that Google exports alongside them.
package stamp

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mholt/archives"
	"github.com/timelinize/takeoutstamp/media"
	"go.uber.org/zap"
)

// Run processes the input described by cfg: it checks the directories,
// lists the input, plans every file, places the files that can't be
// processed in the error directory, and reconciles the rest into the
// output directory using codec.
//
// The returned Summary is non-nil once planning has succeeded, even if
// the run later fails or is canceled. Errors are ErrPrecondition,
// ErrEnumeration, ErrCopy, ErrRename, ErrModTime, or context errors.
func Run(ctx context.Context, cfg Config, codec MetadataCodec) (*Summary, error) {
	runID := uuid.New().String()
	logger := Log.Named("pipeline").With(zap.String("run_id", runID))

	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	classifier, err := media.NewClassifier(cfg.MediaTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	// everything is checked before anything is listed
	if err := prepareDirectories(cfg.InputDir, cfg.OutputDir, cfg.ErrorDir); err != nil {
		return nil, err
	}
	fsys, err := openInput(ctx, cfg.InputDir)
	if err != nil {
		return nil, err
	}

	logger.Info("finding files", zap.String("input", cfg.InputDir))
	paths, err := enumerate(ctx, logger, fsys, skipDirs(cfg))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: the input directory is empty, so there is no work to do; check that it contains all of the Takeout data and that any archives have been extracted", ErrPrecondition)
	}

	pln := &planner{
		fsys:       fsys,
		classifier: classifier,
		inputDir:   cfg.InputDir,
		outputDir:  cfg.OutputDir,
		logger:     logger,
	}
	pl, err := pln.build(ctx, paths)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:            runID,
		TotalFiles:       pl.totalFiles,
		Extensions:       pl.extensions,
		MediaFiles:       len(pl.records),
		Sidecars:         pl.sidecars,
		MissingSidecars:  pl.missingSidecars,
		Unsupported:      pl.unsupported,
		OrphanSidecars:   pl.orphanSidecars,
		MotionCompanions: pl.motionCompanions,
	}
	logger.Info("scan complete",
		zap.Int("total_files", pl.totalFiles),
		zap.Int("media_files", len(pl.records)),
		zap.Int("sidecars", pl.sidecars),
		zap.Int("missing_sidecars", pl.missingSidecars),
		zap.Int("unsupported", pl.unsupported),
		zap.Int("orphan_sidecars", pl.orphanSidecars))

	// files that can't be reconciled go to the error area as they are
	for _, rf := range pl.routed {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := routeToErrorArea(fsys, cfg, rf); err != nil {
			return summary, err
		}
		logger.Info("placed file in error directory",
			zap.String("source", rf.FSPath),
			zap.String("error_file", rf.ErrorFileName),
			zap.String("reason", string(rf.Reason)))
		summary.addRouted()
	}

	rc := &Reconciler{
		FS:           fsys,
		ErrorDir:     cfg.ErrorDir,
		Codec:        codec,
		WriteGeo:     cfg.WriteGeo,
		VerifyCopies: cfg.VerifyCopies,
		Logger:       Log.Named("reconciler").With(zap.String("run_id", runID)),
		errorArea:    &errorArea{names: pl.errorNames},
	}
	if err := reconcileAll(ctx, logger, rc, pl.records, cfg.Workers, summary); err != nil {
		summary.finish()
		return summary, err
	}

	summary.finish()
	return summary, nil
}

// reconcileAll drives rc over records, in order if workers is 1. The
// first fatal error stops the run; records already started are finished.
func reconcileAll(ctx context.Context, logger *zap.Logger, rc *Reconciler, records []*MediaRecord, workers int, summary *Summary) error {
	total := len(records)

	process := func(ctx context.Context, rec *MediaRecord) error {
		logger.Info("processing file",
			zap.Int("number", rec.Index+1),
			zap.Int("total", total),
			zap.String("source", rec.SourcePath),
			zap.String("output", rec.OutputFileName))
		res, err := rc.Reconcile(ctx, rec)
		if err != nil {
			return err
		}
		summary.addResult(res)
		return nil
	}

	if workers <= 1 {
		for _, rec := range records {
			if err := process(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *MediaRecord)
	var firstErr error
	var errMu sync.Mutex

	wg := new(sync.WaitGroup)
	for i := range workers {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			for rec := range jobs {
				if err := process(ctx, rec); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					logger.Debug("worker stopping", zap.Int("worker", workerNum), zap.Error(err))
					cancel()
				}
			}
		}(i)
	}

feed:
	for _, rec := range records {
		select {
		case jobs <- rec:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func routeToErrorArea(fsys fs.FS, cfg Config, rf routedFile) error {
	if err := copyFromFS(fsys, rf.FSPath, filepath.Join(cfg.ErrorDir, rf.ErrorFileName), cfg.VerifyCopies); err != nil {
		return err
	}
	if rf.SidecarPath != "" {
		return copyFromFS(fsys, rf.SidecarPath, filepath.Join(cfg.ErrorDir, rf.ErrorSidecarName), cfg.VerifyCopies)
	}
	return nil
}

// openInput returns the input as a file system. The input may be a
// directory or an archive file such as a Takeout .zip or .tgz.
func openInput(ctx context.Context, input string) (fs.FS, error) {
	fsys, err := archives.FileSystem(ctx, input, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening input %s: %w", ErrPrecondition, input, err)
	}
	info, err := fs.Stat(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: opening input %s: %w", ErrPrecondition, input, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: input %s is neither a directory nor an archive", ErrPrecondition, input)
	}
	return fsys, nil
}

// skipDirs returns the output and error directories as paths relative
// to the input, if they are inside it, so their contents aren't taken
// as input.
func skipDirs(cfg Config) map[string]bool {
	skip := make(map[string]bool)
	info, err := os.Stat(cfg.InputDir)
	if err != nil || !info.IsDir() {
		return skip
	}
	inAbs, err := filepath.Abs(cfg.InputDir)
	if err != nil {
		return skip
	}
	for _, dir := range []string{cfg.OutputDir, cfg.ErrorDir} {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(inAbs, abs)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		skip[filepath.ToSlash(rel)] = true
	}
	return skip
}
