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

package stamp

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/timelinize/takeoutstamp/googlephotos"
	"github.com/timelinize/takeoutstamp/media"
	"go.uber.org/zap"
)

// plan is everything decided about a run before any file is touched.
type plan struct {
	records    []*MediaRecord
	routed     []routedFile
	extensions []ExtensionCount

	// names taken in the error area by the routed files
	errorNames UsedNames

	totalFiles       int
	sidecars         int
	missingSidecars  int
	unsupported      int
	orphanSidecars   int
	motionCompanions int
}

// planner builds a plan. Output names, and the error-area names of
// routed files, are assigned here strictly in enumeration order.
type planner struct {
	fsys       fs.FS
	classifier *media.Classifier
	inputDir   string // for display
	outputDir  string
	logger     *zap.Logger

	outputNames UsedNames
	errorNames  UsedNames
	claimed     map[string]bool // sidecars that belong to some file
	extIndex    map[string]int  // extension -> index into plan.extensions
}

func (p *planner) build(ctx context.Context, paths []string) (*plan, error) {
	p.outputNames = make(UsedNames)
	p.errorNames = make(UsedNames)
	p.claimed = make(map[string]bool)
	p.extIndex = make(map[string]int)

	pl := &plan{totalFiles: len(paths)}
	var jsonFiles []string

	for _, fpath := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := path.Base(fpath)
		ext := path.Ext(name)
		class := p.classifier.Classify(ext)
		p.countExtension(pl, ext, class.Supported)

		if isJSON(ext) {
			pl.sidecars++
			jsonFiles = append(jsonFiles, fpath)
			continue
		}

		// files of unsupported types may still have sidecars
		match, hasSidecar := googlephotos.MatchSidecar(p.fsys, fpath)
		if hasSidecar {
			p.claimed[match.Path] = true
		}

		if !class.Supported {
			pl.unsupported++
			rf := routedFile{
				FSPath: fpath,
				Reason: routeUnsupported,
			}
			if hasSidecar {
				rf.SidecarPath = match.Path
				rf.ErrorFileName, rf.ErrorSidecarName = p.errorNames.ClaimWithSidecar(name)
			} else {
				rf.ErrorFileName = p.errorNames.Claim(name)
			}
			pl.routed = append(pl.routed, rf)
			continue
		}

		rec := &MediaRecord{
			Index:                    len(pl.records),
			SourcePath:               p.displayPath(fpath),
			FSPath:                   fpath,
			FileName:                 name,
			Extension:                ext,
			IsSupportedMedia:         true,
			SupportsEmbeddedMetadata: class.EmbeddedMetadata,
			SidecarPath:              match.Path,
			SidecarExists:            hasSidecar,
			SidecarRule:              match.Rule,
			OutputFileName:           p.outputNames.Claim(name),
			MotionCompanion:          media.IsSidecarVideo(p.fsys, fpath),
		}
		rec.OutputPath = filepath.Join(p.outputDir, rec.OutputFileName)

		if !hasSidecar {
			pl.missingSidecars++
			pl.routed = append(pl.routed, routedFile{
				FSPath:        fpath,
				ErrorFileName: p.errorNames.Claim(name),
				Reason:        routeMissingSidecar,
			})
		}
		if rec.MotionCompanion {
			pl.motionCompanions++
		}

		p.logger.Debug("planned file",
			zap.Int("index", rec.Index),
			zap.String("source", rec.SourcePath),
			zap.String("sidecar", rec.SidecarPath),
			zap.String("sidecar_rule", rec.SidecarRule),
			zap.String("output", rec.OutputFileName),
			zap.Bool("embedded_metadata", rec.SupportsEmbeddedMetadata))

		pl.records = append(pl.records, rec)
	}

	// sidecars of media items that aren't in the export
	for _, fpath := range jsonFiles {
		if p.claimed[fpath] {
			continue
		}
		data, err := fs.ReadFile(p.fsys, fpath)
		if err != nil {
			p.logger.Error("could not read unclaimed JSON file", zap.String("filepath", fpath), zap.Error(err))
			continue
		}
		if !googlephotos.IsItemSidecar(data) {
			continue // album metadata and the like
		}
		pl.orphanSidecars++
		pl.routed = append(pl.routed, routedFile{
			FSPath:        fpath,
			ErrorFileName: p.errorNames.Claim(path.Base(fpath)),
			Reason:        routeOrphanSidecar,
		})
	}

	pl.errorNames = p.errorNames
	return pl, nil
}

func (p *planner) countExtension(pl *plan, ext string, supported bool) {
	ext = media.NormalizeExt(ext)
	if i, ok := p.extIndex[ext]; ok {
		pl.extensions[i].Count++
		return
	}
	p.extIndex[ext] = len(pl.extensions)
	pl.extensions = append(pl.extensions, ExtensionCount{Extension: ext, Count: 1, Supported: supported})
}

func (p *planner) displayPath(fpath string) string {
	return filepath.Join(p.inputDir, filepath.FromSlash(fpath))
}

func isJSON(ext string) bool {
	return media.NormalizeExt(ext) == ".json"
}
