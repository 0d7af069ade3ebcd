package organizer

import (
	"fmt"
	"path/filepath"

	"shuttle/internal/classify"
	"shuttle/internal/textutil"
)

// PlanDestination computes the final library path for sourcePath under root.
//
// Episodes with a known season and episode land in
// "Series/Season NN/Series - SNNENN.ext". Episodes missing either number
// keep their original filename under the bare series directory. Movies go
// into moviesDir as "Title (Year).ext", or "Title.ext" when the year is
// unknown.
func PlanDestination(root, moviesDir, sourcePath string, media classify.Classification) string {
	ext := filepath.Ext(sourcePath)

	if media.Type == classify.TypeEpisode {
		series := textutil.SanitizeFileName(media.Series)
		if media.HasSeasonEpisode() {
			season := fmt.Sprintf("Season %02d", media.Season)
			name := fmt.Sprintf("%s - S%02dE%02d%s", series, media.Season, media.Episode, ext)
			return filepath.Join(root, series, season, name)
		}
		return filepath.Join(root, series, filepath.Base(sourcePath))
	}

	title := textutil.SanitizeFileName(media.Title)
	name := title + ext
	if media.Year > 0 {
		name = fmt.Sprintf("%s (%d)%s", title, media.Year, ext)
	}
	return filepath.Join(root, moviesDir, name)
}
