package utils

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrphanMinAge protects files that were just written but whose post row is
// not committed yet.
const OrphanMinAge = time.Hour

// StartMediaJanitor periodically removes post images that no post references
// any more, e.g. after an edit replaced the image. It stops when ctx is done.
func StartMediaJanitor(ctx context.Context, db *gorm.DB, storage MediaStorage, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := SweepOrphanMedia(db, storage, time.Now().Add(-OrphanMinAge))
				if err != nil {
					Logger.Warn("media janitor sweep failed", zap.Error(err))
					continue
				}
				if removed > 0 {
					Logger.Info("media janitor removed orphaned images", zap.Int("count", removed))
				}
			}
		}
	}()
}

// SweepOrphanMedia deletes files under the post image directory modified
// before cutoff that no post row references. It returns how many it removed.
func SweepOrphanMedia(db *gorm.DB, storage MediaStorage, cutoff time.Time) (int, error) {
	var referenced []string
	if err := db.Table("posts").Where("image <> ''").Pluck("image", &referenced).Error; err != nil {
		return 0, err
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, r := range referenced {
		keep[r] = struct{}{}
	}

	dir := filepath.Join(storage.Root, PostImageDir)
	removed := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := path.Join(PostImageDir, d.Name())
		if _, ok := keep[rel]; ok {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(p); err != nil {
			Logger.Warn("remove orphaned image failed", zap.String("path", p), zap.Error(err))
			return nil
		}
		removed++
		return nil
	})
	return removed, err
}
