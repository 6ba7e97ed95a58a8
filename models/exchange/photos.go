package exchange

import (
	"context"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
)

// PruneExportedPhotos clears the site-photo reference of every record whose
// photo was embedded into an exported document, so a photo lives either on
// the record or in the document but never both. Records are cloned; the
// caller's set is untouched.
func PruneExportedPhotos(ctx context.Context, records []*models.InspectionRecord, embedded map[string]bool, store PhotoStore) []*models.InspectionRecord {
	logger := config.GetLogger()

	pruned := make([]*models.InspectionRecord, 0, len(records))
	for _, rec := range records {
		clone := rec.Clone()
		if embedded[clone.PanelNo] && clone.PhotoUrl != "" {
			if store != nil && config.PhotoObjectDelete() {
				if err := store.Delete(ctx, clone.PhotoUrl); err != nil {
					config.LogError(logger, "exchange", "PruneExportedPhotos", "deleting stored photo", clone.PhotoUrl, err)
				}
			}
			clone.PhotoUrl = ""
		}
		pruned = append(pruned, clone)
	}
	return pruned
}
