package exchange

import (
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
)

func TestPruneExportedPhotosDeletesStoredObject(t *testing.T) {
	store := newMemoryPhotoStore()
	url, err := store.Save(context.Background(), "B-01", ".png", pngBytes(t))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	records := []*models.InspectionRecord{
		{PanelNo: "B-01", PhotoUrl: url},
		{PanelNo: "B-02", PhotoUrl: "mem://kept.png"},
	}
	embedded := map[string]bool{"B-01": true}

	pruned := PruneExportedPhotos(context.Background(), records, embedded, store)

	if pruned[0].PhotoUrl != "" {
		t.Errorf("embedded record still references %q", pruned[0].PhotoUrl)
	}
	if _, err := store.Fetch(context.Background(), url); err == nil {
		t.Error("stored object survived pruning")
	}
	if pruned[1].PhotoUrl != "mem://kept.png" {
		t.Errorf("non-embedded record photo = %q, want kept", pruned[1].PhotoUrl)
	}
	if records[0].PhotoUrl != url {
		t.Error("caller's record was mutated")
	}
}

func TestPruneExportedPhotosObjectDeleteDisabled(t *testing.T) {
	t.Setenv("PHOTO_OBJECT_DELETE", "false")

	store := newMemoryPhotoStore()
	url, err := store.Save(context.Background(), "B-01", ".png", pngBytes(t))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	records := []*models.InspectionRecord{{PanelNo: "B-01", PhotoUrl: url}}
	pruned := PruneExportedPhotos(context.Background(), records, map[string]bool{"B-01": true}, store)

	if pruned[0].PhotoUrl != "" {
		t.Errorf("record still references %q", pruned[0].PhotoUrl)
	}
	if _, err := store.Fetch(context.Background(), url); err != nil {
		t.Errorf("stored object was deleted with PHOTO_OBJECT_DELETE off: %v", err)
	}
}
