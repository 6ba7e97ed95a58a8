package exchange

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"github.com/xuri/excelize/v2"
)

// memoryPhotoStore keeps photo payloads in a map, keyed by fake url.
type memoryPhotoStore struct {
	objects map[string][]byte
}

func newMemoryPhotoStore() *memoryPhotoStore {
	return &memoryPhotoStore{objects: make(map[string][]byte)}
}

func (s *memoryPhotoStore) Save(_ context.Context, name string, extension string, data []byte) (string, error) {
	url := "mem://" + name + extension
	s.objects[url] = append([]byte(nil), data...)
	return url, nil
}

func (s *memoryPhotoStore) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := s.objects[url]
	if !ok {
		return nil, fmt.Errorf("object %q not found", url)
	}
	return data, nil
}

func (s *memoryPhotoStore) Delete(_ context.Context, url string) error {
	delete(s.objects, url)
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func anchorAt(row int, col int) ImageAnchor {
	return ImageAnchor{Top: row, Bottom: row, Left: col, Right: col, Extension: ".png"}
}

func TestBindImageToRowStrict(t *testing.T) {
	anchors := []ImageAnchor{anchorAt(1, 2), anchorAt(2, 3)}

	got := bindImageToRow(anchors, 1, false)
	if got == nil || got.Top != 1 {
		t.Fatalf("strict bind should pick anchor at row 1, got %+v", got)
	}
	got = bindImageToRow(anchors, 2, false)
	if got == nil || got.Top != 2 {
		t.Fatalf("strict bind should pick anchor at row 2, got %+v", got)
	}
	if got := bindImageToRow(anchors, 5, false); got != nil {
		t.Errorf("no anchor at row 5, got %+v", got)
	}
}

func TestBindImageToRowWidenedFallback(t *testing.T) {
	// Anchor drifted one row above the data row and left of the strict band.
	anchors := []ImageAnchor{anchorAt(2, 1)}

	if got := bindImageToRow(anchors, 3, false); got != nil {
		t.Fatalf("strict-only search must not match drifted anchor, got %+v", got)
	}
	got := bindImageToRow(anchors, 3, true)
	if got == nil {
		t.Fatal("widened search should recover the drifted anchor")
	}

	// Two rows off is beyond tolerance even widened.
	if got := bindImageToRow(anchors, 4, true); got != nil {
		t.Errorf("anchor two rows away must not bind, got %+v", got)
	}
}

func TestBindImageToRowAmbiguousStrictUsesWidenedOrder(t *testing.T) {
	// Two anchors inside the strict band of the same row: the strict pass is
	// ambiguous; the widened pass resolves to the later one in sheet order.
	anchors := []ImageAnchor{anchorAt(1, 2), anchorAt(1, 3)}

	if got := bindImageToRow(anchors, 1, false); got != nil {
		t.Fatalf("ambiguous strict match without fallback must yield nil, got %+v", got)
	}
	got := bindImageToRow(anchors, 1, true)
	if got == nil || got.Left != 3 {
		t.Fatalf("later anchor should win, got %+v", got)
	}
}

func photoWorkbook(t *testing.T, img []byte) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if _, err := f.NewSheet("사진"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	headers := []string{"분전반 번호", "사진 종류", "사진"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue("사진", cell, header); err != nil {
			t.Fatalf("SetCellValue: %v", err)
		}
	}
	rows := [][]string{
		{"B-01", "현장"},
		{"B-01", "열화상"},
		{"B-99", "현장"},
	}
	for i, row := range rows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue("사진", cell, value); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}
	for _, cell := range []string{"C2", "C3"} {
		if err := f.AddPictureFromBytes("사진", cell, &excelize.Picture{Extension: ".png", File: img}); err != nil {
			t.Fatalf("AddPictureFromBytes(%s): %v", cell, err)
		}
	}
	return f
}

func TestCollectAnchors(t *testing.T) {
	f := photoWorkbook(t, pngBytes(t))
	defer f.Close()

	anchors, err := collectAnchors(f, "사진")
	if err != nil {
		t.Fatalf("collectAnchors: %v", err)
	}
	if len(anchors) != 2 {
		t.Fatalf("got %d anchors, want 2", len(anchors))
	}
	for _, a := range anchors {
		if a.Left != 2 {
			t.Errorf("anchor column = %d, want 2", a.Left)
		}
		if a.Extension != ".png" || len(a.Data) == 0 {
			t.Errorf("anchor payload: ext=%q len=%d", a.Extension, len(a.Data))
		}
	}
}

func TestBindEmbeddedPhotos(t *testing.T) {
	f := photoWorkbook(t, pngBytes(t))
	defer f.Close()

	rec := board("B-01", "")
	store := newMemoryPhotoStore()
	warnings := bindEmbeddedPhotos(context.Background(), f, []*models.InspectionRecord{rec}, store)

	if rec.PhotoUrl == "" {
		t.Fatal("site photo was not bound")
	}
	if rec.ThermalImage == nil || rec.ThermalImage.ImageUrl == "" {
		t.Fatal("thermal photo was not bound")
	}
	if _, err := store.Fetch(context.Background(), rec.PhotoUrl); err != nil {
		t.Errorf("stored site photo unreadable: %v", err)
	}

	// The B-99 row references a board not in the working set.
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "B-99") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unknown-board warning, got %v", warnings)
	}
}

func TestBindEmbeddedPhotosWithoutStore(t *testing.T) {
	f := photoWorkbook(t, pngBytes(t))
	defer f.Close()

	rec := board("B-01", "")
	warnings := bindEmbeddedPhotos(context.Background(), f, []*models.InspectionRecord{rec}, nil)
	if rec.PhotoUrl != "" {
		t.Error("no store configured, photo must stay unbound")
	}
	if len(warnings) == 0 {
		t.Error("missing store should be reported")
	}
}
