package exchange

import (
	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
)

// MergeRecords reconciles newly decoded records into the existing working
// set. For keys present in both, incoming fields win except protected ones
// (currently PhotoUrl), which carry over from the old record unless the
// incoming record supplies a replacement. New keys are appended. The result
// holds clones only; neither input slice is mutated. Idempotent.
func MergeRecords(existing []*models.InspectionRecord, incoming []*models.InspectionRecord) []*models.InspectionRecord {
	merged := make([]*models.InspectionRecord, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing))

	for _, old := range existing {
		index[old.PanelNo] = len(merged)
		merged = append(merged, old.Clone())
	}

	for _, rec := range incoming {
		next := rec.Clone()
		if at, ok := index[next.PanelNo]; ok {
			if next.PhotoUrl == "" {
				next.PhotoUrl = merged[at].PhotoUrl
			}
			merged[at] = next
		} else {
			index[next.PanelNo] = len(merged)
			merged = append(merged, next)
		}
	}

	return dedupeByPanelNo(merged)
}

// dedupeByPanelNo enforces the one-live-record-per-key invariant: the last
// occurrence in merge order wins, list order follows first appearance.
func dedupeByPanelNo(records []*models.InspectionRecord) []*models.InspectionRecord {
	latest := make(map[string]*models.InspectionRecord, len(records))
	var order []string
	for _, rec := range records {
		if _, seen := latest[rec.PanelNo]; !seen {
			order = append(order, rec.PanelNo)
		}
		latest[rec.PanelNo] = rec
	}
	result := make([]*models.InspectionRecord, 0, len(order))
	for _, key := range order {
		result = append(result, latest[key])
	}
	return result
}

// MergeReports reconciles imported reports into the existing collection.
// Keyed by report id, last-write-wins; a later import with the same id
// replaces the earlier entry rather than adding a duplicate.
func MergeReports(existing []*models.ReportRecord, incoming []*models.ReportRecord) []*models.ReportRecord {
	latest := make(map[string]*models.ReportRecord, len(existing)+len(incoming))
	var order []string
	for _, report := range append(append([]*models.ReportRecord{}, existing...), incoming...) {
		if _, seen := latest[report.ReportId]; !seen {
			order = append(order, report.ReportId)
		}
		latest[report.ReportId] = report
	}
	result := make([]*models.ReportRecord, 0, len(order))
	for _, key := range order {
		result = append(result, latest[key])
	}
	return result
}
