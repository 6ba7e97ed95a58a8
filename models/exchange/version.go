package exchange

import (
	"strings"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"github.com/xuri/excelize/v2"
)

// SupportedFormatVersion is the single workbook format this engine reads and
// writes. Bump it together with any layout change in writer.go.
const SupportedFormatVersion = "2.1"

var formatVersionAliases = []string{"양식 버전", "format version", "버전", "version"}

// ReadDeclaredVersion scans the metadata sheet for a row whose first cell
// names the format version and returns the adjacent cell. Empty string means
// no version declared.
func ReadDeclaredVersion(f *excelize.File) string {
	sheet := findSheet(f, metaSheetAliases)
	if sheet == "" {
		return ""
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ""
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		for _, alias := range formatVersionAliases {
			if headerContains(row[0], alias) {
				return strings.TrimSpace(row[1])
			}
		}
	}
	return ""
}

// checkFormatVersion gates the import on the declared format version.
// A workbook without a metadata sheet or version row is treated as
// compatible. On mismatch the caller-supplied confirm callback decides;
// declining aborts with the working set untouched.
func checkFormatVersion(f *excelize.File, confirm func(found string, supported string) bool) error {
	declared := ReadDeclaredVersion(f)
	if declared == "" || declared == SupportedFormatVersion {
		return nil
	}

	logger := config.GetLogger()
	config.LogWarn(logger, "exchange", "checkFormatVersion", "declared format version differs", map[string]string{
		"declared":  declared,
		"supported": SupportedFormatVersion,
	})

	if confirm != nil && confirm(declared, SupportedFormatVersion) {
		return nil
	}
	return ErrVersionDeclined
}
