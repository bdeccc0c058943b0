package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"chronary-tracker/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ActivitiesExportHeader 导出表头
var ActivitiesExportHeader = []string{
	"Name",
	"Description",
	"Tag",
	"Subtag",
	"Start (UTC)",
	"End (UTC)",
	"Duration (minutes)",
}

// Export GET /activities/export 导出当前用户的activities为xlsx
func (h *ActivitiesHandler) Export(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	activities, err := h.activities.List(r.Context(), userID)
	if err != nil {
		writeCoreError(w, h.logger, err)
		return
	}
	tags, err := h.taxonomy.ListTags(r.Context(), userID)
	if err != nil {
		writeCoreError(w, h.logger, err)
		return
	}
	tagNames := map[string]string{}
	for _, t := range tags {
		tagNames[t.TagID] = t.Name
	}
	subtagNames := map[string]string{}
	for _, t := range tags {
		subtags, err := h.taxonomy.ListSubtagsForTag(r.Context(), userID, t.TagID)
		if err != nil {
			writeCoreError(w, h.logger, err)
			return
		}
		for _, st := range subtags {
			subtagNames[st.SubtagID] = st.Name
		}
	}

	data, err := GenerateActivitiesExport(activities, tagNames, subtagNames, time.Now().UTC())
	if err != nil {
		writeCoreError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="activities.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GenerateActivitiesExport 生成activities导出Excel文件
func GenerateActivitiesExport(activities []*domain.Activity, tagNames, subtagNames map[string]string, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	// Note: don't defer Close() here, WriteTo needs the file open

	sheetName := "Activities"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range ActivitiesExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, a := range activities {
		endStr := ""
		if a.End != nil {
			endStr = a.End.UTC().Format(time.RFC3339)
		}
		values := []any{
			a.Name,
			a.Description,
			tagNames[a.TagID],
			subtagValue(a, subtagNames),
			a.Start.UTC().Format(time.RFC3339),
			endStr,
			a.DurationMinutes(now),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func subtagValue(a *domain.Activity, subtagNames map[string]string) string {
	if a.SubtagID == nil {
		return ""
	}
	return subtagNames[*a.SubtagID]
}
