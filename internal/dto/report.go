package dto

import (
	"net/url"
	"time"

	"equipment-portal/pkg/types"
)

// ReportQueryDTO - общие параметры отчётов.
type ReportQueryDTO struct {
	From     *time.Time
	To       *time.Time
	BranchID types.ID
	Status   string
}

func (q ReportQueryDTO) Values() url.Values {
	v := url.Values{}
	if q.From != nil {
		v.Set("from", q.From.Format("2006-01-02"))
	}
	if q.To != nil {
		v.Set("to", q.To.Format("2006-01-02"))
	}
	if !q.BranchID.IsZero() {
		v.Set("branchId", q.BranchID.String())
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

type ExportResultDTO struct {
	FileName   string `json:"fileName"`
	ArchiveKey string `json:"archiveKey,omitempty"`
	URL        string `json:"url,omitempty"`
}
