package http

import (
	"time"

	"github.com/MKhiriev/go-sync-keeper/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

type changeCounts struct {
	FullPass  bool `json:"full_pass"`
	Added     int  `json:"added"`
	Modified  int  `json:"modified"`
	Deleted   int  `json:"deleted"`
	Unchanged int  `json:"unchanged"`
}

type failureResponse struct {
	ObjectType models.ObjectType `json:"object_type"`
	ID         models.ItemID     `json:"id"`
	Kind       string            `json:"kind"`
	Error      string            `json:"error"`
}

type reportResponse struct {
	SessionID  string                             `json:"session_id"`
	MemberID   string                             `json:"member_id"`
	StartedAt  time.Time                          `json:"started_at"`
	FinishedAt time.Time                          `json:"finished_at"`
	Committed  bool                               `json:"committed"`
	Changes    map[models.ObjectType]changeCounts `json:"changes"`
	Applied    int                                `json:"applied"`
	Failed     []failureResponse                  `json:"failed,omitempty"`
}

type statusResponse struct {
	Running       bool            `json:"running"`
	Sessions      int             `json:"sessions"`
	Failures      int             `json:"failures"`
	LastError     string          `json:"last_error,omitempty"`
	LastSuccessAt *time.Time      `json:"last_success_at,omitempty"`
	LastReport    *reportResponse `json:"last_report,omitempty"`
}

type syncResponse struct {
	Report reportResponse `json:"report"`
	Error  string         `json:"error,omitempty"`
}

func newReportResponse(report models.SessionReport) reportResponse {
	resp := reportResponse{
		SessionID:  report.SessionID,
		MemberID:   report.MemberID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Committed:  report.Committed,
		Changes:    make(map[models.ObjectType]changeCounts, len(report.ChangeSets)),
		Applied:    len(report.Commit.Applied),
	}

	for _, set := range report.ChangeSets {
		if set.ObjectType == "" {
			continue
		}
		resp.Changes[set.ObjectType] = changeCounts{
			FullPass:  set.FullPass,
			Added:     set.Count(models.Added),
			Modified:  set.Count(models.Modified),
			Deleted:   set.Count(models.Deleted),
			Unchanged: set.Count(models.Unchanged),
		}
	}

	for _, f := range report.Commit.Failed {
		failure := failureResponse{
			ObjectType: f.Change.ObjectType,
			ID:         f.Change.ID,
			Kind:       f.Change.Kind.String(),
		}
		if f.Err != nil {
			failure.Error = f.Err.Error()
		}
		resp.Failed = append(resp.Failed, failure)
	}

	return resp
}

func newStatusResponse(status models.SyncStatus) statusResponse {
	resp := statusResponse{
		Running:   status.Running,
		Sessions:  status.Sessions,
		Failures:  status.Failures,
		LastError: status.LastError,
	}
	if !status.LastSuccessAt.IsZero() {
		at := status.LastSuccessAt
		resp.LastSuccessAt = &at
	}
	if status.LastReport != nil {
		report := newReportResponse(*status.LastReport)
		resp.LastReport = &report
	}
	return resp
}
