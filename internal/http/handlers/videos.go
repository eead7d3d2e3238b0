package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"creationhub/internal/domain"
	"creationhub/internal/middleware"
	"creationhub/internal/providers/video"
	"creationhub/internal/statuscache"
)

type videoGenerateRequest struct {
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration"`
	Platform string `json:"platform"`
	Format   string `json:"format"`
	ImageURL string `json:"imageUrl"`
}

type videoSubmitResponse struct {
	VideoID string `json:"videoId"`
	TaskID  string `json:"taskId"`
}

type videoStatusResponse struct {
	VideoID      string `json:"videoId"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	VideoURL     string `json:"videoUrl,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	RawStatus    string `json:"rawStatus,omitempty"`
}

// VideoGenerate submits one generation task to the vendor and records
// the job. The client is expected to poll VideoStatus afterwards.
func (a *App) VideoGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req videoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := domain.ValidatePrompt(req.Prompt); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_prompt", err.Error())
		return
	}

	taskID, err := a.Video.StartGeneration(r.Context(), video.StartRequest{
		Prompt:   req.Prompt,
		Duration: req.Duration,
		Platform: req.Platform,
		Format:   req.Format,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		a.recordVideoUsage(r, userID, false)
		a.error(w, http.StatusBadGateway, "provider_error", err.Error())
		return
	}

	job := &domain.GenerationJob{
		ID:             uuid.NewString(),
		ExternalTaskID: taskID,
		UserID:         userID,
		Prompt:         req.Prompt,
		Duration:       req.Duration,
		Platform:       req.Platform,
		Format:         req.Format,
		Status:         domain.JobStatusGenerating,
		Progress:       0,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to record job")
		return
	}
	if a.Status != nil {
		if err := a.Status.Set(r.Context(), job.ID, statuscache.Snapshot{Status: domain.JobStatusGenerating}); err != nil && a.Logger != nil {
			a.Logger.Warn().Err(err).Str("job_id", job.ID).Msg("seed status snapshot")
		}
	}
	a.recordVideoUsage(r, userID, true)
	a.json(w, http.StatusAccepted, videoSubmitResponse{VideoID: job.ID, TaskID: taskID})
}

// VideoStatus reports the current state of one job. The vendor read is
// authoritative while the job is live; the cached snapshot only answers
// when the vendor is unreachable, so progress never freezes on a stale
// entry.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := r.URL.Query().Get("videoId")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "videoId required")
		return
	}

	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil || job.UserID != userID {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if job.Status.Terminal() {
		a.json(w, http.StatusOK, jobToResponse(job, ""))
		return
	}

	res, err := a.Video.TaskStatus(r.Context(), job.ExternalTaskID)
	if err != nil {
		if a.Status != nil {
			if snap, cerr := a.Status.Get(r.Context(), jobID); cerr == nil {
				a.json(w, http.StatusOK, videoStatusResponse{
					VideoID:      jobID,
					Status:       string(snap.Status),
					Progress:     snap.Progress,
					VideoURL:     snap.ResultURL,
					ErrorMessage: snap.ErrorMessage,
				})
				return
			}
		}
		// no snapshot either: answer with the last persisted state
		a.json(w, http.StatusOK, jobToResponse(job, ""))
		return
	}
	a.applyStatus(r, job, res)
	a.json(w, http.StatusOK, jobToResponse(job, res.RawStatus))
}

// VideoCancel aborts a running job. Cancelling an unknown or already
// terminal job succeeds silently.
func (a *App) VideoCancel(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := r.URL.Query().Get("videoId")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "videoId required")
		return
	}

	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil || job.UserID != userID || job.Status.Terminal() {
		a.json(w, http.StatusOK, map[string]string{"status": "cancelled"})
		return
	}

	if err := a.Jobs.UpdateStatus(r.Context(), jobID, domain.JobStatusCancelled, 0, "", ""); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to cancel job")
		return
	}
	if a.Status != nil {
		if err := a.Status.Delete(r.Context(), jobID); err != nil && a.Logger != nil {
			a.Logger.Warn().Err(err).Str("job_id", jobID).Msg("drop status snapshot")
		}
	}
	a.json(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// applyStatus folds a vendor status result into the stored job. Unknown
// vendor states leave the job generating rather than guessing.
func (a *App) applyStatus(r *http.Request, job *domain.GenerationJob, res *video.StatusResult) {
	switch res.State {
	case domain.StateCompleted:
		job.Status = domain.JobStatusCompleted
		job.Progress = 100
		job.ResultURL = res.VideoURL
		job.ErrorMessage = ""
	case domain.StateFailed:
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = res.ErrorMessage
		if job.ErrorMessage == "" {
			job.ErrorMessage = "generation failed"
		}
		job.ResultURL = ""
	case domain.StateInProgress:
		if res.Progress != nil {
			job.Progress = *res.Progress
		}
	case domain.StateUnknown:
		if a.Logger != nil {
			a.Logger.Warn().Str("job_id", job.ID).Str("raw_status", res.RawStatus).Msg("unknown vendor status")
		}
		return
	}

	if err := a.Jobs.UpdateStatus(r.Context(), job.ID, job.Status, job.Progress, job.ResultURL, job.ErrorMessage); err != nil && a.Logger != nil {
		a.Logger.Warn().Err(err).Str("job_id", job.ID).Msg("persist status")
	}
	if a.Status != nil {
		snap := statuscache.Snapshot{
			Status:       job.Status,
			Progress:     job.Progress,
			ResultURL:    job.ResultURL,
			ErrorMessage: job.ErrorMessage,
		}
		if err := a.Status.Set(r.Context(), job.ID, snap); err != nil && a.Logger != nil {
			a.Logger.Warn().Err(err).Str("job_id", job.ID).Msg("refresh status snapshot")
		}
	}
}

func (a *App) recordVideoUsage(r *http.Request, userID string, success bool) {
	if a.Analytics == nil {
		return
	}
	event := domain.UsageEvent{
		UserID:      userID,
		Kind:        domain.UsageKindVideoGenerate,
		Success:     success,
		CountryCode: middleware.CountryFromContext(r.Context()),
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.Analytics.RecordEvent(r.Context(), event); err != nil && a.Logger != nil {
		a.Logger.Warn().Err(err).Msg("record usage event")
	}
}

func jobToResponse(job *domain.GenerationJob, rawStatus string) videoStatusResponse {
	resp := videoStatusResponse{
		VideoID:  job.ID,
		Status:   string(job.Status),
		Progress: job.Progress,
	}
	switch job.Status {
	case domain.JobStatusCompleted:
		resp.Progress = 100
		resp.VideoURL = job.ResultURL
	case domain.JobStatusFailed:
		resp.ErrorMessage = job.ErrorMessage
	case domain.JobStatusCancelled:
		resp.Progress = 0
	default:
		resp.RawStatus = rawStatus
	}
	return resp
}
