package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"handwrite/handwriteapi"
	"handwrite/session"
)

// PreviewRunes is the length of the stored text preview.
const PreviewRunes = 80

// HistoryRecorder stores session attempts in the repository.
type HistoryRecorder struct {
	repo *Repository
}

// NewHistoryRecorder wraps repo as a session.Recorder.
func NewHistoryRecorder(repo *Repository) *HistoryRecorder {
	return &HistoryRecorder{repo: repo}
}

// RecordAttempt implements session.Recorder.
func (h *HistoryRecorder) RecordAttempt(ctx context.Context, a session.Attempt) error {
	rec, err := RecordFromAttempt(a)
	if err != nil {
		return err
	}
	_, err = h.repo.InsertGeneration(ctx, rec)
	return err
}

// RecordFromAttempt converts an attempt into a row. The params are stored in
// the wire shape that was sent to the service.
func RecordFromAttempt(a session.Attempt) (GenerationRecord, error) {
	params, err := json.Marshal(handwriteapi.NewGenerateRequest(a.Model).Params)
	if err != nil {
		return GenerationRecord{}, fmt.Errorf("encode params: %w", err)
	}
	return GenerationRecord{
		CorrelationID: a.CorrelationID,
		TextPreview:   Preview(a.Model.Text, PreviewRunes),
		Font:          a.Model.Font,
		PaperX:        a.Model.PaperX,
		PaperY:        a.Model.PaperY,
		Rate:          a.Model.Rate,
		ParamsJSON:    string(params),
		PageCount:     a.PageCount,
		Status:        a.Status,
		ErrorCode:     a.ErrorCode,
		ErrorMessage:  a.ErrorMessage,
		DurationMS:    a.Duration.Milliseconds(),
		CreatedAt:     a.StartedAt,
	}, nil
}

// Preview collapses whitespace in text and cuts it to n runes.
func Preview(text string, n int) string {
	s := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
