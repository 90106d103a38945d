package submit_draft

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts"
	draftModels "github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
)

type fakeManager struct {
	booking *domain.Booking
	draft   *draftModels.DraftResponse
	err     error

	gotDraftID string
	gotDetails domain.ClientDetails
}

func (f *fakeManager) Submit(ctx context.Context, draftID string, details domain.ClientDetails) (*domain.Booking, *draftModels.DraftResponse, error) {
	f.gotDraftID = draftID
	f.gotDetails = details
	return f.booking, f.draft, f.err
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func doSubmit(t *testing.T, manager *fakeManager, body string) *httptest.ResponseRecorder {
	t.Helper()

	handler := NewHandler(manager, noopLogger{})
	router := mux.NewRouter()
	router.HandleFunc("/drafts/{draftId}/submit", handler.Handle).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/drafts/d-1/submit", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitDraftCreated(t *testing.T) {
	manager := &fakeManager{
		booking: &domain.Booking{
			ID:         100,
			StaffID:    7,
			Date:       time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
			StartTime:  "10:00",
			EndTime:    "11:00",
			Status:     domain.StatusPending,
			ClientName: "Диляра",
		},
		draft: &draftModels.DraftResponse{DraftID: "d-1"},
	}

	rec := doSubmit(t, manager, `{"clientName":"Диляра","clientPhone":"+998901234567"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "d-1", manager.gotDraftID)
	assert.Equal(t, "Диляра", manager.gotDetails.Name)
	require.NotNil(t, manager.gotDetails.Phone)
	assert.Equal(t, "+998901234567", *manager.gotDetails.Phone)

	var response SubmitDraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotNil(t, response.Booking)
	assert.Equal(t, int64(100), response.Booking.ID)
}

func TestSubmitDraftInvalidBody(t *testing.T) {
	rec := doSubmit(t, &fakeManager{}, `{"clientName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitDraftNotFound(t *testing.T) {
	rec := doSubmit(t, &fakeManager{err: drafts.ErrDraftNotFound}, `{"clientName":"Диляра"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitDraftMissingClientName(t *testing.T) {
	rec := doSubmit(t, &fakeManager{err: drafts.ErrInvalidInput}, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitDraftNoSelection(t *testing.T) {
	rec := doSubmit(t, &fakeManager{err: reconciler.ErrNoSelection}, `{"clientName":"Диляра"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitDraftSlotTakenReturnsDraftState(t *testing.T) {
	manager := &fakeManager{
		err:   reconciler.ErrSlotNoLongerAvailable,
		draft: &draftModels.DraftResponse{DraftID: "d-1", Notice: string(domain.NoticeSelectionInvalidated)},
	}

	rec := doSubmit(t, manager, `{"clientName":"Диляра"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var response ConflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Error)
	require.NotNil(t, response.Draft, "конфликт должен вернуть состояние черновика для повторного выбора")
	assert.Equal(t, "d-1", response.Draft.DraftID)
}

func TestSubmitDraftScopeChanged(t *testing.T) {
	rec := doSubmit(t, &fakeManager{err: reconciler.ErrScopeChanged}, `{"clientName":"Диляра"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitDraftAvailabilityFetchFailed(t *testing.T) {
	rec := doSubmit(t, &fakeManager{err: reconciler.ErrAvailabilityFetchFailed}, `{"clientName":"Диляра"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSubmitDraftStoreUnavailable(t *testing.T) {
	rec := doSubmit(t, &fakeManager{err: reconciler.ErrStoreUnavailable}, `{"clientName":"Диляра"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
