package incidentdelivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"
	"github.com/go-petr/swift-ledger/pkg/web"
)

func newServer(q Queue) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewHandler(q)

	server := gin.New()
	server.GET("/incidents", h.List)
	server.DELETE("/incidents/:id", h.Ack)

	return server
}

func TestList(t *testing.T) {
	inc := domain.Incident{
		ID:              uuid.New(),
		Operation:       domain.OperationTransfer,
		Stage:           domain.StageSaveTarget,
		SourceAccountID: 1,
		TargetAccountID: 2,
		Amount:          decimal.NewFromInt(200),
		Cause:           "connection reset",
		CreatedAt:       time.Now().UTC(),
	}

	t.Run("OK", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		q := NewMockQueue(ctrl)
		q.EXPECT().Pending(gomock.Any()).Times(1).Return([]domain.Incident{inc}, nil)

		req, err := http.NewRequest(http.MethodGet, "/incidents", nil)
		require.NoError(t, err)

		recorder := httptest.NewRecorder()
		newServer(q).ServeHTTP(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var got response
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
		require.Len(t, got.Data.Incidents, 1)
		require.Equal(t, inc.ID, got.Data.Incidents[0].ID)
		require.Equal(t, domain.StageSaveTarget, got.Data.Incidents[0].Stage)
	})

	t.Run("ErrInternal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		q := NewMockQueue(ctrl)
		q.EXPECT().Pending(gomock.Any()).Times(1).Return(nil, errorspkg.ErrInternal)

		req, err := http.NewRequest(http.MethodGet, "/incidents", nil)
		require.NoError(t, err)

		recorder := httptest.NewRecorder()
		newServer(q).ServeHTTP(recorder, req)

		require.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}

func TestAck(t *testing.T) {
	id := uuid.New()

	testCases := []struct {
		name           string
		path           string
		buildStubs     func(q *MockQueue)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			path: "/incidents/" + id.String(),
			buildStubs: func(q *MockQueue) {
				q.EXPECT().Ack(gomock.Any(), gomock.Eq(id)).Times(1).Return(nil)
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "ErrIncidentNotFound",
			path: "/incidents/" + id.String(),
			buildStubs: func(q *MockQueue) {
				q.EXPECT().Ack(gomock.Any(), gomock.Eq(id)).Times(1).Return(domain.ErrIncidentNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrIncidentNotFound.Error(),
		},
		{
			name: "InvalidID",
			path: "/incidents/42",
			buildStubs: func(q *MockQueue) {
				q.EXPECT().Ack(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID is invalid",
		},
		{
			name: "ErrInternal",
			path: "/incidents/" + id.String(),
			buildStubs: func(q *MockQueue) {
				q.EXPECT().Ack(gomock.Any(), gomock.Any()).Times(1).Return(errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			q := NewMockQueue(ctrl)
			tc.buildStubs(q)

			req, err := http.NewRequest(http.MethodDelete, tc.path, nil)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			newServer(q).ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantError != "" {
				var res web.Response
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.Equal(t, tc.wantError, res.Error)
			}
		})
	}
}
