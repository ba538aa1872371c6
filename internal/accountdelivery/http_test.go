package accountdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"
	"github.com/go-petr/swift-ledger/pkg/randompkg"
	"github.com/go-petr/swift-ledger/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("decimal", web.ValidDecimal); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	os.Exit(m.Run())
}

func randomAccount(userID int64) domain.Account {
	balance := randompkg.MoneyAmountBetween(0, 1_000)

	return domain.Account{
		ID:             randompkg.IntBetween(1, 1_000),
		OwnerName:      randompkg.Owner(),
		UserID:         userID,
		Balance:        balance,
		InitialBalance: balance,
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
	}
}

func newServer(service Service) *gin.Engine {
	h := NewHandler(service)

	server := gin.New()
	server.POST("/accounts", h.Create)
	server.GET("/accounts", h.List)
	server.GET("/accounts/total", h.Total)
	server.GET("/accounts/:id", h.Get)
	server.GET("/users/:id/accounts", h.ListForUser)
	server.GET("/users/:id/accounts/others", h.ListExcludingUser)
	server.GET("/users/:id/total", h.TotalForUser)

	return server
}

func decimalEqual() cmp.Option {
	return cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
}

func TestCreate(t *testing.T) {
	account := randomAccount(randompkg.IntBetween(1, 100))

	type requestBody struct {
		OwnerName      string `json:"owner_name"`
		UserID         int64  `json:"user_id"`
		InitialBalance string `json:"initial_balance"`
	}

	validBody := requestBody{
		OwnerName:      account.OwnerName,
		UserID:         account.UserID,
		InitialBalance: account.InitialBalance.String(),
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "OK",
			requestBody: validBody,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Create(gomock.Any(), gomock.Eq(account.OwnerName), gomock.Any(), gomock.Eq(account.UserID)).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InvalidBalance",
			requestBody: requestBody{
				OwnerName:      account.OwnerName,
				UserID:         account.UserID,
				InitialBalance: "lots",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "InitialBalance must be a decimal number with at most 4 decimal places",
		},
		{
			name: "MissingOwner",
			requestBody: requestBody{
				UserID:         account.UserID,
				InitialBalance: "10",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "OwnerName field is required",
		},
		{
			name:        "ErrNegativeInitialBalance",
			requestBody: requestBody{OwnerName: "x", UserID: 1, InitialBalance: "-5"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrNegativeInitialBalance)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrNegativeInitialBalance.Error(),
		},
		{
			name:        "ErrUserNotFound",
			requestBody: validBody,
			buildStubs: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrUserNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrUserNotFound.Error(),
		},
		{
			name:        "InternalServerError",
			requestBody: validBody,
			buildStubs: func(service *MockService) {
				service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
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

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			newServer(service).ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			res := web.Response{
				Data: &struct {
					Account domain.Account `json:"account"`
				}{},
			}
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))

			if tc.wantStatusCode != http.StatusOK {
				require.Equal(t, tc.wantError, res.Error)
				return
			}

			got := res.Data.(*struct {
				Account domain.Account `json:"account"`
			})

			compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
			if diff := cmp.Diff(account, got.Account, compareCreatedAt, decimalEqual()); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGet(t *testing.T) {
	account := randomAccount(1)

	testCases := []struct {
		name           string
		path           string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			path: fmt.Sprintf("/accounts/%d", account.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "InvalidID",
			path: "/accounts/0",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID field is required",
		},
		{
			name: "NonNumericID",
			path: "/accounts/abc",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request",
		},
		{
			name: "ErrAccountNotFound",
			path: fmt.Sprintf("/accounts/%d", account.ID),
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Eq(account.ID)).Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, tc.path, nil)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			newServer(service).ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var res web.Response
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
			require.Equal(t, tc.wantError, res.Error)
		})
	}
}

func TestListAndTotals(t *testing.T) {
	const userID = 4

	mine := []domain.Account{randomAccount(userID), randomAccount(userID)}
	others := []domain.Account{randomAccount(userID + 1)}

	testCases := []struct {
		name       string
		path       string
		buildStubs func(service *MockService)
		wantBody   string
	}{
		{
			name: "List",
			path: "/accounts",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any()).Times(1).Return(append(mine, others...), nil)
				service.EXPECT().Count(gomock.Any()).Times(1).Return(int64(3), nil)
			},
			wantBody: `"count":3`,
		},
		{
			name: "Total",
			path: "/accounts/total",
			buildStubs: func(service *MockService) {
				service.EXPECT().TotalBalance(gomock.Any()).Times(1).Return(decimal.RequireFromString("1234.5"), nil)
			},
			wantBody: `"total":"1234.5"`,
		},
		{
			name: "ForUser",
			path: fmt.Sprintf("/users/%d/accounts", userID),
			buildStubs: func(service *MockService) {
				service.EXPECT().AccountsForUser(gomock.Any(), gomock.Eq(int64(userID))).Times(1).Return(mine, nil)
			},
			wantBody: `"count":2`,
		},
		{
			name: "ExcludingUser",
			path: fmt.Sprintf("/users/%d/accounts/others", userID),
			buildStubs: func(service *MockService) {
				service.EXPECT().AccountsExcludingUser(gomock.Any(), gomock.Eq(int64(userID))).Times(1).Return(others, nil)
			},
			wantBody: `"count":1`,
		},
		{
			name: "TotalForUser",
			path: fmt.Sprintf("/users/%d/total", userID),
			buildStubs: func(service *MockService) {
				service.EXPECT().TotalBalanceForUser(gomock.Any(), gomock.Eq(int64(userID))).Times(1).Return(decimal.Zero, nil)
			},
			wantBody: `"total":"0"`,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, tc.path, nil)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			newServer(service).ServeHTTP(recorder, req)

			require.Equal(t, http.StatusOK, recorder.Code)
			require.Contains(t, recorder.Body.String(), tc.wantBody)
		})
	}
}

func TestListInternalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().List(gomock.Any()).Times(1).Return(nil, errorspkg.ErrInternal)
	service.EXPECT().Count(gomock.Any()).Times(0)

	req, err := http.NewRequest(http.MethodGet, "/accounts", nil)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	newServer(service).ServeHTTP(recorder, req)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}
