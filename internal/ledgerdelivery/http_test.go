package ledgerdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/swift-ledger/internal/domain"
	"github.com/go-petr/swift-ledger/pkg/errorspkg"
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

type decimalMatcher struct {
	want decimal.Decimal
}

func decimalEq(s string) gomock.Matcher {
	return decimalMatcher{want: decimal.RequireFromString(s)}
}

func (m decimalMatcher) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "is equal to " + m.want.String()
}

func newServer(service Service, checker Checker) *gin.Engine {
	h := NewHandler(service, checker)

	server := gin.New()
	server.POST("/accounts/:id/credit", h.Credit)
	server.POST("/accounts/:id/debit", h.Debit)
	server.POST("/transfers", h.Transfer)
	server.GET("/accounts/:id/reconciliation", h.Reconciliation)

	return server
}

func serve(t *testing.T, server *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, web.Response) {
	t.Helper()

	var payload []byte

	if body != nil {
		var err error

		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, path, bytes.NewReader(payload))
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	var res web.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

	return recorder, res
}

func TestCreditAndDebit(t *testing.T) {
	account := domain.Account{ID: 9, Balance: decimal.NewFromInt(1200), InitialBalance: decimal.NewFromInt(1000)}

	testCases := []struct {
		name           string
		path           string
		body           any
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "CreditOK",
			path: "/accounts/9/credit",
			body: map[string]string{"amount": "200"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Credit(gomock.Any(), gomock.Eq(int64(9)), decimalEq("200")).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "CreditInvalidAmount",
			path: "/accounts/9/credit",
			body: map[string]string{"amount": "0"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Account{}, domain.ErrInvalidAmount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidAmount.Error(),
		},
		{
			name: "CreditMalformedAmount",
			path: "/accounts/9/credit",
			body: map[string]string{"amount": "12,5"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a decimal number with at most 4 decimal places",
		},
		{
			name: "CreditExcessScale",
			path: "/accounts/9/credit",
			body: map[string]string{"amount": "0.00001"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a decimal number with at most 4 decimal places",
		},
		{
			name: "CreditMissingAmount",
			path: "/accounts/9/credit",
			body: map[string]string{},
			buildStubs: func(service *MockService) {
				service.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount field is required",
		},
		{
			name: "CreditErrAccountNotFound",
			path: "/accounts/9/credit",
			body: map[string]string{"amount": "1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name: "CreditErrVersionConflict",
			path: "/accounts/9/credit",
			body: map[string]string{"amount": "1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Account{}, domain.ErrVersionConflict)
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrVersionConflict.Error(),
		},
		{
			name: "DebitOK",
			path: "/accounts/9/debit",
			body: map[string]string{"amount": "0.5"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Debit(gomock.Any(), gomock.Eq(int64(9)), decimalEq("0.5")).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "DebitErrInsufficientFunds",
			path: "/accounts/9/debit",
			body: map[string]string{"amount": "5000"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Debit(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.Account{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
		{
			name: "DebitInvalidID",
			path: "/accounts/-1/debit",
			body: map[string]string{"amount": "1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Debit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID must be at least 1",
		},
		{
			name: "DebitInternalError",
			path: "/accounts/9/debit",
			body: map[string]string{"amount": "1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Debit(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
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

			recorder, res := serve(t, newServer(service, NewMockChecker(ctrl)), http.MethodPost, tc.path, tc.body)

			require.Equal(t, tc.wantStatusCode, recorder.Code)
			require.Equal(t, tc.wantError, res.Error)

			if tc.wantStatusCode == http.StatusOK {
				require.Contains(t, recorder.Body.String(), `"balance":"1200"`)
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	type requestBody struct {
		SourceAccountID int64  `json:"source_account_id"`
		TargetAccountID int64  `json:"target_account_id"`
		Amount          string `json:"amount"`
	}

	valid := requestBody{SourceAccountID: 1, TargetAccountID: 2, Amount: "150"}

	result := domain.TransferResult{
		Source:         domain.Account{ID: 1, Balance: decimal.NewFromInt(350)},
		Target:         domain.Account{ID: 2, Balance: decimal.NewFromInt(150)},
		SourceTransfer: domain.Transaction{ID: 1, AccountID: 1, Amount: decimal.NewFromInt(-150), Type: domain.TransactionTransferOut},
		TargetTransfer: domain.Transaction{ID: 2, AccountID: 2, Amount: decimal.NewFromInt(150), Type: domain.TransactionTransferIn},
	}

	testCases := []struct {
		name           string
		body           requestBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: valid,
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Eq(int64(1)), gomock.Eq(int64(2)), decimalEq("150")).
					Times(1).Return(result, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingTarget",
			body: requestBody{SourceAccountID: 1, Amount: "150"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "TargetAccountID field is required",
		},
		{
			name: "ErrSameAccount",
			body: requestBody{SourceAccountID: 1, TargetAccountID: 1, Amount: "150"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.TransferResult{}, domain.ErrSameAccount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrSameAccount.Error(),
		},
		{
			name: "ErrSourceNotFound",
			body: valid,
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.TransferResult{}, domain.ErrSourceNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrSourceNotFound.Error(),
		},
		{
			name: "ErrTargetNotFound",
			body: valid,
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.TransferResult{}, domain.ErrTargetNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrTargetNotFound.Error(),
		},
		{
			name: "ErrInsufficientFunds",
			body: valid,
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.TransferResult{}, domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
		{
			name: "ErrTransferConflict",
			body: valid,
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.TransferResult{}, &domain.TransferError{
						Kind:  domain.ErrTransferConflict,
						Stage: domain.StageSaveSource,
						Cause: domain.ErrVersionConflict,
					})
			},
			wantStatusCode: http.StatusConflict,
			wantError:      domain.ErrTransferConflict.Error(),
		},
		{
			name: "ErrTransferFailed",
			body: valid,
			buildStubs: func(service *MockService) {
				service.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).
					Return(domain.TransferResult{}, &domain.TransferError{
						Kind:            domain.ErrTransferFailed,
						Stage:           domain.StageSaveTarget,
						SourcePersisted: true,
						Cause:           errorspkg.ErrInternal,
					})
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      domain.ErrTransferFailed.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			recorder, res := serve(t, newServer(service, NewMockChecker(ctrl)), http.MethodPost, "/transfers", tc.body)

			require.Equal(t, tc.wantStatusCode, recorder.Code)
			require.Equal(t, tc.wantError, res.Error)

			if tc.wantStatusCode == http.StatusOK {
				require.Contains(t, recorder.Body.String(), `"type":"TRANSFER_OUT"`)
				require.Contains(t, recorder.Body.String(), `"amount":"-150"`)
			}
		})
	}
}

func TestReconciliation(t *testing.T) {
	report := domain.ReconciliationReport{
		AccountID: 3,
		Expected:  decimal.NewFromInt(500),
		Actual:    decimal.NewFromInt(300),
		Drift:     decimal.NewFromInt(-200),
	}

	testCases := []struct {
		name           string
		buildStubs     func(checker *MockChecker)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			buildStubs: func(checker *MockChecker) {
				checker.EXPECT().Check(gomock.Any(), gomock.Eq(int64(3))).Times(1).Return(report, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "ErrAccountNotFound",
			buildStubs: func(checker *MockChecker) {
				checker.EXPECT().Check(gomock.Any(), gomock.Eq(int64(3))).Times(1).
					Return(domain.ReconciliationReport{}, domain.ErrAccountNotFound)
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

			checker := NewMockChecker(ctrl)
			tc.buildStubs(checker)

			recorder, res := serve(t, newServer(NewMockService(ctrl), checker), http.MethodGet, "/accounts/3/reconciliation", nil)

			require.Equal(t, tc.wantStatusCode, recorder.Code)
			require.Equal(t, tc.wantError, res.Error)

			if tc.wantStatusCode == http.StatusOK {
				require.Contains(t, recorder.Body.String(), `"drift":"-200"`)
				require.Contains(t, recorder.Body.String(), `"balanced":false`)
			}
		})
	}
}
