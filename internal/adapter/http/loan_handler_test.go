package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	domainLoan "palmcash-backend/internal/domain/loan"
	"palmcash-backend/internal/notify"
	"palmcash-backend/internal/policy"
	"palmcash-backend/internal/testutil/memstore"
	ucLoan "palmcash-backend/internal/usecase/loan"
	"palmcash-backend/pkg/amortize"
	"palmcash-backend/pkg/clock"
)

// -------- helpers --------

const testProductID = "prd00000000000000000000000000000"

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func setActor(req *stdhttp.Request, id, role string) {
	req.Header.Set("X-Actor-ID", id)
	req.Header.Set("X-Actor-Role", role)
}

func newLoanHandler(t *testing.T) (*memstore.Store, *LoanHandler) {
	t.Helper()
	store := memstore.New()
	repos := store.Repos()
	pol := domainLoan.Policy{
		OfficerApprovalMinGroups: 15,
		DefaultThreshold:         3,
		OverpaymentTolerance:     decimal.RequireFromString("0.50"),
		UpfrontPercent:           decimal.RequireFromString("10"),
		DepositPercent:           decimal.RequireFromString("10"),
	}
	uc := ucLoan.NewUsecase(ucLoan.Deps{
		Loans:     repos.Loans,
		Products:  repos.Products,
		Schedules: repos.Schedules,
		UoW:       store,
		Policy:    policy.NewApprovalPolicy(store, pol.OfficerApprovalMinGroups),
		Config:    pol,
		Clock:     clock.Fixed(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		Sink:      notify.NopSink{},
	})
	store.SeedProduct(&domainLoan.Product{
		ProductID:          testProductID,
		Name:               "Weekly Group Loan",
		RepaymentFrequency: amortize.Weekly,
		InterestRatePct:    decimal.RequireFromString("45"),
		MinAmount:          decimal.RequireFromString("100"),
		MaxAmount:          decimal.RequireFromString("10000"),
		MinTerm:            4,
		MaxTerm:            60,
		IsActive:           true,
	})
	return store, NewLoanHandler(uc)
}

// -------- tests --------

func TestCreateLoan_Success(t *testing.T) {
	e := newEchoWithValidator()
	_, h := newLoanHandler(t)

	reqBody := map[string]any{
		"borrower_id": strings.Repeat("b", 32),
		"product_id":  testProductID,
		"principal":   "5000",
		"term_count":  21,
		"purpose":     "market stall stock",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	setActor(req, strings.Repeat("f", 32), "loan_officer")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var got ucLoan.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.BorrowerID != strings.Repeat("b", 32) || got.ApplicationNumber != "LV-000001" {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.Status != string(domainLoan.StatusDraft) {
		t.Fatalf("status = %s, want draft", got.Status)
	}
	if got.OfficerID != strings.Repeat("f", 32) {
		t.Fatalf("officer = %s, want the posting actor", got.OfficerID)
	}
}

func TestCreateLoan_MissingActor(t *testing.T) {
	e := newEchoWithValidator()
	_, h := newLoanHandler(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(map[string]any{}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateLoan_BindError(t *testing.T) {
	e := newEchoWithValidator()
	_, h := newLoanHandler(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", strings.NewReader(`{"borrower_id":`)) // broken JSON
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	setActor(req, strings.Repeat("f", 32), "loan_officer")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
}

func TestCreateLoan_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	_, h := newLoanHandler(t)

	// invalid: borrower_id not hex32, principal with too many decimals, term below 1
	reqBody := map[string]any{
		"borrower_id": "NOT_HEX_32",
		"product_id":  testProductID,
		"principal":   "5000.001",
		"term_count":  0,
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	setActor(req, strings.Repeat("f", 32), "loan_officer")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateLoan(c); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(er.Details) == 0 {
		t.Fatalf("expected field errors, got %+v", er)
	}
	if !containsFieldMsg(er.Details, "borrowerid", "32-char lowercase hex") {
		t.Fatalf("missing hex32 detail: %+v", er.Details)
	}
}

func TestGetLoan_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	_, h := newLoanHandler(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/unknown", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/loans/:loan_id")
	c.SetParamNames("loan_id")
	c.SetParamValues(strings.Repeat("e", 32))

	if err := h.GetLoan(c); err != nil {
		t.Fatalf("GetLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSubmitLoan_ConflictOnRepeat(t *testing.T) {
	e := newEchoWithValidator()
	_, h := newLoanHandler(t)

	// create the draft through the handler
	createReq := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(map[string]any{
		"borrower_id": strings.Repeat("b", 32),
		"product_id":  testProductID,
		"principal":   "5000",
		"term_count":  21,
	}))
	createReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	setActor(createReq, strings.Repeat("f", 32), "loan_officer")
	createRec := httptest.NewRecorder()
	if err := h.CreateLoan(e.NewContext(createReq, createRec)); err != nil {
		t.Fatalf("CreateLoan error: %v", err)
	}
	var dto ucLoan.LoanDTO
	if err := json.Unmarshal(createRec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}

	submit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(stdhttp.MethodPost, "/loans/"+dto.LoanID+"/submit", nil)
		setActor(req, strings.Repeat("f", 32), "loan_officer")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/loans/:loan_id/submit")
		c.SetParamNames("loan_id")
		c.SetParamValues(dto.LoanID)
		if err := h.SubmitLoan(c); err != nil {
			t.Fatalf("SubmitLoan error: %v", err)
		}
		return rec
	}

	if rec := submit(); rec.Code != stdhttp.StatusOK {
		t.Fatalf("first submit status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if rec := submit(); rec.Code != stdhttp.StatusConflict {
		t.Fatalf("second submit status = %d, want 409", rec.Code)
	}
}
