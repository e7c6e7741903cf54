package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainLoan "palmcash-backend/internal/domain/loan"
	domainPayment "palmcash-backend/internal/domain/payment"
	"palmcash-backend/internal/domain/uow"
	"palmcash-backend/internal/notify"
	"palmcash-backend/internal/testutil/memstore"
	"palmcash-backend/pkg/clock"
)

var (
	admin   = domainLoan.Actor{ID: "adm00000000000000000000000000000", Role: domainLoan.RoleAdmin}
	officer = domainLoan.Actor{ID: "ofc00000000000000000000000000000", Role: domainLoan.RoleLoanOfficer}
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(offset int) time.Time {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func newTestUsecase(t *testing.T) (*memstore.Store, *Usecase) {
	t.Helper()
	store := memstore.New()
	repos := store.Repos()
	uc := NewUsecase(Deps{
		Loans:    repos.Loans,
		Payments: repos.Payments,
		UoW:      store,
		Config: domainLoan.Policy{
			OfficerApprovalMinGroups: 15,
			DefaultThreshold:         3,
			OverpaymentTolerance:     dec("0.50"),
			UpfrontPercent:           dec("10"),
			DepositPercent:           dec("10"),
		},
		Clock: clock.Fixed(testNow),
		Sink:  notify.NopSink{},
	})
	return store, uc
}

func seedLoan(store *memstore.Store, status domainLoan.Status) *domainLoan.Loan {
	return store.SeedLoan(&domainLoan.Loan{
		LoanID:            "lll00000000000000000000000000000",
		ApplicationNumber: "LV-000001",
		BorrowerID:        "bor00000000000000000000000000000",
		OfficerID:         officer.ID,
		Principal:         dec("300"),
		Status:            status,
		UpfrontRequired:   dec("500"),
		UpfrontPaid:       dec("0"),
		DepositRequired:   true,
	})
}

// threeRows seeds a 3 x 100 installment schedule due on consecutive days.
func threeRows(store *memstore.Store, loanID uint64, firstDueOffset int) {
	rows := make([]domainPayment.Schedule, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, domainPayment.Schedule{
			InstallmentNumber: i + 1,
			DueDate:           day(firstDueOffset + i),
			PrincipalAmount:   dec("90"),
			InterestAmount:    dec("10"),
			TotalAmount:       dec("100"),
			PaidAmount:        dec("0"),
		})
	}
	store.SeedSchedule(loanID, rows)
}

func scheduleRows(t *testing.T, store *memstore.Store, loanID uint64) []domainPayment.Schedule {
	t.Helper()
	var rows []domainPayment.Schedule
	err := store.WithinTx(context.Background(), func(r uow.Repos) error {
		var err error
		rows, err = r.Schedules.ListByLoanID(context.Background(), loanID)
		return err
	})
	if err != nil {
		t.Fatalf("list schedule: %v", err)
	}
	return rows
}

func loanStatus(t *testing.T, store *memstore.Store, loanID string) domainLoan.Status {
	t.Helper()
	var st domainLoan.Status
	err := store.WithinLoanTx(context.Background(), loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		st = l.Status
		return nil
	})
	if err != nil {
		t.Fatalf("load loan: %v", err)
	}
	return st
}

func TestPostUpfront(t *testing.T) {
	store, uc := newTestUsecase(t)
	l := seedLoan(store, domainLoan.StatusApproved)
	ctx := context.Background()

	dto, err := uc.PostUpfront(ctx, PostInput{
		LoanID: l.LoanID, Amount: dec("200"), Method: domainPayment.MethodCash, Actor: officer,
	})
	if err != nil {
		t.Fatalf("PostUpfront: %v", err)
	}
	if len(dto.PaymentIDs) != 1 {
		t.Fatalf("payment ids = %d, want 1", len(dto.PaymentIDs))
	}
	if !l.UpfrontPaid.Equal(dec("200")) {
		t.Fatalf("upfront paid = %s, want 200", l.UpfrontPaid)
	}

	// ledger mirrors the sum of completed upfront postings
	if _, err := uc.PostUpfront(ctx, PostInput{
		LoanID: l.LoanID, Amount: dec("300"), Method: domainPayment.MethodCash, Actor: officer,
	}); err != nil {
		t.Fatalf("second PostUpfront: %v", err)
	}
	sum, _ := store.Repos().Payments.SumCompletedByTarget(ctx, l.ID, domainPayment.TargetUpfront)
	if !sum.Equal(l.UpfrontPaid) {
		t.Fatalf("upfront ledger %s != completed postings %s", l.UpfrontPaid, sum)
	}
}

func TestPostUpfront_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong state", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusDraft)
		_, err := uc.PostUpfront(ctx, PostInput{LoanID: l.LoanID, Amount: dec("100"), Method: domainPayment.MethodCash, Actor: officer})
		if !errors.Is(err, domainPayment.ErrInvalidPayment) {
			t.Fatalf("err = %v, want ErrInvalidPayment", err)
		}
	})

	t.Run("beyond tolerance rejected", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusApproved)
		_, err := uc.PostUpfront(ctx, PostInput{LoanID: l.LoanID, Amount: dec("500.51"), Method: domainPayment.MethodCash, Actor: officer})
		if !errors.Is(err, domainPayment.ErrOverpaymentRejected) {
			t.Fatalf("err = %v, want ErrOverpaymentRejected", err)
		}
	})

	t.Run("within tolerance allowed", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusApproved)
		if _, err := uc.PostUpfront(ctx, PostInput{LoanID: l.LoanID, Amount: dec("500.50"), Method: domainPayment.MethodCash, Actor: officer}); err != nil {
			t.Fatalf("err = %v, want nil", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusApproved)
		_, err := uc.PostUpfront(ctx, PostInput{LoanID: l.LoanID, Amount: dec("0"), Method: domainPayment.MethodCash, Actor: officer})
		if !errors.Is(err, domainPayment.ErrInvalidPayment) {
			t.Fatalf("err = %v, want ErrInvalidPayment", err)
		}
	})

	t.Run("bad method", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusApproved)
		_, err := uc.PostUpfront(ctx, PostInput{LoanID: l.LoanID, Amount: dec("10"), Method: "barter", Actor: officer})
		if !errors.Is(err, domainPayment.ErrInvalidPayment) {
			t.Fatalf("err = %v, want ErrInvalidPayment", err)
		}
	})
}

func TestPostSecurityDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusAwaitingDeposit)
		store.SeedDeposit(&domainPayment.SecurityDeposit{LoanID: l.ID, RequiredAmount: dec("500"), PaidAmount: dec("0")})

		if _, err := uc.PostSecurityDeposit(ctx, PostInput{
			LoanID: l.LoanID, Amount: dec("500"), Method: domainPayment.MethodBankTransfer, Actor: officer,
		}); err != nil {
			t.Fatalf("PostSecurityDeposit: %v", err)
		}
		err := store.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, lo *domainLoan.Loan) error {
			d, err := r.Deposits.GetByLoanID(ctx, lo.ID)
			if err != nil {
				return err
			}
			if !d.PaidAmount.Equal(dec("500")) {
				t.Errorf("deposit paid = %s, want 500", d.PaidAmount)
			}
			if d.Method != domainPayment.MethodBankTransfer || d.PaymentDate == nil {
				t.Errorf("deposit method/date not stamped: %+v", d)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("deposit lookup: %v", err)
		}
	})

	t.Run("missing deposit ledger", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusAwaitingDeposit)
		_, err := uc.PostSecurityDeposit(ctx, PostInput{LoanID: l.LoanID, Amount: dec("10"), Method: domainPayment.MethodCash, Actor: officer})
		if !errors.Is(err, domainPayment.ErrInvalidPayment) {
			t.Fatalf("err = %v, want ErrInvalidPayment", err)
		}
	})

	t.Run("beyond tolerance rejected", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusAwaitingDeposit)
		store.SeedDeposit(&domainPayment.SecurityDeposit{LoanID: l.ID, RequiredAmount: dec("500"), PaidAmount: dec("490")})
		_, err := uc.PostSecurityDeposit(ctx, PostInput{LoanID: l.LoanID, Amount: dec("11"), Method: domainPayment.MethodCash, Actor: officer})
		if !errors.Is(err, domainPayment.ErrOverpaymentRejected) {
			t.Fatalf("err = %v, want ErrOverpaymentRejected", err)
		}
	})
}

func TestPostInstallment_PartialThenFull(t *testing.T) {
	store, uc := newTestUsecase(t)
	l := seedLoan(store, domainLoan.StatusActive)
	threeRows(store, l.ID, 0)
	ctx := context.Background()

	// partial: 40 against row 1
	dto, err := uc.PostInstallment(ctx, PostInstallmentInput{
		LoanID: l.LoanID, Amount: dec("40"), Method: domainPayment.MethodCash, Actor: officer,
	})
	if err != nil {
		t.Fatalf("partial post: %v", err)
	}
	if dto.PartialOn == nil || *dto.PartialOn != 1 {
		t.Fatalf("partial on = %v, want 1", dto.PartialOn)
	}
	if len(dto.InstallmentsPaid) != 0 {
		t.Fatalf("installments paid = %v, want none", dto.InstallmentsPaid)
	}

	rows := scheduleRows(t, store, l.ID)
	if !rows[0].PaidAmount.Equal(dec("40")) || rows[0].IsPaid {
		t.Fatalf("row 1 after partial: paid=%s is_paid=%v", rows[0].PaidAmount, rows[0].IsPaid)
	}

	// the remaining 60 clears row 1
	dto, err = uc.PostInstallment(ctx, PostInstallmentInput{
		LoanID: l.LoanID, Amount: dec("60"), Method: domainPayment.MethodCash, Actor: officer,
	})
	if err != nil {
		t.Fatalf("completing post: %v", err)
	}
	if len(dto.InstallmentsPaid) != 1 || dto.InstallmentsPaid[0] != 1 {
		t.Fatalf("installments paid = %v, want [1]", dto.InstallmentsPaid)
	}
	rows = scheduleRows(t, store, l.ID)
	if !rows[0].IsPaid || rows[0].PaidDate == nil {
		t.Fatalf("row 1 not settled: %+v", rows[0])
	}
}

func TestPostInstallment_SpillsAcrossRows(t *testing.T) {
	store, uc := newTestUsecase(t)
	l := seedLoan(store, domainLoan.StatusActive)
	threeRows(store, l.ID, 0)
	ctx := context.Background()

	dto, err := uc.PostInstallment(ctx, PostInstallmentInput{
		LoanID: l.LoanID, Amount: dec("250"), Method: domainPayment.MethodCash, Actor: officer,
	})
	if err != nil {
		t.Fatalf("PostInstallment: %v", err)
	}
	if len(dto.InstallmentsPaid) != 2 || dto.InstallmentsPaid[0] != 1 || dto.InstallmentsPaid[1] != 2 {
		t.Fatalf("installments paid = %v, want [1 2]", dto.InstallmentsPaid)
	}
	if dto.PartialOn == nil || *dto.PartialOn != 3 {
		t.Fatalf("partial on = %v, want 3", dto.PartialOn)
	}
	if len(dto.PaymentIDs) != 3 {
		t.Fatalf("payment rows = %d, want 3 (one per allocation)", len(dto.PaymentIDs))
	}
	rows := scheduleRows(t, store, l.ID)
	if !rows[2].PaidAmount.Equal(dec("50")) {
		t.Fatalf("row 3 paid = %s, want 50", rows[2].PaidAmount)
	}
}

func TestPostInstallment_OverpaymentGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("beyond tolerance rejected", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusActive)
		threeRows(store, l.ID, 0)
		_, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("300.51"), Method: domainPayment.MethodCash, Actor: officer,
		})
		if !errors.Is(err, domainPayment.ErrOverpaymentRejected) {
			t.Fatalf("err = %v, want ErrOverpaymentRejected", err)
		}
	})

	t.Run("tolerance excess lands as overpayment row", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusActive)
		threeRows(store, l.ID, 0)
		dto, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("300.50"), Method: domainPayment.MethodCash, Actor: officer,
		})
		if err != nil {
			t.Fatalf("PostInstallment: %v", err)
		}
		if !dto.Overpayment.Equal(dec("0.50")) {
			t.Fatalf("overpayment = %s, want 0.50", dto.Overpayment)
		}
		if len(dto.PaymentIDs) != 4 {
			t.Fatalf("payment rows = %d, want 4 (3 installments + overpayment)", len(dto.PaymentIDs))
		}
	})

	t.Run("allow flag admits larger excess", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusActive)
		threeRows(store, l.ID, 0)
		dto, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("400"), Method: domainPayment.MethodCash, Actor: officer,
			AllowOverpayment: true,
		})
		if err != nil {
			t.Fatalf("PostInstallment: %v", err)
		}
		if !dto.Overpayment.Equal(dec("100")) {
			t.Fatalf("overpayment = %s, want 100", dto.Overpayment)
		}
	})
}

func TestPostInstallment_StateDriven(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong state rejected", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusApproved)
		_, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("100"), Method: domainPayment.MethodCash, Actor: officer,
		})
		if !errors.Is(err, domainPayment.ErrInvalidPayment) {
			t.Fatalf("err = %v, want ErrInvalidPayment", err)
		}
	})

	t.Run("first posting activates disbursed loan", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusDisbursed)
		threeRows(store, l.ID, 0)
		if _, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("40"), Method: domainPayment.MethodCash, Actor: officer,
		}); err != nil {
			t.Fatalf("PostInstallment: %v", err)
		}
		if st := loanStatus(t, store, l.LoanID); st != domainLoan.StatusActive {
			t.Fatalf("status = %s, want active", st)
		}
	})

	t.Run("clearing the schedule completes the loan", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusDisbursed)
		threeRows(store, l.ID, 0)
		dto, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("300"), Method: domainPayment.MethodCash, Actor: officer,
		})
		if err != nil {
			t.Fatalf("PostInstallment: %v", err)
		}
		if dto.LoanStatus != string(domainLoan.StatusCompleted) {
			t.Fatalf("receipt status = %s, want completed", dto.LoanStatus)
		}
		if st := loanStatus(t, store, l.LoanID); st != domainLoan.StatusCompleted {
			t.Fatalf("status = %s, want completed", st)
		}
	})

	t.Run("clearing arrears restores a defaulted loan", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusDefaulted)
		// three overdue rows put it at the default threshold
		threeRows(store, l.ID, -5)
		if _, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("200"), Method: domainPayment.MethodCash, Actor: officer,
		}); err != nil {
			t.Fatalf("PostInstallment: %v", err)
		}
		// one overdue row left, below threshold 3
		if st := loanStatus(t, store, l.LoanID); st != domainLoan.StatusActive {
			t.Fatalf("status = %s, want active after restore", st)
		}
	})
}

// Two posters race on the same loan; the per-loan lock must serialize them
// so each installment is credited exactly once.
func TestPostInstallment_ConcurrentPostersCreditOnce(t *testing.T) {
	store, uc := newTestUsecase(t)
	l := seedLoan(store, domainLoan.StatusActive)
	threeRows(store, l.ID, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.PostInstallment(ctx, PostInstallmentInput{
				LoanID: l.LoanID, Amount: dec("100"), Method: domainPayment.MethodCash, Actor: officer,
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("poster %d: %v", i, err)
		}
	}

	rows := scheduleRows(t, store, l.ID)
	if !rows[0].IsPaid || !rows[0].PaidAmount.Equal(dec("100")) {
		t.Fatalf("row 1: paid=%s is_paid=%v, want exactly 100", rows[0].PaidAmount, rows[0].IsPaid)
	}
	if !rows[1].IsPaid || !rows[1].PaidAmount.Equal(dec("100")) {
		t.Fatalf("row 2: paid=%s is_paid=%v, want exactly 100", rows[1].PaidAmount, rows[1].IsPaid)
	}
	if rows[2].IsPaid || !rows[2].PaidAmount.IsZero() {
		t.Fatalf("row 3 touched: %+v", rows[2])
	}

	sum, err := store.Repos().Payments.SumCompletedByTarget(ctx, l.ID, domainPayment.TargetInstallment)
	if err != nil {
		t.Fatalf("SumCompletedByTarget: %v", err)
	}
	if !sum.Equal(dec("200")) {
		t.Fatalf("total allocated = %s, want 200", sum)
	}
}

func TestPostInstallment_CollectionDate(t *testing.T) {
	ctx := context.Background()

	t.Run("future date rejected", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusActive)
		threeRows(store, l.ID, 0)
		_, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("100"), Method: domainPayment.MethodCash, Actor: officer,
			CollectionDate: day(1),
		})
		if !errors.Is(err, domainPayment.ErrInvalidPayment) {
			t.Fatalf("err = %v, want ErrInvalidPayment", err)
		}
	})

	t.Run("backdated date becomes the paid date", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusActive)
		threeRows(store, l.ID, -1)
		if _, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("100"), Method: domainPayment.MethodCash, Actor: officer,
			CollectionDate: day(-1),
		}); err != nil {
			t.Fatalf("PostInstallment: %v", err)
		}
		rows := scheduleRows(t, store, l.ID)
		if rows[0].PaidDate == nil || !rows[0].PaidDate.Equal(day(-1)) {
			t.Fatalf("paid date = %v, want %v", rows[0].PaidDate, day(-1))
		}
	})
}

func TestPostInstallment_CollectionRollup(t *testing.T) {
	store, uc := newTestUsecase(t)
	l := seedLoan(store, domainLoan.StatusActive)
	threeRows(store, l.ID, 0) // row 1 due today
	ctx := context.Background()

	if _, err := uc.PostInstallment(ctx, PostInstallmentInput{
		LoanID: l.LoanID, Amount: dec("100"), Method: domainPayment.MethodCash, Actor: officer,
	}); err != nil {
		t.Fatalf("PostInstallment: %v", err)
	}

	err := store.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Collections.GetByLoanAndDate(ctx, l.ID, day(0))
		if err != nil {
			return err
		}
		if !c.ExpectedAmount.Equal(dec("100")) {
			t.Errorf("expected = %s, want 100 (row 1 due today)", c.ExpectedAmount)
		}
		if !c.CollectedAmount.Equal(dec("100")) {
			t.Errorf("collected = %s, want 100", c.CollectedAmount)
		}
		if c.Status != domainPayment.CollectionCompleted {
			t.Errorf("status = %s, want completed", c.Status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("collection lookup: %v", err)
	}
}

func TestReverse(t *testing.T) {
	ctx := context.Background()

	t.Run("role gate", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		seedLoan(store, domainLoan.StatusActive)
		err := uc.Reverse(ctx, "pay00000000000000000000000000000", officer)
		if !errors.Is(err, domainLoan.ErrRoleDenied) {
			t.Fatalf("err = %v, want ErrRoleDenied", err)
		}
	})

	t.Run("unknown payment", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		seedLoan(store, domainLoan.StatusActive)
		err := uc.Reverse(ctx, "pay00000000000000000000000000000", admin)
		if !errors.Is(err, domainPayment.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("installment reversal unapplies the allocation", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusActive)
		threeRows(store, l.ID, 0)

		dto, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("100"), Method: domainPayment.MethodCash, Actor: officer,
		})
		if err != nil {
			t.Fatalf("PostInstallment: %v", err)
		}

		if err := uc.Reverse(ctx, dto.PaymentIDs[0], admin); err != nil {
			t.Fatalf("Reverse: %v", err)
		}
		rows := scheduleRows(t, store, l.ID)
		if rows[0].IsPaid || !rows[0].PaidAmount.IsZero() || rows[0].PaidDate != nil {
			t.Fatalf("row 1 not unapplied: %+v", rows[0])
		}

		// second reversal of the same payment must fail
		if err := uc.Reverse(ctx, dto.PaymentIDs[0], admin); !errors.Is(err, domainPayment.ErrInvalidPayment) {
			t.Fatalf("double reverse err = %v, want ErrInvalidPayment", err)
		}
	})

	t.Run("reversal rolls the amount out of the day sheet", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusActive)
		threeRows(store, l.ID, 0) // row 1 due today

		dto, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("100"), Method: domainPayment.MethodCash, Actor: officer,
		})
		if err != nil {
			t.Fatalf("PostInstallment: %v", err)
		}
		if err := uc.Reverse(ctx, dto.PaymentIDs[0], admin); err != nil {
			t.Fatalf("Reverse: %v", err)
		}

		err = store.WithinTx(ctx, func(r uow.Repos) error {
			c, err := r.Collections.GetByLoanAndDate(ctx, l.ID, day(0))
			if err != nil {
				return err
			}
			if !c.CollectedAmount.IsZero() {
				t.Errorf("collected = %s, want 0 after reversal", c.CollectedAmount)
			}
			if c.Status != domainPayment.CollectionInProgress {
				t.Errorf("status = %s, want in_progress", c.Status)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("collection lookup: %v", err)
		}
	})

	t.Run("reversal reopens a completed loan", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusDisbursed)
		threeRows(store, l.ID, 0)

		dto, err := uc.PostInstallment(ctx, PostInstallmentInput{
			LoanID: l.LoanID, Amount: dec("300"), Method: domainPayment.MethodCash, Actor: officer,
		})
		if err != nil {
			t.Fatalf("PostInstallment: %v", err)
		}
		if st := loanStatus(t, store, l.LoanID); st != domainLoan.StatusCompleted {
			t.Fatalf("status = %s, want completed", st)
		}

		if err := uc.Reverse(ctx, dto.PaymentIDs[2], admin); err != nil {
			t.Fatalf("Reverse: %v", err)
		}
		if st := loanStatus(t, store, l.LoanID); st != domainLoan.StatusActive {
			t.Fatalf("status after reversal = %s, want active", st)
		}
	})

	t.Run("upfront reversal shrinks the ledger", func(t *testing.T) {
		store, uc := newTestUsecase(t)
		l := seedLoan(store, domainLoan.StatusApproved)
		dto, err := uc.PostUpfront(ctx, PostInput{
			LoanID: l.LoanID, Amount: dec("200"), Method: domainPayment.MethodCash, Actor: officer,
		})
		if err != nil {
			t.Fatalf("PostUpfront: %v", err)
		}
		if err := uc.Reverse(ctx, dto.PaymentIDs[0], admin); err != nil {
			t.Fatalf("Reverse: %v", err)
		}
		err = store.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, lo *domainLoan.Loan) error {
			if !lo.UpfrontPaid.IsZero() {
				t.Errorf("upfront paid = %s, want 0", lo.UpfrontPaid)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("loan lookup: %v", err)
		}
	})
}
