package http

import "github.com/labstack/echo/v4"

// Register mounts every route. Mutating loan and payment routes sit behind
// the idempotency middleware passed in by the caller.
func Register(e *echo.Echo, idemp echo.MiddlewareFunc,
	h *Handler, loans *LoanHandler, payments *PaymentHandler,
	collections *CollectionHandler, products *ProductHandler) {

	e.GET("/health", h.Health)

	e.GET("/products", products.ListProducts)
	e.GET("/products/:product_id", products.GetProduct)
	e.POST("/products", products.CreateProduct, idemp)

	e.POST("/loans", loans.CreateLoan, idemp)
	e.GET("/loans/:loan_id", loans.GetLoan)
	e.GET("/loans/:loan_id/view", loans.ViewLoan)
	e.DELETE("/loans/:loan_id", loans.DeleteLoan)
	e.POST("/loans/:loan_id/submit", loans.SubmitLoan, idemp)
	e.POST("/loans/:loan_id/approve", loans.ApproveLoan, idemp)
	e.POST("/loans/:loan_id/reject", loans.RejectLoan, idemp)
	e.POST("/loans/:loan_id/verify-upfront", loans.VerifyUpfront, idemp)
	e.POST("/loans/:loan_id/verify-deposit", loans.VerifyDeposit, idemp)
	e.POST("/loans/:loan_id/disburse", loans.DisburseLoan, idemp)
	e.POST("/loans/:loan_id/cancel", loans.CancelLoan, idemp)

	e.POST("/loans/:loan_id/payments/upfront", payments.PostUpfront, idemp)
	e.POST("/loans/:loan_id/payments/deposit", payments.PostDeposit, idemp)
	e.POST("/loans/:loan_id/payments", payments.PostInstallment, idemp)
	e.POST("/payments/:payment_id/reverse", payments.ReversePayment, idemp)

	e.GET("/collections/sheet", collections.OfficerSheet)
	e.POST("/collections/schedule", collections.ScheduleCollections, idemp)
	e.POST("/collections/sweep-defaults", collections.SweepDefaults)
}
