package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "palmcash-backend/internal/adapter/http"
	"palmcash-backend/internal/adapter/middleware"
	"palmcash-backend/internal/adapter/repository/mysql"
	"palmcash-backend/internal/config"
	"palmcash-backend/internal/infrastructure/cache"
	"palmcash-backend/internal/infrastructure/db"
	"palmcash-backend/internal/notify"
	"palmcash-backend/internal/policy"
	ucCollection "palmcash-backend/internal/usecase/collection"
	ucLoan "palmcash-backend/internal/usecase/loan"
	ucPayment "palmcash-backend/internal/usecase/payment"
	ucProduct "palmcash-backend/internal/usecase/product"
	"palmcash-backend/pkg/clock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	loans := mysql.NewLoanRepository(gdb)
	products := mysql.NewProductRepository(gdb)
	schedules := mysql.NewScheduleRepository(gdb)
	payments := mysql.NewPaymentRepository(gdb)
	collections := mysql.NewCollectionRepository(gdb)
	groups := mysql.NewGroupRepository(gdb)
	unit := mysql.NewUnitOfWork(gdb)

	pol := cfg.Policy()
	approvalPolicy := policy.NewApprovalPolicy(groups, pol.OfficerApprovalMinGroups)
	sink := notify.LogSink{}
	clk := clock.System()

	loanUC := ucLoan.NewUsecase(ucLoan.Deps{
		Loans:     loans,
		Products:  products,
		Schedules: schedules,
		UoW:       unit,
		Policy:    approvalPolicy,
		Config:    pol,
		Clock:     clk,
		Sink:      sink,
	})
	paymentUC := ucPayment.NewUsecase(ucPayment.Deps{
		Loans:    loans,
		Payments: payments,
		UoW:      unit,
		Config:   pol,
		Clock:    clk,
		Sink:     sink,
	})
	collectionUC := ucCollection.NewUsecase(ucCollection.Deps{
		Loans:       loans,
		Schedules:   schedules,
		Payments:    payments,
		Collections: collections,
		UoW:         unit,
		Lifecycle:   loanUC,
		Config:      pol,
		Clock:       clk,
	})
	productUC := ucProduct.NewUsecase(products)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idemp := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)
	httpadp.Register(e, idemp,
		httpadp.NewHandler(),
		httpadp.NewLoanHandler(loanUC),
		httpadp.NewPaymentHandler(paymentUC),
		httpadp.NewCollectionHandler(collectionUC),
		httpadp.NewProductHandler(productUC),
	)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
