package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"palmcash-backend/internal/domain/loan"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Business policy knobs; see loan.Policy.
	OfficerApprovalMinGroups int
	DefaultThreshold         int
	OverpaymentTolerance     decimal.Decimal
	UpfrontPercent           decimal.Decimal
	DepositPercent           decimal.Decimal
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvDec(k, d string) decimal.Decimal {
	if v := os.Getenv(k); v != "" {
		if n, err := decimal.NewFromString(v); err == nil {
			return n
		}
	}
	return decimal.RequireFromString(d)
}

func Load() *Config {
	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "palmcash"),
		MySQLUser: getenv("MYSQL_USER", "palmcash"),
		MySQLPass: getenv("MYSQL_PASS", "palmcash"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		OfficerApprovalMinGroups: getenvInt("OFFICER_APPROVAL_MIN_GROUPS", 15),
		DefaultThreshold:         getenvInt("DEFAULT_THRESHOLD", 3),
		OverpaymentTolerance:     getenvDec("OVERPAYMENT_TOLERANCE", "0.50"),
		UpfrontPercent:           getenvDec("UPFRONT_PERCENT", "10"),
		DepositPercent:           getenvDec("DEPOSIT_PERCENT", "10"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.DefaultThreshold <= 0 {
		return errors.New("DEFAULT_THRESHOLD must be positive")
	}
	if c.OverpaymentTolerance.IsNegative() {
		return errors.New("OVERPAYMENT_TOLERANCE must not be negative")
	}
	return nil
}

// Policy builds the immutable policy object injected into the usecases.
func (c *Config) Policy() loan.Policy {
	return loan.Policy{
		OfficerApprovalMinGroups: c.OfficerApprovalMinGroups,
		DefaultThreshold:         c.DefaultThreshold,
		OverpaymentTolerance:     c.OverpaymentTolerance,
		UpfrontPercent:           c.UpfrontPercent,
		DepositPercent:           c.DepositPercent,
	}
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
