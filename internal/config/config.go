package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the immutable configuration snapshot consumed by the core.
// It is loaded once at startup (and again on an explicit reload); services
// never observe it changing underneath them.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	General    GeneralConfig    `mapstructure:"general"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Deposits   DepositsConfig   `mapstructure:"deposits"`
	Loans      LoansConfig      `mapstructure:"loans"`
	Credit     CreditConfig     `mapstructure:"credit"`
	Inflation  InflationConfig  `mapstructure:"inflation"`
	Taxes      TaxConfig        `mapstructure:"taxes"`
	Protection ProtectionConfig `mapstructure:"protection"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	Environment  string        `mapstructure:"environment" validate:"oneof=development testing production"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type GeneralConfig struct {
	AutoSaveMinutes   int    `mapstructure:"auto_save_minutes" validate:"gt=0"`
	SecondsPerGameDay int    `mapstructure:"seconds_per_game_day" validate:"gt=0"`
	CurrencySymbol    string `mapstructure:"currency_symbol"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type DepositPlanConfig struct {
	Name      string  `mapstructure:"name" validate:"required"`
	TermDays  int     `mapstructure:"term_days" validate:"gt=0"`
	BaseRate  float64 `mapstructure:"base_rate" validate:"gte=0"`
	MinAmount float64 `mapstructure:"min_amount" validate:"gte=0"`
	MaxAmount float64 `mapstructure:"max_amount" validate:"gtefield=MinAmount"`
}

type DepositsConfig struct {
	Enabled                    bool                `mapstructure:"enabled"`
	MaxPerPlayer               int                 `mapstructure:"max_per_player" validate:"gt=0"`
	EarlyWithdrawalPenaltyRate float64             `mapstructure:"early_withdrawal_penalty_rate" validate:"gte=0"`
	Plans                      []DepositPlanConfig `mapstructure:"plans" validate:"dive"`
}

type LoansConfig struct {
	Enabled                   bool    `mapstructure:"enabled"`
	BaseInterestRate          float64 `mapstructure:"base_interest_rate" validate:"gte=0"`
	MinAmount                 float64 `mapstructure:"min_amount" validate:"gte=0"`
	MaxAmount                 float64 `mapstructure:"max_amount" validate:"gtefield=MinAmount"`
	MaxActiveLoans            int     `mapstructure:"max_active_loans" validate:"gt=0"`
	DefaultTermDays           int     `mapstructure:"default_term_days" validate:"gt=0"`
	OverduePenaltyRate        float64 `mapstructure:"overdue_penalty_rate" validate:"gte=0"`
	DefaultAfterDays          int     `mapstructure:"default_after_days" validate:"gt=0"`
	CollateralRate            float64 `mapstructure:"collateral_rate" validate:"gte=0"`
	MinCreditScoreForLoan     int     `mapstructure:"min_credit_score_for_loan" validate:"gte=0,lte=1000"`
	MinLoanDaysForCreditBonus int     `mapstructure:"min_loan_days_for_credit_bonus" validate:"gte=0"`
}

type CreditConfig struct {
	InitialScore          int     `mapstructure:"initial_score" validate:"gte=0,lte=1000"`
	LoanCompletedBonus    int     `mapstructure:"loan_completed_bonus"`
	LoanDefaultPenalty    int     `mapstructure:"loan_default_penalty"`
	OnTimePaymentBonus    int     `mapstructure:"on_time_payment_bonus"`
	LatePaymentPenalty    int     `mapstructure:"late_payment_penalty"`
	DepositCompletedBonus int     `mapstructure:"deposit_completed_bonus"`
	ExcellentRateDiscount float64 `mapstructure:"excellent_rate_discount" validate:"gte=0"`
	PoorRatePenalty       float64 `mapstructure:"poor_rate_penalty" validate:"gte=0"`
}

type InflationConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	BaseRate            float64 `mapstructure:"base_rate"`
	UpdateIntervalHours int     `mapstructure:"update_interval_hours" validate:"gt=0"`
	MinRate             float64 `mapstructure:"min_rate"`
	MaxRate             float64 `mapstructure:"max_rate" validate:"gtefield=MinRate"`
}

// TaxBracketConfig is one marginal bracket. To <= 0 means unbounded.
type TaxBracketConfig struct {
	From float64 `mapstructure:"from" validate:"gte=0"`
	To   float64 `mapstructure:"to"`
	Rate float64 `mapstructure:"rate" validate:"gte=0"`
}

type TaxConfig struct {
	BalanceTaxEnabled     bool               `mapstructure:"balance_tax_enabled"`
	BalanceTaxRate        float64            `mapstructure:"balance_tax_rate" validate:"gte=0"`
	TaxFreeThreshold      float64            `mapstructure:"tax_free_threshold" validate:"gte=0"`
	InterestTaxEnabled    bool               `mapstructure:"interest_tax_enabled"`
	InterestTaxRate       float64            `mapstructure:"interest_tax_rate" validate:"gte=0"`
	TransactionTaxEnabled bool               `mapstructure:"transaction_tax_enabled"`
	TransactionTaxRate    float64            `mapstructure:"transaction_tax_rate" validate:"gte=0"`
	ProgressiveBrackets   []TaxBracketConfig `mapstructure:"progressive_brackets" validate:"dive"`
}

type ProtectionConfig struct {
	MaxOperationsPerHour     int  `mapstructure:"max_operations_per_hour" validate:"gt=0"`
	DepositCooldownSeconds   int  `mapstructure:"deposit_cooldown_seconds" validate:"gte=0"`
	LoanCooldownSeconds      int  `mapstructure:"loan_cooldown_seconds" validate:"gte=0"`
	MinAccountAgeDaysForLoan int  `mapstructure:"min_account_age_days_for_loan" validate:"gte=0"`
	AuditLogEnabled          bool `mapstructure:"audit_log_enabled"`
	MaxAuditLogEntries       int  `mapstructure:"max_audit_log_entries" validate:"gt=0"`
	RateLimitPerSecond       int  `mapstructure:"rate_limit_per_second" validate:"gt=0"`
	RateLimitBurst           int  `mapstructure:"rate_limit_burst" validate:"gt=0"`
}

// Load reads the configuration snapshot: built-in defaults, overridden by an
// optional YAML file, overridden by ECOBANK_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ECOBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("general.auto_save_minutes", 5)
	v.SetDefault("general.seconds_per_game_day", 2880)
	v.SetDefault("general.currency_symbol", "$")

	v.SetDefault("database.path", "data/ecobank.db")

	v.SetDefault("deposits.enabled", true)
	v.SetDefault("deposits.max_per_player", 3)
	v.SetDefault("deposits.early_withdrawal_penalty_rate", 0.0)
	v.SetDefault("deposits.plans", []map[string]interface{}{
		{"name": "short", "term_days": 7, "base_rate": 0.03, "min_amount": 100.0, "max_amount": 10000.0},
		{"name": "medium", "term_days": 14, "base_rate": 0.06, "min_amount": 500.0, "max_amount": 50000.0},
		{"name": "long", "term_days": 30, "base_rate": 0.12, "min_amount": 1000.0, "max_amount": 100000.0},
	})

	v.SetDefault("loans.enabled", true)
	v.SetDefault("loans.base_interest_rate", 0.10)
	v.SetDefault("loans.min_amount", 100.0)
	v.SetDefault("loans.max_amount", 50000.0)
	v.SetDefault("loans.max_active_loans", 2)
	v.SetDefault("loans.default_term_days", 30)
	v.SetDefault("loans.overdue_penalty_rate", 0.02)
	v.SetDefault("loans.default_after_days", 14)
	v.SetDefault("loans.collateral_rate", 0.20)
	v.SetDefault("loans.min_credit_score_for_loan", 200)
	v.SetDefault("loans.min_loan_days_for_credit_bonus", 3)

	v.SetDefault("credit.initial_score", 500)
	v.SetDefault("credit.loan_completed_bonus", 50)
	v.SetDefault("credit.loan_default_penalty", -150)
	v.SetDefault("credit.on_time_payment_bonus", 10)
	v.SetDefault("credit.late_payment_penalty", -20)
	v.SetDefault("credit.deposit_completed_bonus", 15)
	v.SetDefault("credit.excellent_rate_discount", 0.03)
	v.SetDefault("credit.poor_rate_penalty", 0.05)

	v.SetDefault("inflation.enabled", false)
	v.SetDefault("inflation.base_rate", 0.02)
	v.SetDefault("inflation.update_interval_hours", 24)
	v.SetDefault("inflation.min_rate", -0.05)
	v.SetDefault("inflation.max_rate", 0.20)

	v.SetDefault("taxes.balance_tax_enabled", false)
	v.SetDefault("taxes.balance_tax_rate", 0.01)
	v.SetDefault("taxes.tax_free_threshold", 1000.0)
	v.SetDefault("taxes.interest_tax_enabled", true)
	v.SetDefault("taxes.interest_tax_rate", 0.13)
	v.SetDefault("taxes.transaction_tax_enabled", false)
	v.SetDefault("taxes.transaction_tax_rate", 0.005)
	v.SetDefault("taxes.progressive_brackets", []map[string]interface{}{
		{"from": 0.0, "to": 10000.0, "rate": 0.05},
		{"from": 10000.0, "to": 50000.0, "rate": 0.10},
		{"from": 50000.0, "to": 100000.0, "rate": 0.15},
		{"from": 100000.0, "to": -1.0, "rate": 0.20},
	})

	v.SetDefault("protection.max_operations_per_hour", 30)
	v.SetDefault("protection.deposit_cooldown_seconds", 60)
	v.SetDefault("protection.loan_cooldown_seconds", 300)
	v.SetDefault("protection.min_account_age_days_for_loan", 1)
	v.SetDefault("protection.audit_log_enabled", true)
	v.SetDefault("protection.max_audit_log_entries", 1000)
	v.SetDefault("protection.rate_limit_per_second", 5)
	v.SetDefault("protection.rate_limit_burst", 10)
}

func (c *Config) IsDevelopment() bool { return c.Server.Environment == "development" }
func (c *Config) IsProduction() bool  { return c.Server.Environment == "production" }
func (c *Config) IsTesting() bool     { return c.Server.Environment == "testing" }
