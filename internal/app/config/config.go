package config

import (
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR,default=:8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabaseAnonKey        string `env:"SUPABASE_ANON_KEY"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseJWTSecret      string `env:"SUPABASE_JWT_SECRET,default="`

	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS,default="`
	InvoicePrefix    string `env:"INVOICE_PREFIX,default=CI"`
	PDFBucket        string `env:"PDF_BUCKET,default=invoices"`

	BusinessName     string `env:"BUSINESS_NAME,default=Craft Invoice"`
	BusinessPhone    string `env:"BUSINESS_PHONE,default="`
	BusinessEmail    string `env:"BUSINESS_EMAIL,default="`
	BusinessAddress  string `env:"BUSINESS_ADDRESS,default="`
	BusinessTimezone string `env:"BUSINESS_TIMEZONE,default=Asia/Kolkata"`

	RateLimitRPS   int  `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int  `env:"RATE_LIMIT_BURST,default=40"`
	RunMigrations  bool `env:"RUN_MIGRATIONS,default=false"`
}

// MustLoad reads .env when present, then decodes the environment. Fields
// without a default are required and abort startup when missing.
func MustLoad() Config {
	_ = godotenv.Load()
	var cfg Config
	envdecode.MustStrictDecode(&cfg)
	return cfg
}
