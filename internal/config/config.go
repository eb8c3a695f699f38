package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	pkgconfig "github.com/gemora/gemora/pkg/config"
)

type Config struct {
	ServerPort int
	LogLevel   string

	DatabaseURL string

	JWTSecret     []byte
	RefreshSecret []byte

	AdminFirstName string
	AdminLastName  string
	AdminEmail     string
	AdminPassword  string

	PayUClientID         string
	PayUClientSecret     string
	PayUAuthorizationURL string
	PayUOrderURL         string
	PayUMerchantPosID    string
	PayUCurrencyCode     string
	PayUCustomerIP       string
	PayUContinueURL      string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		ServerPort: pkgconfig.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		RefreshSecret: []byte(os.Getenv("REFRESH_SECRET")),

		AdminFirstName: os.Getenv("ADMIN_FIRSTNAME"),
		AdminLastName:  os.Getenv("ADMIN_LASTNAME"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),

		PayUClientID:         os.Getenv("PAYU_CLIENT_ID"),
		PayUClientSecret:     os.Getenv("PAYU_CLIENT_SECRET"),
		PayUAuthorizationURL: os.Getenv("PAYU_AUTHORIZATION_URL"),
		PayUOrderURL:         os.Getenv("PAYU_ORDER_URL"),
		PayUMerchantPosID:    os.Getenv("PAYU_MERCHANT_POS_ID"),
		PayUCurrencyCode:     pkgconfig.EnvDefault("PAYU_CURRENCY_CODE", "PLN"),
		PayUCustomerIP:       pkgconfig.EnvDefault("PAYU_CUSTOMER_IP", "127.0.0.1"),
		PayUContinueURL:      os.Getenv("PAYU_CONTINUE_URL"),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgconfig.EnvDefault("ES_INDEX", "products"),
	}

	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgconfig.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	pkgconfig.MustNonEmptyBytes(cfg.RefreshSecret, "REFRESH_SECRET")
	pkgconfig.MustNonEmpty(cfg.AdminEmail, "ADMIN_EMAIL")
	pkgconfig.MustNonEmpty(cfg.AdminPassword, "ADMIN_PASSWORD")

	return cfg
}
