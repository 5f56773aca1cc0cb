package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string
	BaseURL string

	LowStockThreshold int
	AdminEmail        string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

func Load() Config {
	// Optional .env in the working directory; real env wins.
	_ = godotenv.Load()

	cfg := Config{
		Port:              getenv("PORT", "8080"),
		DBDSN:             getenv("DB_DSN", "candela.db"),
		LogFile:           getenv("LOG_FILE", "./candela.log"),
		BaseURL:           getenv("BASE_URL", "http://localhost:8080"),
		LowStockThreshold: getenvInt("LOW_STOCK_THRESHOLD", 10),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getenvInt("SMTP_PORT", 465),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:          getenv("SMTP_FROM", "noreply@candela.test"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOW_STOCK_THRESHOLD=%d ADMIN_EMAIL=%s SMTP_HOST=%s",
		cfg.Port, cfg.DBDSN, cfg.LowStockThreshold, cfg.AdminEmail, cfg.SMTPHost)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}
