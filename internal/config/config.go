package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultTokenTTLMinutes   = 30
	defaultBcryptCost        = 12
	defaultDemoEmail         = "demo@example.com"
	defaultDemoPassword      = "demopassword"
	defaultCORSAllowedOrigin = "http://localhost:3000,https://my-fiance-a6ae.vercel.app"
)

// FileEnv names the environment variable holding the optional YAML config path.
const FileEnv = "MYFIANCE_CONFIG"

var (
	ErrMissingJWTSecret  = errors.New("no JWT_SECRET provided")
	ErrMissingDBConnStr  = errors.New("no DB_CONNECTION_STRING provided")
	ErrInvalidTokenTTL   = errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be greater than zero")
	ErrMissingDemoPass   = errors.New("DEMO_PASSWORD must not be empty when DEMO_EMAIL is set")
	ErrInvalidBcryptCost = fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
)

// Config is the process-wide configuration. It is built once by Load and
// handed to constructors; nothing reads the environment afterwards.
type Config struct {
	HTTPAddr           string        `yaml:"http_addr"`
	JWTSecret          string        `yaml:"jwt_secret"`
	DBConnectionString string        `yaml:"db_connection_string"`
	AccessTokenTTL     time.Duration `yaml:"-"`
	TokenTTLMinutes    int           `yaml:"access_token_expire_minutes"`
	BcryptCost         int           `yaml:"bcrypt_cost"`
	Demo               DemoConfig    `yaml:"demo"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
}

// DemoConfig identifies the self-provisioning demo account.
type DemoConfig struct {
	Email         string `yaml:"email"`
	Password      string `yaml:"password"`
	ResetSchedule string `yaml:"reset_schedule"` // cron spec, empty disables the scheduler
}

// Default returns the configuration used when no source overrides a key.
func Default() Config {
	return Config{
		HTTPAddr:           defaultHTTPAddr,
		TokenTTLMinutes:    defaultTokenTTLMinutes,
		AccessTokenTTL:     defaultTokenTTLMinutes * time.Minute,
		BcryptCost:         defaultBcryptCost,
		Demo:               DemoConfig{Email: defaultDemoEmail, Password: defaultDemoPassword},
		CORSAllowedOrigins: splitList(defaultCORSAllowedOrigin),
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// MYFIANCE_CONFIG, a .env file and finally the process environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = time.Duration(cfg.TokenTTLMinutes) * time.Minute

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	if v, ok := get("HTTP_ADDR"); ok {
		c.HTTPAddr = v
	}
	if v, ok := get("JWT_SECRET", "SECRET_KEY"); ok {
		c.JWTSecret = v
	}
	if v, ok := get("DB_CONNECTION_STRING"); ok {
		c.DBConnectionString = v
	} else if dsn := buildDSN(get); dsn != "" {
		c.DBConnectionString = dsn
	}
	if v, ok := get("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
		}
		c.TokenTTLMinutes = minutes
	}
	if v, ok := get("BCRYPT_COST"); ok {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		c.BcryptCost = cost
	}
	if v, ok := get("DEMO_EMAIL"); ok {
		c.Demo.Email = strings.ToLower(v)
	}
	if v, ok := get("DEMO_PASSWORD"); ok {
		c.Demo.Password = v
	}
	if v, ok := get("DEMO_RESET_SCHEDULE"); ok {
		c.Demo.ResetSchedule = v
	}
	if v, ok := get("CORS_ALLOWED_ORIGINS"); ok {
		c.CORSAllowedOrigins = splitList(v)
	}
	return nil
}

// buildDSN assembles a connection string from the split DB_* variables.
func buildDSN(get func(keys ...string) (string, bool)) string {
	host, ok := get("DB_HOST")
	if !ok {
		return ""
	}
	user, _ := get("DB_USER")
	password, _ := get("DB_PASSWORD")
	name, _ := get("DB_NAME")
	port, ok := get("DB_PORT")
	if !ok {
		port = "5432"
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", user, password, host, port, name)
}

// Validate reports the first setting that would leave the server unsafe or unusable.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.DBConnectionString == "" {
		return ErrMissingDBConnStr
	}
	if c.AccessTokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return ErrInvalidBcryptCost
	}
	if c.Demo.Email != "" && strings.TrimSpace(c.Demo.Password) == "" {
		return ErrMissingDemoPass
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
