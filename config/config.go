package config

import (
	"time"

	"github.com/spf13/viper"
)

// QuotaScope selects which key the daily quota ledger is kept on.
type QuotaScope string

const (
	QuotaScopeClinic QuotaScope = "clinic"
	QuotaScopeDoctor QuotaScope = "doctor"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Quota     QuotaConfig
	BPJS      BPJSConfig
	Dukcapil  DukcapilConfig
	SatuSehat SatuSehatConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type QuotaConfig struct {
	// Scope is "clinic" (ledger keyed per clinic+date, capacity from the
	// clinic's daily quota) or "doctor" (keyed per doctor+date, capacity
	// from the resolved schedule slot).
	Scope QuotaScope
}

type BPJSConfig struct {
	BaseURL string
	ConsID  string
	Secret  string
	// AllowOnOutage lets bookings proceed when the eligibility service is
	// unreachable. Inactive participants are still rejected whenever the
	// service does answer.
	AllowOnOutage bool
}

type DukcapilConfig struct {
	BaseURL string
	APIKey  string
	// Bypass treats every structurally valid NIK as verified. Enabled
	// explicitly, or implied when no API key is configured.
	Bypass bool
}

type SatuSehatConfig struct {
	AuthURL      string
	FHIRURL      string
	ClientID     string
	ClientSecret string
	OrgID        string
	Enabled      bool
	Timeout      time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	scope := QuotaScope(viper.GetString("QUOTA_SCOPE"))
	if scope != QuotaScopeDoctor {
		scope = QuotaScopeClinic
	}

	ssTimeout, err := time.ParseDuration(viper.GetString("SATUSEHAT_TIMEOUT"))
	if err != nil {
		ssTimeout = 10 * time.Second
	}

	dukcapilKey := viper.GetString("DUKCAPIL_API_KEY")

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Quota: QuotaConfig{
			Scope: scope,
		},
		BPJS: BPJSConfig{
			BaseURL:       viper.GetString("BPJS_BASE_URL"),
			ConsID:        viper.GetString("BPJS_CONS_ID"),
			Secret:        viper.GetString("BPJS_SECRET"),
			AllowOnOutage: viper.GetBool("BPJS_ALLOW_ON_OUTAGE"),
		},
		Dukcapil: DukcapilConfig{
			BaseURL: viper.GetString("DUKCAPIL_BASE_URL"),
			APIKey:  dukcapilKey,
			Bypass:  viper.GetBool("DUKCAPIL_BYPASS") || dukcapilKey == "",
		},
		SatuSehat: SatuSehatConfig{
			AuthURL:      viper.GetString("SATUSEHAT_AUTH_URL"),
			FHIRURL:      viper.GetString("SATUSEHAT_FHIR_URL"),
			ClientID:     viper.GetString("SATUSEHAT_CLIENT_ID"),
			ClientSecret: viper.GetString("SATUSEHAT_CLIENT_SECRET"),
			OrgID:        viper.GetString("SATUSEHAT_ORG_ID"),
			Enabled:      viper.GetBool("SATUSEHAT_ENABLED"),
			Timeout:      ssTimeout,
		},
	}

	return config, nil
}
