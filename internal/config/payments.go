package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PaymentsConfig carries operator-tunable payment settings. Values are
// loaded from payments.yml and may be reloaded at runtime without a
// restart.
type PaymentsConfig struct {
	Webhook   WebhookTuning   `mapstructure:"webhook"`
	RateLimit RateLimitTuning `mapstructure:"rateLimit"`
	Receipt   ReceiptTuning   `mapstructure:"receipt"`
}

type WebhookTuning struct {
	SignatureToleranceSeconds int `mapstructure:"signatureToleranceSeconds"`
}

type RateLimitTuning struct {
	WebhookCapacity     int     `mapstructure:"webhookCapacity"`
	WebhookRefillPerSec float64 `mapstructure:"webhookRefillPerSec"`
	LoginCapacity       int     `mapstructure:"loginCapacity"`
	LoginRefillPerSec   float64 `mapstructure:"loginRefillPerSec"`
}

type ReceiptTuning struct {
	BusinessName string `mapstructure:"businessName"`
	SupportEmail string `mapstructure:"supportEmail"`
	FooterNote   string `mapstructure:"footerNote"`
}

func DefaultPaymentsConfig() PaymentsConfig {
	return PaymentsConfig{
		Webhook: WebhookTuning{
			SignatureToleranceSeconds: 300,
		},
		RateLimit: RateLimitTuning{
			WebhookCapacity:     60,
			WebhookRefillPerSec: 10,
			LoginCapacity:       10,
			LoginRefillPerSec:   0.5,
		},
		Receipt: ReceiptTuning{
			BusinessName: "Doula Life",
			SupportEmail: "support@doulalife.app",
			FooterNote:   "Thank you for choosing Doula Life.",
		},
	}
}

type PaymentsConfigHolder struct {
	current atomic.Value // holds PaymentsConfig
}

// NewStaticPaymentsConfigHolder wraps a fixed config with no file watching.
// Used by tests and one-shot tooling.
func NewStaticPaymentsConfigHolder(cfg PaymentsConfig) *PaymentsConfigHolder {
	holder := &PaymentsConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPaymentsConfigHolder() (*PaymentsConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("payments")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/doula-life/config") // Volume-mounted config
	v.AddConfigPath("/etc/doula-life")            // System config
	v.AddConfigPath("./config")
	v.AddConfigPath(".") // Current directory (dev mode)

	v.SetEnvPrefix("DOULALIFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultPaymentsConfig()
		v.SetDefault("payments.webhook", defaults.Webhook)
		v.SetDefault("payments.rateLimit", defaults.RateLimit)
		v.SetDefault("payments.receipt", defaults.Receipt)
	}

	var cfg PaymentsConfig
	if err := v.UnmarshalKey("payments", &cfg); err != nil {
		return nil, err
	}
	if err := validatePaymentsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PaymentsConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PaymentsConfig
		if err := v.UnmarshalKey("payments", &updated); err != nil {
			log.Printf("[payments-config] reload failed: %v", err)
			return
		}
		if err := validatePaymentsConfig(updated); err != nil {
			log.Printf("[payments-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[payments-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PaymentsConfigHolder) Get() PaymentsConfig {
	return h.current.Load().(PaymentsConfig)
}

func validatePaymentsConfig(cfg PaymentsConfig) error {
	if cfg.Webhook.SignatureToleranceSeconds <= 0 {
		return errors.New("payments.webhook.signatureToleranceSeconds must be positive")
	}
	if cfg.RateLimit.WebhookCapacity <= 0 || cfg.RateLimit.WebhookRefillPerSec <= 0 {
		return errors.New("payments.rateLimit webhook settings must be positive")
	}
	if cfg.RateLimit.LoginCapacity <= 0 || cfg.RateLimit.LoginRefillPerSec <= 0 {
		return errors.New("payments.rateLimit login settings must be positive")
	}
	if strings.TrimSpace(cfg.Receipt.BusinessName) == "" {
		return errors.New("payments.receipt.businessName cannot be empty")
	}
	return nil
}
