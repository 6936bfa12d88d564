package twofactor

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

type Config struct {
	EncryptionKey     string        `env:"TWOFACTOR_ENCRYPTION_KEY,required"`                // Base64 key sealing TOTP seeds at rest
	Issuer            string        `env:"TWOFACTOR_ISSUER" envDefault:"Immigration AI"`     // Issuer label shown in authenticator apps
	BackupCodeCount   int           `env:"TWOFACTOR_BACKUP_CODE_COUNT" envDefault:"10"`      // Backup codes issued per enrollment
	MaxFailedAttempts int           `env:"TWOFACTOR_MAX_FAILED_ATTEMPTS" envDefault:"5"`     // Failed attempts allowed inside the window
	FailureWindow     time.Duration `env:"TWOFACTOR_FAILURE_WINDOW" envDefault:"15m"`        // Sliding window for the attempt throttle
}

// LoadConfig loads the two-factor configuration from environment variables.
// The environment is read once; subsequent calls return the cached value.
func LoadConfig() (Config, error) {
	configLoadFunc := func() (Config, error) {
		var cfg Config
		if err := env.Parse(&cfg); err != nil {
			return Config{}, err
		}
		// Additional validation
		if cfg.EncryptionKey == "" {
			return Config{}, ErrEncryptionKeyNotSet
		}
		return cfg, nil
	}

	var err error
	once.Do(func() {
		cfg, err = configLoadFunc()
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
