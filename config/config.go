// MIT License
//
// Copyright (c) 2026 The actorchat Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/actorchat/actorchat/log"
)

// Prefix is the prefix of every environment variable read by Load
const Prefix = "ACTORCHAT_"

// store backends
const (
	StoreMemory = "memory"
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
)

// Config represents the platform configuration
type Config struct {
	// Specifies the actor system name
	Name string `env:"NAME" envDefault:"actorchat" validate:"required,alphanum"`
	// Specifies the log level: debug, info, warn, error
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
	// Specifies the build version recorded in durable images
	BuildVersion string `env:"BUILD_VERSION" envDefault:"dev" validate:"required"`

	Store StoreConfig `envPrefix:"STORE_"`

	// Specifies how long external callers wait for an answer
	AskTimeout time.Duration `env:"ASK_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	// Specifies how long an actor waits for a peer reply
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	// Specifies the maximum number of in-flight peer requests per actor, 0 for no limit
	MaxInFlight int `env:"MAX_IN_FLIGHT" envDefault:"0" validate:"gte=0"`
	// Specifies how long Stop waits for actors to snapshot their state
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"gt=0"`

	Jobs JobsConfig `envPrefix:"JOBS_"`

	// Specifies the principal allowed to suspend users
	ServicePrincipal string `env:"SERVICE_PRINCIPAL" envDefault:"service" validate:"required"`
	// Specifies the principal allowed to add registry tokens
	GovernancePrincipal string `env:"GOVERNANCE_PRINCIPAL" envDefault:"governance" validate:"required"`
	// Specifies the maximum number of participants of a group
	MaxParticipants int `env:"MAX_PARTICIPANTS" envDefault:"1000" validate:"gt=0"`
}

// StoreConfig selects the durable store backend
type StoreConfig struct {
	Backend    string `env:"BACKEND" envDefault:"memory" validate:"oneof=memory bolt redis"`
	BucketSize uint32 `env:"BUCKET_SIZE" envDefault:"262144" validate:"gt=24"`

	BoltPath string `env:"BOLT_PATH" envDefault:"data/actorchat.db" validate:"required_if=Backend bolt"`

	RedisAddress  string `env:"REDIS_ADDRESS" validate:"required_if=Backend redis,omitempty,hostname_port"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	RedisRetries  int    `env:"REDIS_RETRIES" envDefault:"5" validate:"gte=1"`
}

// JobsConfig holds the intervals of the background jobs
type JobsConfig struct {
	RetryInterval      time.Duration `env:"RETRY_INTERVAL" envDefault:"30s" validate:"gt=0"`
	SuspensionInterval time.Duration `env:"SUSPENSION_INTERVAL" envDefault:"1m" validate:"gt=0"`
	HotGroupsInterval  time.Duration `env:"HOT_GROUPS_INTERVAL" envDefault:"5m" validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the configuration from the process environment
func Load() (*Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads the configuration from the given variables instead of the
// process environment. Keys carry the ACTORCHAT_ prefix.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	cfg := new(Config)
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s %s", fieldErr.Namespace(), validationMessage(fieldErr)))
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(messages, "; "))
}

// Level returns the configured log level
func (c *Config) Level() log.Level {
	return log.ParseLevel(c.LogLevel)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "hostname_port":
		return "must be a host:port address"
	}
	return "is invalid"
}
