// Package config loads the service configuration from environment variables.
// Every setting has a default so the API starts with no environment at all;
// Validate reports every bad value at once.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/transfergraph/core/internal/parser"
)

type Config struct {
	Server  ServerConfig
	CORS    CORSConfig
	Ingest  IngestConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

type CORSConfig struct {
	// AllowedOrigins is a comma separated list; "*" allows any origin.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envAlt:"CORS_ALLOWED_ORIGIN" default:"*"`
}

type IngestConfig struct {
	MaxBodyBytes int64 `env:"INGEST_MAX_BODY_BYTES" default:"33554432"`

	// Shards above 1 fold tables of at least ShardThreshold rows in parallel.
	Shards         int `env:"INGEST_SHARDS" default:"1"`
	ShardThreshold int `env:"INGEST_SHARD_THRESHOLD" default:"50000"`

	MaxInvalidSamples int  `env:"INGEST_MAX_INVALID_SAMPLES" default:"100"`
	FoldEntityCase    bool `env:"INGEST_FOLD_ENTITY_CASE" default:"false"`

	// Extra synonyms, appended after the built-in ones.
	FromSynonyms   []string `env:"INGEST_FROM_SYNONYMS"`
	ToSynonyms     []string `env:"INGEST_TO_SYNONYMS"`
	AmountSynonyms []string `env:"INGEST_AMOUNT_SYNONYMS"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Options translates the ingest settings into parser options. The logger is
// left for the caller to attach.
func (c *IngestConfig) Options() parser.Options {
	opts := parser.DefaultOptions()
	opts.Synonyms = opts.Synonyms.Extend(parser.Synonyms{
		From:   c.FromSynonyms,
		To:     c.ToSynonyms,
		Amount: c.AmountSynonyms,
	})
	opts.Normalizer.FoldEntityCase = c.FoldEntityCase
	opts.Shards = c.Shards
	opts.ShardThreshold = c.ShardThreshold
	opts.MaxInvalidSamples = c.MaxInvalidSamples
	return opts
}
