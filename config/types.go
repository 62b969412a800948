// Package config provides YAML-file configuration loading for a
// hyperborea node: environment-specific file resolution, ${VAR}
// substitution, and environment-variable overrides, following the
// teacher project's own config loader idiom.
package config

import "time"

// Config is the top-level configuration for a hyperborea node.
type Config struct {
	Environment string          `yaml:"environment" json:"environment"`
	Node        NodeConfig      `yaml:"node" json:"node"`
	Router      RouterConfig    `yaml:"router" json:"router"`
	Inbox       InboxConfig     `yaml:"inbox" json:"inbox"`
	Transport   TransportConfig `yaml:"transport" json:"transport"`
	Traversal   TraversalConfig `yaml:"traversal" json:"traversal"`
	Logging     LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// NodeConfig identifies the node's own key material. SecretKeyBase64
// is ordinarily supplied through ${VAR} substitution (e.g.
// "${HYPERBOREA_SECRET_KEY}") rather than written in plaintext.
type NodeConfig struct {
	SecretKeyBase64 string `yaml:"secret_key_base64" json:"secret_key_base64"`
}

// RouterConfig configures the routing table's three backing stores.
type RouterConfig struct {
	Capacity   int           `yaml:"capacity" json:"capacity"`
	TimeToIdle time.Duration `yaml:"time_to_idle" json:"time_to_idle"`
}

// InboxConfig configures the per-recipient message queue.
type InboxConfig struct {
	Capacity        int           `yaml:"capacity" json:"capacity"`
	TimeToIdle      time.Duration `yaml:"time_to_idle" json:"time_to_idle"`
	MaxPerRecipient int           `yaml:"max_per_recipient" json:"max_per_recipient"`
	MaxMessageBytes int           `yaml:"max_message_bytes" json:"max_message_bytes"`
}

// TransportConfig configures the node's listen address and which
// transport.Transport implementations it exposes.
type TransportConfig struct {
	ListenAddress   string `yaml:"listen_address" json:"listen_address"`
	PublicAddress   string `yaml:"public_address" json:"public_address"`
	EnableWebSocket bool   `yaml:"enable_websocket" json:"enable_websocket"`
}

// TraversalConfig configures the periodic server-discovery sweep.
type TraversalConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Interval time.Duration `yaml:"interval" json:"interval"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Path    string `yaml:"path" json:"path"`
}
