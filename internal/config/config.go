// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

// CurrentSchemaVersion defines the current schema version of the configuration.
const CurrentSchemaVersion = "1.0"

// Config is the top-level sphinx configuration. Every block is optional;
// ApplyDefaults fills in whatever the file leaves out.
type Config struct {
	// Schema version for backward compatibility.
	// @default: "1.0"
	SchemaVersion string `hcl:"schema_version,optional" json:"schema_version,omitempty"`

	Queue    *QueueConfig    `hcl:"queue,block" json:"queue,omitempty"`
	Snapshot *SnapshotConfig `hcl:"snapshot,block" json:"snapshot,omitempty"`
	Policy   *PolicyConfig   `hcl:"policy,block" json:"policy,omitempty"`
	Prompt   *PromptConfig   `hcl:"prompt,block" json:"prompt,omitempty"`
	Log      *LogConfig      `hcl:"log,block" json:"log,omitempty"`
	API      *APIConfig      `hcl:"api,block" json:"api,omitempty"`
	Firewall *FirewallConfig `hcl:"firewall,block" json:"firewall,omitempty"`
}

// QueueConfig selects the netfilter queue.
type QueueConfig struct {
	// @default: 0
	// @min: 0
	// @max: 65535
	Number int `hcl:"number,optional" json:"number,omitempty"`
	// Bytes of each packet copied to userspace.
	// @default: 65535
	// @min: 20
	// @max: 65535
	MaxPacketLen int `hcl:"max_packet_len,optional" json:"max_packet_len,omitempty"`
	// @default: 1024
	MaxQueueLen int `hcl:"max_queue_len,optional" json:"max_queue_len,omitempty"`
}

// Snapshot sources.
const (
	SourceSS      = "ss"
	SourceNetlink = "netlink"
)

// SnapshotConfig selects how the socket table is read.
type SnapshotConfig struct {
	// @enum: ss, netlink
	// @default: "ss"
	Source  string   `hcl:"source,optional" json:"source,omitempty"`
	Command string   `hcl:"command,optional" json:"command,omitempty"`
	Args    []string `hcl:"args,optional" json:"args,omitempty"`
	// procfs mount point used by the netlink source.
	// @default: "/proc"
	ProcRoot string `hcl:"proc_root,optional" json:"proc_root,omitempty"`
}

// PolicyConfig holds the verdict applied when no process owns a packet.
type PolicyConfig struct {
	// @enum: accept, drop
	// @default: "accept"
	Unmatched string `hcl:"unmatched,optional" json:"unmatched,omitempty"`
}

// PromptConfig controls the interactive question.
type PromptConfig struct {
	// auto shows a form on a terminal unless a custom affirmative is set.
	// @enum: line, form, auto
	// @default: "line"
	Style string `hcl:"style,optional" json:"style,omitempty"`
	// Answer that allows a connection in line mode.
	// @default: "y"
	Affirmative string `hcl:"affirmative,optional" json:"affirmative,omitempty"`
	// Optional MaxMind country database for destination annotation.
	GeoIPDB string `hcl:"geoip_db,optional" json:"geoip_db,omitempty"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// @default: "info"
	Level string `hcl:"level,optional" json:"level,omitempty"`
	// @enum: text, json, logfmt
	// @default: "text"
	Format string `hcl:"format,optional" json:"format,omitempty"`
	// Rotated log file; stderr when empty.
	File string `hcl:"file,optional" json:"file,omitempty"`
}

// APIConfig controls the read-only status API.
type APIConfig struct {
	// host:port to listen on; the API is off when empty.
	Listen string `hcl:"listen,optional" json:"listen,omitempty"`
}

// FirewallConfig controls the nftables rules that feed the queue.
type FirewallConfig struct {
	// Install rules on start and remove them on exit.
	// @default: false
	InstallRules bool `hcl:"install_rules,optional" json:"install_rules,omitempty"`
	// @default: "sphinx"
	Table string `hcl:"table,optional" json:"table,omitempty"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills missing blocks and zero fields.
func (c *Config) ApplyDefaults() {
	if c.SchemaVersion == "" {
		c.SchemaVersion = CurrentSchemaVersion
	}

	if c.Queue == nil {
		c.Queue = &QueueConfig{}
	}
	if c.Queue.MaxPacketLen == 0 {
		c.Queue.MaxPacketLen = 0xffff
	}
	if c.Queue.MaxQueueLen == 0 {
		c.Queue.MaxQueueLen = 1024
	}

	if c.Snapshot == nil {
		c.Snapshot = &SnapshotConfig{}
	}
	if c.Snapshot.Source == "" {
		c.Snapshot.Source = SourceSS
	}
	if c.Snapshot.ProcRoot == "" {
		c.Snapshot.ProcRoot = "/proc"
	}

	if c.Policy == nil {
		c.Policy = &PolicyConfig{}
	}
	if c.Policy.Unmatched == "" {
		c.Policy.Unmatched = "accept"
	}

	if c.Prompt == nil {
		c.Prompt = &PromptConfig{}
	}
	if c.Prompt.Style == "" {
		c.Prompt.Style = "line"
	}
	if c.Prompt.Affirmative == "" {
		c.Prompt.Affirmative = "y"
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.API == nil {
		c.API = &APIConfig{}
	}

	if c.Firewall == nil {
		c.Firewall = &FirewallConfig{}
	}
	if c.Firewall.Table == "" {
		c.Firewall.Table = "sphinx"
	}
}
