package models

// Config is the optional flakelab application config (~/.flakelab/config.yaml).
// Connection credentials never live here; they come from connections.toml.
type Config struct {
	DefaultConnection string      `yaml:"default_connection"`
	AgentsDir         string      `yaml:"agents_dir"`
	ExportDir         string      `yaml:"export_dir"`
	HistoryPath       string      `yaml:"history_path"`
	Logging           Logging     `yaml:"logging"`
	Deployment        Deployment  `yaml:"deployment"`
	Lab               LabVolumes  `yaml:"lab"`
}

type Logging struct {
	Level string `yaml:"level"` // DEBUG, INFO, WARNING, ERROR
	File  string `yaml:"file"`
}

// Deployment holds defaults for the deploy command
type Deployment struct {
	Variant      string `yaml:"variant"`   // "markets" or "dual-tool"
	Warehouse    string `yaml:"warehouse"` // warehouse for search services
	Seed         int64  `yaml:"seed"`      // 0 picks a time-based seed
	SkipValidate bool   `yaml:"skip_validate"`
}

// LabVolumes overrides the lab's synthetic data volumes. Zero means default.
type LabVolumes struct {
	Customers          int `yaml:"customers"`
	Products           int `yaml:"products"`
	Stores             int `yaml:"stores"`
	TransactionsPerDay int `yaml:"transactions_per_day"`
	HistoricalDays     int `yaml:"historical_days"`
	MaxTransactions    int `yaml:"max_transactions"`
}

// ApplyDefaults fills empty fields with built-in defaults
func (c *Config) ApplyDefaults() {
	if c.DefaultConnection == "" {
		c.DefaultConnection = "default"
	}
	if c.AgentsDir == "" {
		c.AgentsDir = "snowflake_intelligence_agents"
	}
	if c.ExportDir == "" {
		c.ExportDir = "fixtures"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.File == "" {
		c.Logging.File = "flakelab.log"
	}
	if c.Deployment.Variant == "" {
		c.Deployment.Variant = "markets"
	}
}
