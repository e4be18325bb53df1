package config

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Type     string     `yaml:"type"`     // "sqlite", "mysql" or "postgres".
	Host     string     `yaml:"host"`     // Database host address.
	Port     int        `yaml:"port"`     // Database port number.
	Database string     `yaml:"database"` // Database name, or the file path for sqlite.
	User     string     `yaml:"user"`
	Password string     `yaml:"password"`
	Sslmode  string     `yaml:"sslmode"` // PostgreSQL only.
	Pool     PoolConfig `yaml:"pool"`
}
