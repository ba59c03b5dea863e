// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"printer-bridge/internal/protocol"
)

// Config represents the application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Printer   PrinterConfig   `mapstructure:"printer"`
	Transport TransportConfig `mapstructure:"transport"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Events    EventsConfig    `mapstructure:"events"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLS          TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// PrinterConfig controls how documents are built and sent
type PrinterConfig struct {
	Emulation              string        `mapstructure:"emulation"`
	OpenTimeout            time.Duration `mapstructure:"open_timeout"`
	WriteTimeout           time.Duration `mapstructure:"write_timeout"`
	StatusTimeout          time.Duration `mapstructure:"status_timeout"`
	DotsPerMM              int           `mapstructure:"dots_per_mm"`
	CheckStatusBeforePrint bool          `mapstructure:"check_status_before_print"`
	DefaultCharset         string        `mapstructure:"default_charset"`
	Encoding               string        `mapstructure:"encoding"`
	DefaultInterface       string        `mapstructure:"default_interface"`
	ImageFetchTimeout      time.Duration `mapstructure:"image_fetch_timeout"`
	ImageMaxBytes          int64         `mapstructure:"image_max_bytes"`
	AllowLocalImages       bool          `mapstructure:"allow_local_images"`
}

// TransportConfig holds per transport defaults
type TransportConfig struct {
	TCP    TCPTransportConfig    `mapstructure:"tcp"`
	Serial SerialTransportConfig `mapstructure:"serial"`
	USB    USBTransportConfig    `mapstructure:"usb"`
}

// TCPTransportConfig represents LAN printer defaults
type TCPTransportConfig struct {
	Port           int           `mapstructure:"port"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	KeepAlive      bool          `mapstructure:"keep_alive"`
}

// SerialTransportConfig represents serial and Bluetooth SPP defaults
type SerialTransportConfig struct {
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	StopBits int           `mapstructure:"stop_bits"`
	Parity   string        `mapstructure:"parity"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// USBTransportConfig represents USB defaults
type USBTransportConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// MonitorConfig controls the passive status poller
type MonitorConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Interval         time.Duration `mapstructure:"interval"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// DiscoveryConfig controls printer search
type DiscoveryConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Interfaces  []string      `mapstructure:"interfaces"`
	LANHosts    []string      `mapstructure:"lan_hosts"`
	LANCIDR     string        `mapstructure:"lan_cidr"`
	LANPort     int           `mapstructure:"lan_port"`
	Concurrency int           `mapstructure:"concurrency"`
	// USBDevices extends the built-in table of known USB printers
	USBDevices []USBDeviceConfig `mapstructure:"usb_devices"`
}

// USBDeviceConfig names a USB printer by vendor and product id. A zero
// product id registers the vendor only.
type USBDeviceConfig struct {
	VendorID  int    `mapstructure:"vendor_id"`
	ProductID int    `mapstructure:"product_id"`
	Brand     string `mapstructure:"brand"`
	Vendor    string `mapstructure:"vendor"`
	Model     string `mapstructure:"model"`
}

// EventsConfig controls event fan-out
type EventsConfig struct {
	BufferSize int        `mapstructure:"buffer_size"`
	MQTT       MQTTConfig `mapstructure:"mqtt"`
}

// MQTTConfig configures the optional MQTT relay of status events
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         byte   `mapstructure:"qos"`
}

// JournalConfig represents the optional PostgreSQL print-job journal
type JournalConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"dbname"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
	Retention    time.Duration `mapstructure:"retention"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from an optional file, an optional .env file and
// environment variables. An empty configFile searches the default locations.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/printer-bridge")
	}

	// Environment variable support
	v.SetEnvPrefix("PRINTER_BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "printer-bridge")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8084")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls.enabled", false)

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Printer defaults
	v.SetDefault("printer.emulation", "escpos")
	v.SetDefault("printer.open_timeout", "10s")
	v.SetDefault("printer.write_timeout", "30s")
	v.SetDefault("printer.status_timeout", "3s")
	v.SetDefault("printer.dots_per_mm", 8)
	v.SetDefault("printer.check_status_before_print", false)
	v.SetDefault("printer.default_charset", "usa")
	v.SetDefault("printer.encoding", "us-ascii")
	v.SetDefault("printer.default_interface", "unknown")
	v.SetDefault("printer.image_fetch_timeout", "10s")
	v.SetDefault("printer.image_max_bytes", 8<<20)
	v.SetDefault("printer.allow_local_images", false)

	// Transport defaults
	v.SetDefault("transport.tcp.port", 9100)
	v.SetDefault("transport.tcp.connect_timeout", "10s")
	v.SetDefault("transport.tcp.read_timeout", "5s")
	v.SetDefault("transport.tcp.write_timeout", "30s")
	v.SetDefault("transport.tcp.keep_alive", true)

	v.SetDefault("transport.serial.baud_rate", 9600)
	v.SetDefault("transport.serial.data_bits", 8)
	v.SetDefault("transport.serial.stop_bits", 1)
	v.SetDefault("transport.serial.parity", "none")
	v.SetDefault("transport.serial.timeout", "5s")

	v.SetDefault("transport.usb.timeout", "5s")

	// Monitor defaults
	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.interval", "5s")
	v.SetDefault("monitor.failure_threshold", 3)
	v.SetDefault("monitor.open_timeout", "30s")

	// Discovery defaults
	v.SetDefault("discovery.timeout", "10s")
	v.SetDefault("discovery.interfaces", []string{"usb", "lan", "bluetooth"})
	v.SetDefault("discovery.lan_hosts", []string{})
	v.SetDefault("discovery.lan_cidr", "")
	v.SetDefault("discovery.lan_port", 9100)
	v.SetDefault("discovery.concurrency", 32)

	// Events defaults
	v.SetDefault("events.buffer_size", 256)
	v.SetDefault("events.mqtt.enabled", false)
	v.SetDefault("events.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("events.mqtt.client_id", "printer-bridge")
	v.SetDefault("events.mqtt.topic_prefix", "printer-bridge/events")
	v.SetDefault("events.mqtt.qos", 1)

	// Journal defaults
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.host", "localhost")
	v.SetDefault("journal.port", 5432)
	v.SetDefault("journal.user", "postgres")
	v.SetDefault("journal.password", "postgres")
	v.SetDefault("journal.dbname", "printer_bridge")
	v.SetDefault("journal.sslmode", "disable")
	v.SetDefault("journal.max_open_conns", 10)
	v.SetDefault("journal.max_idle_conns", 2)
	v.SetDefault("journal.max_lifetime", "5m")
	v.SetDefault("journal.retention", "720h")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	validEnvs := []string{"development", "staging", "production", "test"}
	if !contains(validEnvs, config.App.Environment) {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(validLevels, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	validEmulations := []string{"escpos", "starline"}
	if !contains(validEmulations, config.Printer.Emulation) {
		return fmt.Errorf("printer.emulation must be one of: %v", validEmulations)
	}

	if config.Printer.OpenTimeout <= 0 {
		return fmt.Errorf("printer.open_timeout must be positive")
	}
	if config.Printer.DotsPerMM <= 0 {
		return fmt.Errorf("printer.dots_per_mm must be positive")
	}

	if config.Journal.Enabled {
		if config.Journal.Host == "" {
			return fmt.Errorf("journal.host is required when the journal is enabled")
		}
		if config.Journal.DBName == "" {
			return fmt.Errorf("journal.dbname is required when the journal is enabled")
		}
	}

	for i, d := range config.Discovery.USBDevices {
		if d.VendorID <= 0 || d.VendorID > 0xFFFF {
			return fmt.Errorf("discovery.usb_devices[%d].vendor_id must be between 1 and 0xFFFF", i)
		}
		if d.ProductID < 0 || d.ProductID > 0xFFFF {
			return fmt.Errorf("discovery.usb_devices[%d].product_id must be between 0 and 0xFFFF", i)
		}
	}

	if config.Events.MQTT.Enabled && config.Events.MQTT.Broker == "" {
		return fmt.Errorf("events.mqtt.broker is required when the relay is enabled")
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

// GetDatabaseDSN returns the journal connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Journal.Host, c.Journal.Port, c.Journal.User,
		c.Journal.Password, c.Journal.DBName, c.Journal.SSLMode)
}

// TransportDefaults converts the transport section for the protocol factory
func (c *Config) TransportDefaults() protocol.Defaults {
	return protocol.Defaults{
		TCP: protocol.TCPConfig{
			Port:         c.Transport.TCP.Port,
			KeepAlive:    c.Transport.TCP.KeepAlive,
			Timeout:      c.Transport.TCP.ConnectTimeout,
			ReadTimeout:  c.Transport.TCP.ReadTimeout,
			WriteTimeout: c.Transport.TCP.WriteTimeout,
		},
		Serial: protocol.SerialConfig{
			BaudRate: c.Transport.Serial.BaudRate,
			DataBits: c.Transport.Serial.DataBits,
			StopBits: c.Transport.Serial.StopBits,
			Parity:   c.Transport.Serial.Parity,
			Timeout:  c.Transport.Serial.Timeout,
		},
		USB: protocol.USBConfig{
			Timeout: c.Transport.USB.Timeout,
		},
	}
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
