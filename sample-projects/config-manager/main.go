package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/codec"
	d "github.com/reoring/moderu/dsl"
	"github.com/reoring/moderu/i18n"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	Features FeaturesConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Port        int64
	Host        string
	TLS         TLSConfig
	Cors        CorsConfig
	Metadata    map[string]string
}

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type CorsConfig struct {
	Enabled bool
	Origins []string
}

type DatabaseConfig struct {
	Host         string
	Port         int64
	Database     string
	Username     string
	Password     string
	MaxConns     int64
	MaxIdleConns int64
	SSLMode      string
}

type RedisConfig struct {
	Host     string
	Port     int64
	Database int64
	Password string
	PoolSize int64
}

type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

type FeaturesConfig struct {
	Analytics bool
	Debugging bool
}

// stringMapCodec maps a wire object of string values to map[string]string.
// It demonstrates plugging a custom codec into an attribute.
type stringMapCodec struct{}

func (stringMapCodec) DecodeValue(ctx context.Context, raw any) (map[string]string, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "expected object of strings"}}
	}
	out := make(map[string]string, len(m))
	var iss moderu.Issues
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			iss = moderu.AppendIssues(iss, moderu.Issue{Path: moderu.Path().Field(k).Pointer(), Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "expected string"})
			continue
		}
		out[k] = s
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (stringMapCodec) EncodeValue(ctx context.Context, v map[string]string) (any, error) {
	out := make(map[string]any, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out, nil
}

// stringListCodec maps a wire array of strings to []string.
type stringListCodec struct{}

func (stringListCodec) DecodeValue(ctx context.Context, raw any) ([]string, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, moderu.Issues{{Path: "/", Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "expected array of strings"}}
	}
	out := make([]string, 0, len(arr))
	var iss moderu.Issues
	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			iss = moderu.AppendIssues(iss, moderu.Issue{Path: moderu.Path().Index(i).Pointer(), Code: moderu.CodeInvalidType, Message: i18n.T(moderu.CodeInvalidType, nil), Hint: "expected string"})
			continue
		}
		out = append(out, s)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (stringListCodec) EncodeValue(ctx context.Context, v []string) (any, error) {
	out := make([]any, 0, len(v))
	for _, s := range v {
		out = append(out, s)
	}
	return out, nil
}

func tlsSchema() moderu.Schema[TLSConfig] {
	return d.Model[TLSConfig]().
		Field("enabled", d.AttrOf(func(c *TLSConfig) *bool { return &c.Enabled }, codec.Bool())).Optional().
		Field("cert_file", d.AttrOf(func(c *TLSConfig) *string { return &c.CertFile }, codec.String())).Key("certFile").Optional().
		Field("key_file", d.AttrOf(func(c *TLSConfig) *string { return &c.KeyFile }, codec.String())).Key("keyFile").Optional().
		MustBuild()
}

func corsSchema() moderu.Schema[CorsConfig] {
	return d.Model[CorsConfig]().
		Field("enabled", d.AttrOf(func(c *CorsConfig) *bool { return &c.Enabled }, codec.Bool())).Optional().
		Field("origins", d.AttrOf(func(c *CorsConfig) *[]string { return &c.Origins }, stringListCodec{})).Optional().
		MustBuild()
}

func appSchema() moderu.Schema[AppConfig] {
	return d.Model[AppConfig]().
		Field("name", d.AttrOf(func(c *AppConfig) *string { return &c.Name }, codec.String())).
		Field("version", d.AttrOf(func(c *AppConfig) *string { return &c.Version }, codec.String())).
		Field("environment", d.AttrOf(func(c *AppConfig) *string { return &c.Environment }, codec.String())).Optional().
		Field("port", d.AttrOf(func(c *AppConfig) *int64 { return &c.Port }, codec.Int64())).Optional().
		Field("host", d.AttrOf(func(c *AppConfig) *string { return &c.Host }, codec.String())).Optional().
		Field("tls", d.Rel(func(c *AppConfig) *TLSConfig { return &c.TLS }, tlsSchema())).Optional().
		Field("cors", d.Rel(func(c *AppConfig) *CorsConfig { return &c.Cors }, corsSchema())).Optional().
		Field("metadata", d.AttrOf(func(c *AppConfig) *map[string]string { return &c.Metadata }, stringMapCodec{})).Optional().
		MustBuild()
}

func databaseSchema() moderu.Schema[DatabaseConfig] {
	return d.Model[DatabaseConfig]().
		Field("host", d.AttrOf(func(c *DatabaseConfig) *string { return &c.Host }, codec.String())).
		Field("port", d.AttrOf(func(c *DatabaseConfig) *int64 { return &c.Port }, codec.Int64())).Optional().
		Field("database", d.AttrOf(func(c *DatabaseConfig) *string { return &c.Database }, codec.String())).
		Field("username", d.AttrOf(func(c *DatabaseConfig) *string { return &c.Username }, codec.String())).
		Field("password", d.AttrOf(func(c *DatabaseConfig) *string { return &c.Password }, codec.String())).Optional().
		Field("max_conns", d.AttrOf(func(c *DatabaseConfig) *int64 { return &c.MaxConns }, codec.Int64())).Key("maxConns").Optional().
		Field("max_idle_conns", d.AttrOf(func(c *DatabaseConfig) *int64 { return &c.MaxIdleConns }, codec.Int64())).Key("maxIdleConns").Optional().
		Field("ssl_mode", d.AttrOf(func(c *DatabaseConfig) *string { return &c.SSLMode }, codec.String())).Key("sslMode").Optional().
		MustBuild()
}

func redisSchema() moderu.Schema[RedisConfig] {
	return d.Model[RedisConfig]().
		Field("host", d.AttrOf(func(c *RedisConfig) *string { return &c.Host }, codec.String())).Optional().
		Field("port", d.AttrOf(func(c *RedisConfig) *int64 { return &c.Port }, codec.Int64())).Optional().
		Field("database", d.AttrOf(func(c *RedisConfig) *int64 { return &c.Database }, codec.Int64())).Optional().
		Field("password", d.AttrOf(func(c *RedisConfig) *string { return &c.Password }, codec.String())).Optional().
		Field("pool_size", d.AttrOf(func(c *RedisConfig) *int64 { return &c.PoolSize }, codec.Int64())).Key("poolSize").Optional().
		MustBuild()
}

func loggingSchema() moderu.Schema[LoggingConfig] {
	return d.Model[LoggingConfig]().
		Field("level", d.AttrOf(func(c *LoggingConfig) *string { return &c.Level }, codec.String())).Optional().
		Field("format", d.AttrOf(func(c *LoggingConfig) *string { return &c.Format }, codec.String())).Optional().
		Field("output", d.AttrOf(func(c *LoggingConfig) *string { return &c.Output }, codec.String())).Optional().
		MustBuild()
}

func featuresSchema() moderu.Schema[FeaturesConfig] {
	return d.Model[FeaturesConfig]().
		Field("analytics", d.AttrOf(func(c *FeaturesConfig) *bool { return &c.Analytics }, codec.Bool())).Optional().
		Field("debugging", d.AttrOf(func(c *FeaturesConfig) *bool { return &c.Debugging }, codec.Bool())).Optional().
		MustBuild()
}

func configSchema() moderu.Schema[Config] {
	return d.Model[Config]().
		Field("app", d.Rel(func(c *Config) *AppConfig { return &c.App }, appSchema())).
		Field("database", d.Rel(func(c *Config) *DatabaseConfig { return &c.Database }, databaseSchema())).
		Field("redis", d.Rel(func(c *Config) *RedisConfig { return &c.Redis }, redisSchema())).Optional().
		Field("logging", d.Rel(func(c *Config) *LoggingConfig { return &c.Logging }, loggingSchema())).Optional().
		Field("features", d.Rel(func(c *Config) *FeaturesConfig { return &c.Features }, featuresSchema())).Optional().
		MustBuild()
}

// ConfigManager handles configuration loading and mapping
type ConfigManager struct {
	schema moderu.Schema[Config]
}

func NewConfigManager() *ConfigManager {
	return &ConfigManager{schema: configSchema()}
}

func (cm *ConfigManager) LoadConfig(env string) (Config, error) {
	ctx := context.Background()

	// Load base configuration
	baseData, err := cm.loadFile("base.yaml")
	if err != nil {
		return Config{}, fmt.Errorf("failed to load base config: %w", err)
	}

	// Expand environment variables in base config
	baseData = cm.expandEnvVars(baseData)

	data := baseData

	// Overlay environment-specific configuration if it exists; overlay files
	// only carry the keys they override, so the documents are merged before
	// mapping rather than decoded separately.
	envFile := fmt.Sprintf("%s.yaml", env)
	if cm.fileExists(envFile) {
		envData, err := cm.loadFile(envFile)
		if err != nil {
			return Config{}, fmt.Errorf("failed to load %s config: %w", env, err)
		}
		data, err = overlayYAML(baseData, cm.expandEnvVars(envData))
		if err != nil {
			return Config{}, fmt.Errorf("failed to overlay %s config: %w", env, err)
		}
	}

	// Decode with metadata: presence tells us which sections the files
	// actually carried, so defaults land only on the missing ones.
	decoded, err := moderu.DecodeFromWithMeta(ctx, cm.schema, moderu.YAMLBytes(data))
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse %s config: %w", env, err)
	}

	return applyDefaults(decoded.Value, decoded.Presence), nil
}

// overlayYAML deep-merges the override document onto the base document.
func overlayYAML(baseData, envData []byte) ([]byte, error) {
	var base, env map[string]any
	if err := yaml.Unmarshal(baseData, &base); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(envData, &env); err != nil {
		return nil, err
	}
	return yaml.Marshal(deepMerge(base, env))
}

func deepMerge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if ov, ok := v.(map[string]any); ok {
			if bv, ok := out[k].(map[string]any); ok {
				out[k] = deepMerge(bv, ov)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func (cm *ConfigManager) ValidateConfig(env string) error {
	config, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}

	// Additional validation logic
	if config.App.Port < 1 || config.App.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.App.Port)
	}

	if config.App.TLS.Enabled && (config.App.TLS.CertFile == "" || config.App.TLS.KeyFile == "") {
		return fmt.Errorf("TLS enabled but cert/key files not specified")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[config.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	fmt.Printf("✅ Configuration for environment '%s' is valid!\n", env)
	return nil
}

func (cm *ConfigManager) ShowConfig(env string, maskSecrets bool) error {
	config, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}

	if maskSecrets {
		config = cm.maskSecrets(config)
	}

	// Encode back to the wire form so the dump shows canonical keys
	rec, err := cm.schema.Encode(context.Background(), config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	fmt.Printf("📋 Configuration for environment: %s\n", env)
	fmt.Println("=" + strings.Repeat("=", len(env)+25))
	fmt.Print(string(data))

	return nil
}

func (cm *ConfigManager) GenerateTemplate() error {
	// Generate template configurations
	templates := map[string]string{
		"base.yaml": `# Base configuration (common settings)
app:
  name: "MyWebApp"
  version: "1.0.0"
  host: "0.0.0.0"
  port: 8080
  tls:
    enabled: false
  cors:
    enabled: true
    origins: ["*"]
  metadata:
    author: "Your Name"
    description: "Web application"

database:
  host: "localhost"
  port: 5432
  database: "myapp"
  username: "postgres"
  maxConns: 10
  maxIdleConns: 5
  sslMode: "prefer"

redis:
  host: "localhost"
  port: 6379
  database: 0
  poolSize: 10

logging:
  level: "info"
  format: "json"
  output: "stdout"

features:
  analytics: true
  debugging: false
`,
		"development.yaml": `# Development environment overrides
app:
  environment: "development"
  port: 3000

database:
  password: "${DB_PASSWORD:-dev_password}"
  sslMode: "disable"

logging:
  level: "debug"

features:
  debugging: true
`,
		"production.yaml": `# Production environment overrides
app:
  environment: "production"
  port: 80
  tls:
    enabled: true
    certFile: "${TLS_CERT_FILE}"
    keyFile: "${TLS_KEY_FILE}"
  cors:
    origins: ["https://example.com", "https://app.example.com"]

database:
  host: "${DB_HOST}"
  password: "${DB_PASSWORD}"
  maxConns: 50
  maxIdleConns: 10
  sslMode: "require"

redis:
  host: "${REDIS_HOST}"
  password: "${REDIS_PASSWORD}"
  poolSize: 50

logging:
  level: "warn"
  output: "${LOG_OUTPUT:-stdout}"

features:
  debugging: false
`,
	}

	for filename, content := range templates {
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		fmt.Printf("📝 Generated %s\n", filename)
	}

	fmt.Println("✅ Template configuration files generated!")
	fmt.Println("\n📖 Next steps:")
	fmt.Println("1. Edit the configuration files as needed")
	fmt.Println("2. Set required environment variables")
	fmt.Println("3. Validate with: go run . validate --env=development")

	return nil
}

func (cm *ConfigManager) loadFile(filename string) ([]byte, error) {
	if !cm.fileExists(filename) {
		return nil, fmt.Errorf("file %s does not exist", filename)
	}
	return os.ReadFile(filename)
}

func (cm *ConfigManager) fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

func (cm *ConfigManager) expandEnvVars(data []byte) []byte {
	content := string(data)

	// Match ${VAR} and ${VAR:-default} patterns
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	result := re.ReplaceAllStringFunc(content, func(match string) string {
		// Remove ${ and }
		varExpr := match[2 : len(match)-1]

		// Check for default value syntax
		if strings.Contains(varExpr, ":-") {
			parts := strings.SplitN(varExpr, ":-", 2)
			varName := parts[0]
			defaultValue := parts[1]

			if value := os.Getenv(varName); value != "" {
				return value
			}
			return defaultValue
		}

		// Simple variable substitution
		return os.Getenv(varExpr)
	})

	return []byte(result)
}

// applyDefaults fills settings the files did not carry. Defaults live here
// rather than in the field plan: the mapping layer reports what the wire
// carried, the application decides what missing means. Sections the files
// never mentioned (per presence) get their full default block; partially
// specified sections fall back per field.
func applyDefaults(c Config, seen moderu.PresenceMap) Config {
	if !seen.Seen("/redis") {
		c.Redis = RedisConfig{Host: "localhost", Port: 6379, PoolSize: 10}
	}
	if !seen.Seen("/logging") {
		c.Logging = LoggingConfig{Level: "info", Format: "json", Output: "stdout"}
	}
	if !seen.Seen("/features") {
		c.Features = FeaturesConfig{Analytics: true}
	}

	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.App.Host == "" {
		c.App.Host = "0.0.0.0"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "prefer"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	return c
}

func (cm *ConfigManager) maskSecrets(config Config) Config {
	masked := config

	// Mask sensitive information
	if masked.Database.Password != "" {
		masked.Database.Password = "***masked***"
	}
	if masked.Redis.Password != "" {
		masked.Redis.Password = "***masked***"
	}
	if masked.App.TLS.KeyFile != "" {
		masked.App.TLS.KeyFile = "***masked***"
	}

	return masked
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cm := NewConfigManager()
	command := os.Args[1]

	switch command {
	case "validate":
		env := getEnvFlag()
		if err := cm.ValidateConfig(env); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Validation failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		env := getEnvFlag()
		maskSecrets := !getBoolFlag("--no-mask")
		if err := cm.ShowConfig(env, maskSecrets); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Show failed: %v\n", err)
			os.Exit(1)
		}

	case "generate":
		if getBoolFlag("--template") {
			if err := cm.GenerateTemplate(); err != nil {
				fmt.Fprintf(os.Stderr, "❌ Generate failed: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Fprintf(os.Stderr, "❌ Use --template flag to generate template files\n")
			os.Exit(1)
		}

	case "schema":
		schema, err := cm.schema.JSONSchema()
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Schema generation failed: %v\n", err)
			os.Exit(1)
		}

		data, err := yaml.Marshal(schema)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Schema marshal failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("📋 Configuration JSON Schema:")
		fmt.Print(string(data))

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`🎯 moderu Config Manager Sample

Usage: %s <command> [flags...]

Commands:
  validate [--env=<env>]           Validate configuration for environment
  show [--env=<env>] [--no-mask]   Show configuration (default: mask secrets)
  generate --template              Generate template configuration files
  schema                           Show JSON Schema for configuration

Flags:
  --env=<environment>      Environment (default: development)
  --no-mask               Don't mask sensitive information
  --template              Generate template files

Examples:
  %s validate --env=development
  %s show --env=production --no-mask
  %s generate --template
  %s schema

Environment Files:
  base.yaml               Base configuration (required)
  <environment>.yaml      Environment-specific overrides (optional)

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

func getEnvFlag() string {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "--env=") {
			return strings.TrimPrefix(arg, "--env=")
		}
	}
	return "development"
}

func getBoolFlag(flag string) bool {
	for _, arg := range os.Args {
		if arg == flag {
			return true
		}
	}
	return false
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
