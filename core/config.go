package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string        `mapstructure:"appName"`
		Env              string        `mapstructure:"env"`
		Build            string        `mapstructure:"build"`
		Debug            bool          `mapstructure:"debug"`
		TestMode         bool          `mapstructure:"testMode"`
		SecretKey        string        `mapstructure:"secretKey"`
		RollbarToken     string        `mapstructure:"rollbarToken"`
		SendgridApiKey   string        `mapstructure:"sendgridApiKey"`
		DefaultFromName  string        `mapstructure:"defaultFromName"`
		DefaultFromAddr  string        `mapstructure:"defaultFromAddr"`
		Currency         string        `mapstructure:"currency"`
		DisableReqLogs   bool          `mapstructure:"disableReqLogs"`
		AccessTokenDelta time.Duration `mapstructure:"accessTokenDelta"`

		School   SchoolConfig   `mapstructure:"school"`
		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		Redis    RedisConfig    `mapstructure:"redis"`
		Renderer RendererConfig `mapstructure:"renderer"`

		// Passcodes maps an access section to the bcrypt hash of its passcode.
		Passcodes map[string]string `mapstructure:"passcodes"`
	}

	SchoolConfig struct {
		Name     string `mapstructure:"name"`
		Motto    string `mapstructure:"motto"`
		Address  string `mapstructure:"address"`
		Phone    string `mapstructure:"phone"`
		Email    string `mapstructure:"email"`
		Division string `mapstructure:"division"`
	}

	ServerConfig struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		DebugHost       string        `mapstructure:"debugHost"`
		ReadTimeout     time.Duration `mapstructure:"readTimeout"`
		WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	}

	DatabaseConfig struct {
		Engine        string `mapstructure:"engine"`
		Host          string `mapstructure:"host"`
		Port          int    `mapstructure:"port"`
		Name          string `mapstructure:"name"`
		User          string `mapstructure:"user"`
		Password      string `mapstructure:"password"`
		AdminUser     string `mapstructure:"adminUser"`
		AdminPassword string `mapstructure:"adminPassword"`
		DisableTLS    bool   `mapstructure:"disableTLS"`
		InMemory      bool   `mapstructure:"inMemory"`
	}

	RedisConfig struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	}

	RendererConfig struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if any) and the environment.
// Environment variables are prefixed with ENV, nested keys use "_": e.g. PROD_DATABASE_HOST.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	setDefaults(v, env)

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	conf.Passcodes = loadPasscodes(v)
	return conf
}

func setDefaults(v *viper.Viper, env string) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("env", env)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "School Management System")
	v.SetDefault("secretKey", "n7#u2k)q0v!b8x$+3m=zh&yd4(c!w)r*p2(e9s^t$f1a6l")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromName", "School Administration")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("currency", "US$")
	v.SetDefault("disableReqLogs", false)
	v.SetDefault("accessTokenDelta", 8*time.Hour)

	v.SetDefault("school.name", "Unity High School")
	v.SetDefault("school.motto", "Knowledge, Discipline, Service")
	v.SetDefault("school.address", "Monrovia, Liberia")
	v.SetDefault("school.phone", "")
	v.SetDefault("school.email", "")
	v.SetDefault("school.division", "Ministry of Education")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 90*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "school")
	v.SetDefault("database.user", "school")
	v.SetDefault("database.password", "school")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.inMemory", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("renderer.url", "http://localhost:3000")
	v.SetDefault("renderer.timeout", 60*time.Second)
}

// loadPasscodes reads one bcrypt hash per section: <ENV>_PASSCODES_<SECTION>.
func loadPasscodes(v *viper.Viper) map[string]string {
	codes := make(map[string]string, len(Sections))
	for _, section := range Sections {
		key := fmt.Sprintf("passcodes.%s", section)
		_ = v.BindEnv(key)
		if hash := v.GetString(key); hash != "" {
			codes[section] = hash
		}
	}
	return codes
}
