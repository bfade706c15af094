package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config mirrors config.json. Every key has a default, so the bridge
// runs without a file at all.
type Config struct {
	Bluetooth  BluetoothConfig  `mapstructure:"bluetooth"`
	Gears      GearConfig       `mapstructure:"gears"`
	Resistance ResistanceConfig `mapstructure:"resistance"`
	Drivetrain DrivetrainConfig `mapstructure:"drivetrain"`
	Server     ServerConfig     `mapstructure:"server"`
	Display    DisplayConfig    `mapstructure:"display"`
}

type BluetoothConfig struct {
	KickrName   string `mapstructure:"kickr_name"`
	ClickName   string `mapstructure:"click_name"`
	ScanTimeout int    `mapstructure:"scan_timeout"` // seconds
}

type GearConfig struct {
	Model            string  `mapstructure:"model"`
	TotalGears       int     `mapstructure:"total_gears"`
	CurrentGear      int     `mapstructure:"current_gear"`
	MinGear          int     `mapstructure:"min_gear"`
	MaxGear          int     `mapstructure:"max_gear"`
	ShiftSmoothingMs int     `mapstructure:"shift_smoothing_ms"`
	GradientPerGear  float64 `mapstructure:"gradient_per_gear"`
}

type ResistanceConfig struct {
	BaseResistance       float64 `mapstructure:"base_resistance"`
	ResistancePerGear    float64 `mapstructure:"resistance_per_gear"`
	MinResistancePercent float64 `mapstructure:"min_resistance_percent"`
	MaxResistancePercent float64 `mapstructure:"max_resistance_percent"`
}

type DrivetrainConfig struct {
	Chainrings []int `mapstructure:"chainrings"`
	Cassette   []int `mapstructure:"cassette"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DisplayConfig struct {
	ShowGearChanges bool `mapstructure:"show_gear_changes"`
}

// SmoothingHold returns the shift smoothing interval as a duration.
func (g GearConfig) SmoothingHold() time.Duration {
	return time.Duration(g.ShiftSmoothingMs) * time.Millisecond
}

// ScanWindow returns the scan timeout as a duration.
func (b BluetoothConfig) ScanWindow() time.Duration {
	return time.Duration(b.ScanTimeout) * time.Second
}

// Load reads configuration from path, or from ./config.json when path
// is empty. A missing default file is fine; a missing explicit path is
// an error.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bluetooth.kickr_name", "KICKR")
	v.SetDefault("bluetooth.click_name", "Zwift Click")
	v.SetDefault("bluetooth.scan_timeout", 10)

	v.SetDefault("gears.model", "gradient")
	v.SetDefault("gears.total_gears", 24)
	v.SetDefault("gears.current_gear", 12)
	v.SetDefault("gears.min_gear", 1)
	v.SetDefault("gears.max_gear", 24)
	v.SetDefault("gears.shift_smoothing_ms", 100)
	v.SetDefault("gears.gradient_per_gear", 0.01)

	v.SetDefault("resistance.base_resistance", 20)
	v.SetDefault("resistance.resistance_per_gear", 2.5)
	v.SetDefault("resistance.min_resistance_percent", 10)
	v.SetDefault("resistance.max_resistance_percent", 75)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("display.show_gear_changes", true)
}
