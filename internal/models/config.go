package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

// Config drives a simulation run. Everything stochastic in the run derives
// from Seed, so two runs with equal configs produce identical event traces.
type Config struct {
	Seed      int64     `mapstructure:"seed"`
	StartDate time.Time `mapstructure:"start_date"`

	// Simulation duration
	SimulationDurationMinutes int `mapstructure:"simulation_duration_minutes"`

	// Order generation parameters
	OrderGenerationIntervalMin float64 `mapstructure:"order_generation_interval_min"`
	OrderGenerationVariance    float64 `mapstructure:"order_generation_variance"`
	OrderVolumeMultiplier      float64 `mapstructure:"order_volume_multiplier"`

	// Asset configuration
	NumBeverageCarts int `mapstructure:"num_beverage_carts"`
	NumDeliveryStaff int `mapstructure:"num_delivery_staff"`

	// Dispatcher configuration
	DispatcherStrategy      string  `mapstructure:"dispatcher_strategy"`
	CartPreferenceWindowMin float64 `mapstructure:"cart_preference_window_min"`
	BatchingEnabled         bool    `mapstructure:"batching_enabled"`
	BatchTimeWindowMin      float64 `mapstructure:"batch_time_window_min"`
	MaxOrdersPerBatch       int     `mapstructure:"max_orders_per_batch"`
	BatchHoleThreshold      int     `mapstructure:"batch_hole_threshold"`

	// Course configuration
	CourseName  string `mapstructure:"course_name"`
	CourseHoles int    `mapstructure:"course_holes"`

	// Movement and prediction coefficients
	PrepTimeMin       float64 `mapstructure:"prep_time_min"`
	TravelTimePerHole float64 `mapstructure:"travel_time_per_hole"`
	PlayerMinPerHole  float64 `mapstructure:"player_min_per_hole"`
	MaxHolesPerTick   int     `mapstructure:"max_holes_per_tick"`

	// Performance thresholds
	TargetDeliveryTimeMin float64 `mapstructure:"target_delivery_time_min"`
	TargetWaitTimeMin     float64 `mapstructure:"target_wait_time_min"`

	// Logging and output
	EnableDetailedLogging bool    `mapstructure:"enable_detailed_logging"`
	LogIntervalMinutes    float64 `mapstructure:"log_interval_minutes"`
	ShowProgress          bool    `mapstructure:"show_progress"`

	OutputDestination string             `mapstructure:"output_destination"` // console, file, parquet, postgres, kafka
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	KafkaEnabled      bool               `mapstructure:"kafka_enabled"`
	KafkaBrokerList   string             `mapstructure:"kafka_broker_list"`
	Database          DatabaseConfig     `mapstructure:"database"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`
}

// FrontNine and BackNine give the zone hole ranges. The front nine is fixed
// at 1..9; the back nine absorbs any configured course length.
func (cfg *Config) FrontNine() (int, int) { return 1, 9 }
func (cfg *Config) BackNine() (int, int)  { return 10, cfg.CourseHoles }

func (cfg *Config) Horizon() time.Time {
	return cfg.StartDate.Add(time.Duration(cfg.SimulationDurationMinutes) * time.Minute)
}

// DefaultConfig is the balanced baseline every preset starts from.
func DefaultConfig() *Config {
	return &Config{
		Seed:                       42,
		StartDate:                  time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		SimulationDurationMinutes:  240,
		OrderGenerationIntervalMin: 5.0,
		OrderGenerationVariance:    2.0,
		OrderVolumeMultiplier:      1.0,
		NumBeverageCarts:           2,
		NumDeliveryStaff:           3,
		DispatcherStrategy:         "cart_preference",
		CartPreferenceWindowMin:    10,
		BatchTimeWindowMin:         5,
		MaxOrdersPerBatch:          3,
		BatchHoleThreshold:         2,
		CourseName:                 "Pinetree Country Club",
		CourseHoles:                18,
		PrepTimeMin:                10,
		TravelTimePerHole:          1.5,
		PlayerMinPerHole:           15,
		MaxHolesPerTick:            3,
		TargetDeliveryTimeMin:      25,
		TargetWaitTimeMin:          20,
		EnableDetailedLogging:      true,
		LogIntervalMinutes:         30,
		ShowProgress:               false,
		OutputDestination:          "console",
	}
}

// Presets mirror the scenarios operations runs most often.
func HighVolumeConfig() *Config {
	cfg := DefaultConfig()
	cfg.OrderGenerationIntervalMin = 2.5
	cfg.OrderGenerationVariance = 1.0
	cfg.OrderVolumeMultiplier = 2.0
	cfg.NumBeverageCarts = 3
	cfg.NumDeliveryStaff = 4
	return cfg
}

func RushHourConfig() *Config {
	cfg := DefaultConfig()
	cfg.SimulationDurationMinutes = 120
	cfg.OrderGenerationIntervalMin = 1.5
	cfg.OrderGenerationVariance = 0.5
	cfg.OrderVolumeMultiplier = 3.0
	cfg.DispatcherStrategy = "batch_orders"
	cfg.BatchingEnabled = true
	cfg.BatchTimeWindowMin = 3
	cfg.MaxOrdersPerBatch = 4
	return cfg
}

func EfficiencyTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.SimulationDurationMinutes = 480
	cfg.OrderGenerationIntervalMin = 4.0
	cfg.DispatcherStrategy = "zone_optimal"
	cfg.TargetDeliveryTimeMin = 20
	cfg.TargetWaitTimeMin = 15
	return cfg
}

// Preset returns the named preset, or the default when name is empty.
func Preset(name string) (*Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "high_volume":
		return HighVolumeConfig(), nil
	case "rush_hour":
		return RushHourConfig(), nil
	case "efficiency_test":
		return EfficiencyTestConfig(), nil
	}
	return nil, fmt.Errorf("unknown preset %q", name)
}

// LoadConfig initializes and reads the configuration using Viper. Values
// not present in the file keep their preset defaults.
func LoadConfig(cfgFile, preset string) (*Config, error) {
	config, err := Preset(preset)
	if err != nil {
		return nil, err
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file is fine, flags and presets cover everything
		return config, nil
	}

	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			dc.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := viper.Unmarshal(config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the engine cannot run.
func (cfg *Config) Validate() error {
	if cfg.CourseHoles < 10 || cfg.CourseHoles > MaxCourseHoles {
		return fmt.Errorf("course_holes %d outside supported range 10..%d", cfg.CourseHoles, MaxCourseHoles)
	}
	if cfg.SimulationDurationMinutes <= 0 {
		return fmt.Errorf("simulation_duration_minutes must be positive")
	}
	if cfg.OrderGenerationIntervalMin <= 0 || cfg.OrderVolumeMultiplier <= 0 {
		return fmt.Errorf("order generation interval and volume multiplier must be positive")
	}
	if cfg.MaxOrdersPerBatch < 1 {
		return fmt.Errorf("max_orders_per_batch must be at least 1")
	}
	if cfg.PlayerMinPerHole <= 0 {
		return fmt.Errorf("player_min_per_hole must be positive")
	}
	return nil
}
