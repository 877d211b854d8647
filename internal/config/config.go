package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CARTES_GAME_STARTING_HEALTH.
const EnvPrefix = "CARTES"

// Effect resolution modes accepted by GameConfig.EffectMode.
const (
	EffectModeStrict  = "strict"
	EffectModeLenient = "lenient"
)

// Config is the root configuration of the rules engine.
type Config struct {
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GameConfig holds the rules constants of one match.
type GameConfig struct {
	// StartingHealth has no default: the authoritative value must be supplied.
	StartingHealth  int    `mapstructure:"starting_health"`
	BoardCapacity   int    `mapstructure:"board_capacity"`
	MarketSize      int    `mapstructure:"market_size"`
	CopiesPerCard   int    `mapstructure:"copies_per_card"`
	IncomePerTurn   int    `mapstructure:"income_per_turn"`
	StartingPO      int    `mapstructure:"starting_po"`
	MaxTurns        int    `mapstructure:"max_turns"`
	MixTurns        []int  `mapstructure:"mix_turns"`
	EffectMode      string `mapstructure:"effect_mode"`
	CheckInvariants bool   `mapstructure:"check_invariants"`
	PlayersMin      int    `mapstructure:"players_min"`
	PlayersMax      int    `mapstructure:"players_max"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the default configuration. StartingHealth is left at zero.
func Default() Config {
	return Config{
		Game: GameConfig{
			BoardCapacity:   8,
			MarketSize:      5,
			CopiesPerCard:   5,
			IncomePerTurn:   5,
			StartingPO:      0,
			MaxTurns:        40,
			MixTurns:        []int{4, 8, 12, 16},
			EffectMode:      EffectModeStrict,
			CheckInvariants: true,
			PlayersMin:      2,
			PlayersMax:      8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from path (YAML) layered over the defaults, then applies
// CARTES_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Game.EffectMode = strings.ToLower(strings.TrimSpace(cfg.Game.EffectMode))
	sort.Ints(cfg.Game.MixTurns)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("game.starting_health", d.Game.StartingHealth)
	v.SetDefault("game.board_capacity", d.Game.BoardCapacity)
	v.SetDefault("game.market_size", d.Game.MarketSize)
	v.SetDefault("game.copies_per_card", d.Game.CopiesPerCard)
	v.SetDefault("game.income_per_turn", d.Game.IncomePerTurn)
	v.SetDefault("game.starting_po", d.Game.StartingPO)
	v.SetDefault("game.max_turns", d.Game.MaxTurns)
	v.SetDefault("game.mix_turns", d.Game.MixTurns)
	v.SetDefault("game.effect_mode", d.Game.EffectMode)
	v.SetDefault("game.check_invariants", d.Game.CheckInvariants)
	v.SetDefault("game.players_min", d.Game.PlayersMin)
	v.SetDefault("game.players_max", d.Game.PlayersMax)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	return c.Game.Validate()
}

// Validate reports every problem found in the game rules constants.
func (g GameConfig) Validate() error {
	var errs []error
	if g.StartingHealth <= 0 {
		errs = append(errs, errors.New("game.starting_health must be set to a positive value"))
	}
	if g.BoardCapacity <= 0 {
		errs = append(errs, fmt.Errorf("game.board_capacity must be positive, got %d", g.BoardCapacity))
	}
	if g.MarketSize <= 0 {
		errs = append(errs, fmt.Errorf("game.market_size must be positive, got %d", g.MarketSize))
	}
	if g.CopiesPerCard <= 0 {
		errs = append(errs, fmt.Errorf("game.copies_per_card must be positive, got %d", g.CopiesPerCard))
	}
	if g.IncomePerTurn < 0 || g.StartingPO < 0 {
		errs = append(errs, errors.New("game.income_per_turn and game.starting_po must not be negative"))
	}
	if g.MaxTurns <= 0 {
		errs = append(errs, fmt.Errorf("game.max_turns must be positive, got %d", g.MaxTurns))
	}
	prev := 0
	for _, t := range g.MixTurns {
		if t <= prev {
			errs = append(errs, fmt.Errorf("game.mix_turns must be positive and strictly increasing, got %v", g.MixTurns))
			break
		}
		prev = t
	}
	if len(g.MixTurns) > 4 {
		errs = append(errs, fmt.Errorf("game.mix_turns allows at most 4 checkpoints, got %d", len(g.MixTurns)))
	}
	switch g.EffectMode {
	case EffectModeStrict, EffectModeLenient:
	default:
		errs = append(errs, fmt.Errorf("game.effect_mode must be %q or %q, got %q", EffectModeStrict, EffectModeLenient, g.EffectMode))
	}
	if g.PlayersMin < 2 || g.PlayersMax < g.PlayersMin {
		errs = append(errs, fmt.Errorf("game.players_min/players_max invalid: %d/%d", g.PlayersMin, g.PlayersMax))
	}
	return errors.Join(errs...)
}
