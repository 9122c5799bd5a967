package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"stakevault/native/staking"
)

// Plan mirrors one entry of the [[plan]] table.
type Plan struct {
	LockDurationSeconds uint64 `toml:"LockDurationSeconds"`
	RewardRateBps       uint32 `toml:"RewardRateBps"`
}

type Config struct {
	RPCAddress   string `toml:"RPCAddress"`
	DataDir      string `toml:"DataDir"`
	OwnerAddress string `toml:"OwnerAddress"`
	RPCTokenEnv  string `toml:"RPCTokenEnv"`
	Paused       bool   `toml:"Paused"`
	Environment  string `toml:"Environment"`
	Plans        []Plan `toml:"plan"`
}

// Load reads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for the invariants the service
// relies on: a parseable owner address and a full plan table with sane rates
// and non-zero lock durations.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress is required")
	}
	if !common.IsHexAddress(strings.TrimSpace(c.OwnerAddress)) {
		return fmt.Errorf("OwnerAddress %q is not a hex address", c.OwnerAddress)
	}
	if len(c.Plans) != staking.PlanCount {
		return fmt.Errorf("exactly %d [[plan]] entries required, got %d", staking.PlanCount, len(c.Plans))
	}
	for i, plan := range c.Plans {
		if plan.LockDurationSeconds == 0 {
			return fmt.Errorf("plan %d: LockDurationSeconds must be non-zero", i)
		}
		if plan.RewardRateBps > staking.BpsDenominator {
			return fmt.Errorf("plan %d: RewardRateBps %d exceeds %d", i, plan.RewardRateBps, staking.BpsDenominator)
		}
	}
	return nil
}

// Owner returns the parsed owner address.
func (c *Config) Owner() [20]byte {
	return common.HexToAddress(strings.TrimSpace(c.OwnerAddress))
}

// PlanTable converts the configured plans into the engine's table form.
func (c *Config) PlanTable() []staking.Plan {
	plans := make([]staking.Plan, 0, len(c.Plans))
	for i, plan := range c.Plans {
		plans = append(plans, staking.Plan{
			ID:            uint8(i),
			LockDuration:  plan.LockDurationSeconds,
			RewardRateBps: plan.RewardRateBps,
		})
	}
	return plans
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:   "localhost:8645",
		DataDir:      "./vault-data",
		OwnerAddress: "0x0000000000000000000000000000000000000001",
		RPCTokenEnv:  "STAKEVAULT_RPC_TOKEN",
		Environment:  "local",
		Plans: []Plan{
			{LockDurationSeconds: 30 * 24 * 60 * 60, RewardRateBps: 300},
			{LockDurationSeconds: 90 * 24 * 60 * 60, RewardRateBps: 1_000},
			{LockDurationSeconds: 180 * 24 * 60 * 60, RewardRateBps: 2_200},
			{LockDurationSeconds: 365 * 24 * 60 * 60, RewardRateBps: 5_000},
		},
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
