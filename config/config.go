// Package config loads the YAML deployment file of a tic-tac-toe contract
// instance and turns it into a ready chain, logger and contract.
package config

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"okinoko-tictactoe/contract"
	"okinoko-tictactoe/sdk"
)

// Config is the root of the deployment file.
type Config struct {
	ChainID  string         `yaml:"chain_id"`
	Contract ContractConfig `yaml:"contract"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// ContractConfig describes the contract instance and its initial fee setup.
// Fee is a decimal string in 18-decimal fixed point; see contract.FeeConfig.
type ContractConfig struct {
	Address     string `yaml:"address"`
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Admin       string `yaml:"admin"`
	Treasury    string `yaml:"treasury"`
	Fee         string `yaml:"fee"`
	FeeAbsolute bool   `yaml:"fee_absolute"`
}

type StoreConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the values used for anything the file leaves out.
func Default() Config {
	return Config{
		ChainID: "1",
		Contract: ContractConfig{
			Name:    contract.DefaultName,
			Version: contract.DefaultVersion,
			Fee:     "0",
		},
		Store: StoreConfig{InMemory: true},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads and validates the file at path on top of Default().
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem in the file at once.
func (c Config) Validate() error {
	var errs error
	if _, err := c.chainID(); err != nil {
		errs = multierr.Append(errs, err)
	}
	for _, f := range []struct{ name, value string }{
		{"contract.address", c.Contract.Address},
		{"contract.admin", c.Contract.Admin},
		{"contract.treasury", c.Contract.Treasury},
	} {
		if _, err := parseAddress(f.name, f.value); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if c.Contract.Name == "" {
		errs = multierr.Append(errs, errors.New("contract.name: empty"))
	}
	if _, err := c.fee(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log.level: %w", err))
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		errs = multierr.Append(errs, errors.New("store: path required unless in_memory"))
	}
	return errs
}

func (c Config) chainID() (*big.Int, error) {
	id, ok := math.ParseBig256(c.ChainID)
	if !ok || id.Sign() <= 0 {
		return nil, fmt.Errorf("chain_id: invalid value %q", c.ChainID)
	}
	return id, nil
}

func (c Config) fee() (*uint256.Int, error) {
	fee, err := uint256.FromDecimal(c.Contract.Fee)
	if err != nil {
		return nil, fmt.Errorf("contract.fee: %w", err)
	}
	if !c.Contract.FeeAbsolute && fee.Gt(uint256.NewInt(1e18)) {
		return nil, fmt.Errorf("contract.fee: proportional fee %s above 1e18", fee.Dec())
	}
	return fee, nil
}

func parseAddress(field, s string) (sdk.Address, error) {
	if !common.IsHexAddress(s) {
		return sdk.ZeroAddress, fmt.Errorf("%s: not a hex address: %q", field, s)
	}
	addr := common.HexToAddress(s)
	if addr == sdk.ZeroAddress {
		return sdk.ZeroAddress, fmt.Errorf("%s: zero address", field)
	}
	return addr, nil
}

// ChainIDInt returns the parsed chain id. Call on a validated Config.
func (c Config) ChainIDInt() *big.Int {
	id, _ := c.chainID()
	return id
}

// ContractAddress returns the parsed contract address. Call on a validated
// Config.
func (c Config) ContractAddress() sdk.Address {
	return common.HexToAddress(c.Contract.Address)
}

// InitArgs converts the file into the contract's one-time initialization.
func (c Config) InitArgs() (contract.InitArgs, error) {
	var errs error
	admin, err := parseAddress("contract.admin", c.Contract.Admin)
	errs = multierr.Append(errs, err)
	treasury, err := parseAddress("contract.treasury", c.Contract.Treasury)
	errs = multierr.Append(errs, err)
	fee, err := c.fee()
	errs = multierr.Append(errs, err)
	if errs != nil {
		return contract.InitArgs{}, errs
	}
	return contract.InitArgs{
		Admin:         admin,
		Treasury:      treasury,
		Fee:           fee,
		FeeIsAbsolute: c.Contract.FeeAbsolute,
	}, nil
}
