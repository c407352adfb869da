package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is ~/.kiosk/config.yaml:
//
//	network: testnet
//	module_address: "0x42"
//	from: alice
//	store: sqlite
//	max_gas_amount: 20000
type File struct {
	Network       string `yaml:"network,omitempty"`
	ModuleAddress string `yaml:"module_address,omitempty"`
	From          string `yaml:"from,omitempty"`
	Store         string `yaml:"store,omitempty"`
	StoreDir      string `yaml:"store_dir,omitempty"`
	MaxGasAmount  uint64 `yaml:"max_gas_amount,omitempty"`
	GasUnitPrice  uint64 `yaml:"gas_unit_price,omitempty"`
}

// Dir is where kiosk keeps its state, $KIOSK_HOME or ~/.kiosk.
func Dir() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kiosk"
	}
	return filepath.Join(home, ".kiosk")
}

func FilePath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// LoadFile reads path. A missing file is an empty File.
func LoadFile(path string) (File, error) {
	f := File{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("couldn't parse %s: %w", path, err)
	}
	return f, nil
}

func WriteFile(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Apply copies the values of f into the config vars. changed reports
// whether the flag of a setting was given on the command line, those
// settings are left alone. Defaults apply to whatever is still empty.
func Apply(f File, changed func(flag string) bool) {
	set := func(flag string, dst *string, v string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}
	set("network", &Network, f.Network)
	set("module", &ModuleAddress, f.ModuleAddress)
	set("from", &From, f.From)
	set("store", &StoreKind, f.Store)
	set("store-dir", &StoreDir, f.StoreDir)
	if f.MaxGasAmount > 0 && !changed("max-gas") {
		MaxGasAmount = f.MaxGasAmount
	}
	if f.GasUnitPrice > 0 && !changed("gas-price") {
		GasUnitPrice = f.GasUnitPrice
	}

	if ModuleAddress == "" {
		ModuleAddress = os.Getenv(ModuleAddressEnv)
	}
	if ModuleAddress == "" {
		ModuleAddress = DefaultModuleAddress
	}
	if Network == "" {
		Network = DefaultNetwork
	}
	if StoreKind == "" {
		StoreKind = DefaultStoreKind
	}
	if StoreDir == "" {
		StoreDir = Dir()
	}
}
