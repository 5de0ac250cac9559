package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Billing  BillingConfig  `toml:"billing"`
	Detector DetectorConfig `toml:"detector"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// BillingConfig 计费配置
type BillingConfig struct {
	DefaultDivisor  float64 `toml:"default_divisor"`
	DefaultCurrency string  `toml:"default_currency"`
}

// DetectorConfig 工作表检测阈值配置
type DetectorConfig struct {
	HeaderScanRows   int `toml:"header_scan_rows"`
	HeaderScanCols   int `toml:"header_scan_cols"`
	ColumnScanRows   int `toml:"column_scan_rows"`
	MinColumnMatches int `toml:"min_column_matches"`
	ForwardFillRows  int `toml:"forward_fill_rows"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20281,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Billing: BillingConfig{
			DefaultDivisor:  5000,
			DefaultCurrency: "RMB",
		},
		Detector: DetectorConfig{
			HeaderScanRows:   15,
			HeaderScanCols:   10,
			ColumnScanRows:   10,
			MinColumnMatches: 3,
			ForwardFillRows:  5,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件不存在，使用默认配置
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}

	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录存在
// 数据目录位于可执行文件同目录下
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := filepath.Join(exeDir, config.Data.DataDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 上传的运价文件落盘目录
	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// DetectorOptionsValid Detector 配置是否完整，任一阈值缺失时整组回退默认值
func (c *AppConfig) DetectorOptionsValid() bool {
	d := c.Detector
	return d.HeaderScanRows > 0 && d.HeaderScanCols > 0 &&
		d.ColumnScanRows > 0 && d.MinColumnMatches > 0 && d.ForwardFillRows > 0
}
