package cfg

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
)

// 服务器配置
type ServerConfig struct {
	// 服务器id,用于生成唯一id
	ServerId int32 `yaml:"ServerId"`
	// websocket监听地址
	ListenAddr string `yaml:"ListenAddr"`
	WsPath     string `yaml:"WsPath"`
	// 逻辑协程的更新间隔
	UpdateInterval time.Duration `yaml:"UpdateInterval"`
	Log            LogConfig     `yaml:"Log"`
	Store          StoreConfig   `yaml:"Store"`
	Bag            BagConfig     `yaml:"Bag"`
	// 新玩家的初始物品
	StarterKit []StarterItem `yaml:"StarterKit"`
	// 物品配置文件
	ItemCfgFile string `yaml:"ItemCfgFile"`
}

type LogConfig struct {
	FileName     string `yaml:"FileName"`
	UseStdOutput bool   `yaml:"UseStdOutput"`
	// debug info warn error
	Level string `yaml:"Level"`
}

// 背包数据的存储
type StoreConfig struct {
	// memory mongo redis
	Backend         string        `yaml:"Backend"`
	MongoUri        string        `yaml:"MongoUri"`
	MongoDbName     string        `yaml:"MongoDbName"`
	MongoCollection string        `yaml:"MongoCollection"`
	RedisAddrs      []string      `yaml:"RedisAddrs"`
	RedisPassword   string        `yaml:"RedisPassword"`
	RedisCluster    bool          `yaml:"RedisCluster"`
	RedisKeyPrefix  string        `yaml:"RedisKeyPrefix"`
	Timeout         time.Duration `yaml:"Timeout"`
}

// 背包的读写权限,和物品本身的配置同时生效
type BagConfig struct {
	SaveAllowed bool `yaml:"SaveAllowed"`
	LoadAllowed bool `yaml:"LoadAllowed"`
}

// 初始物品放到玩家格子Index
type StarterItem struct {
	Index  int    `yaml:"Index"`
	ItemId string `yaml:"ItemId"`
	Count  int    `yaml:"Count"`
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerId:       1,
		ListenAddr:     "127.0.0.1:10001",
		WsPath:         "/ws",
		UpdateInterval: time.Second,
		Log: LogConfig{
			FileName:     "bagserver",
			UseStdOutput: true,
			Level:        "info",
		},
		Store: StoreConfig{
			Backend:         StoreMemory,
			MongoDbName:     "bagserver",
			MongoCollection: "bag",
			RedisKeyPrefix:  "bag",
			Timeout:         3 * time.Second,
		},
		Bag: BagConfig{
			SaveAllowed: true,
			LoadAllowed: true,
		},
		ItemCfgFile: "cfgdata/items.yaml",
	}
}

// 读取配置文件,没配的字段用默认值
func LoadServerConfig(fileName string) (*ServerConfig, error) {
	fileData, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	config := DefaultServerConfig()
	if err = yaml.Unmarshal(fileData, config); err != nil {
		return nil, fmt.Errorf("decode %v: %w", fileName, err)
	}
	if err = config.Check(); err != nil {
		return nil, fmt.Errorf("check %v: %w", fileName, err)
	}
	return config, nil
}

func (c *ServerConfig) Check() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreMongo:
		if c.Store.MongoUri == "" {
			return fmt.Errorf("store %v without MongoUri", c.Store.Backend)
		}
	case StoreRedis:
		if len(c.Store.RedisAddrs) == 0 {
			return fmt.Errorf("store %v without RedisAddrs", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("bad UpdateInterval %v", c.UpdateInterval)
	}
	for _, starter := range c.StarterKit {
		if starter.ItemId == "" || starter.Count <= 0 {
			return fmt.Errorf("bad starter item %+v", starter)
		}
	}
	return nil
}
