package cfg

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fish-tennis/bagserver/item"
	"gopkg.in/yaml.v3"
)

// 物品配置文件
//
//	Items:
//	  - Id: bags:backpack
//	    Name: Backpack
//	    MaxCount: 1
//	    Equipment: chest
//	    Bag: {Rows: 3, Columns: 9, Slot: chest}
type itemCfgFile struct {
	Items []*item.Def `yaml:"Items"`
}

// 加载物品配置,id重复或背包尺寸不对时报错
func LoadItemCfgs(fileName string) (*item.Registry, error) {
	fileData, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	return ParseItemCfgs(fileData)
}

func ParseItemCfgs(fileData []byte) (*item.Registry, error) {
	file := new(itemCfgFile)
	if err := yaml.Unmarshal(fileData, file); err != nil {
		return nil, err
	}
	registry := item.NewRegistry()
	for _, def := range file.Items {
		if err := registry.Register(def); err != nil {
			slog.Error("ItemCfgErr", "err", err)
			return nil, err
		}
		if def.Bag != nil && !def.Bag.Slot.IsValid() {
			return nil, fmt.Errorf("item %v: bad bag slot %v", def.Id, def.Bag.Slot)
		}
	}
	slog.Info("LoadItemCfgs", "count", registry.Len())
	return registry, nil
}
