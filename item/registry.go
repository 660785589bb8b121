package item

import (
	"fmt"
	"log/slog"
)

// 物品配置表
type Registry struct {
	defs map[string]*Def
}

func NewRegistry(defs ...*Def) *Registry {
	r := &Registry{
		defs: make(map[string]*Def),
	}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			slog.Error("RegisterItemErr", "id", def.Id, "err", err)
		}
	}
	return r
}

func (r *Registry) Register(def *Def) error {
	if def == nil || def.Id == "" {
		return fmt.Errorf("item def without id")
	}
	if _, ok := r.defs[def.Id]; ok {
		return fmt.Errorf("duplicate item id %v", def.Id)
	}
	if def.Bag != nil && (def.Bag.Rows < 0 || def.Bag.Columns < 0) {
		return fmt.Errorf("item %v: bad bag size %vx%v", def.Id, def.Bag.Rows, def.Bag.Columns)
	}
	r.defs[def.Id] = def
	return nil
}

func (r *Registry) Get(id string) *Def {
	return r.defs[id]
}

func (r *Registry) Len() int {
	return len(r.defs)
}

// 根据配置id创建物品堆
func (r *Registry) NewStack(id string, count int) (*Stack, error) {
	def := r.defs[id]
	if def == nil {
		return nil, fmt.Errorf("unknown item id %v", id)
	}
	return NewStack(def, count), nil
}
