package inventory

import (
	"fmt"
	"log/slog"

	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/gentity"
)

const (
	DefaultScreenTextureId = "bags:textures/gui/backpack.png"
)

// 玩家身上记录的背包界面状态
type BagStatus int32

const (
	BagStatusClose BagStatus = iota
	BagStatusOpen
)

// 打开背包的一方(玩家)
type Viewer interface {
	// 客户端不处理持久化
	IsClient() bool
	SetBagStatus(status BagStatus)
	EquippedStack(slot item.EquipmentSlot) *item.Stack
}

// 背包的配置,也是同步给客户端的内容
type BagConfig struct {
	ScreenTextureId string
	Rows            int
	Columns         int
	SaveAllowed     bool
	LoadAllowed     bool
}

// 背包物品的默认配置,允许保存和加载
func ConfigFromSpec(spec *item.BagSpec) BagConfig {
	textureId := spec.TextureId
	if textureId == "" {
		textureId = DefaultScreenTextureId
	}
	return BagConfig{
		ScreenTextureId: textureId,
		Rows:            spec.Rows,
		Columns:         spec.Columns,
		SaveAllowed:     true,
		LoadAllowed:     true,
	}
}

// 绑定到一个物品堆的背包格子
// 每次打开背包界面创建一个实例
type BagInventory struct {
	*Grid
	gentity.BaseDirtyMark
	sourceStack     *item.Stack
	screenTextureId string
	saveAllowed     bool
	loadAllowed     bool
	store           db.BagContainerLookup
	// Empty
	sentinel bool
}

// 表示"没有有效背包"
var Empty = &BagInventory{
	Grid:            NewGrid(0, 0),
	screenTextureId: DefaultScreenTextureId,
	sentinel:        true,
}

func NewBagInventory(sourceStack *item.Stack, config BagConfig, store db.BagContainerLookup) *BagInventory {
	b := &BagInventory{
		Grid:            NewGrid(config.Rows, config.Columns),
		sourceStack:     sourceStack,
		screenTextureId: config.ScreenTextureId,
		saveAllowed:     config.SaveAllowed,
		loadAllowed:     config.LoadAllowed,
		store:           store,
	}
	b.Grid.SetMarkDirtyHook(b.SetDirty)
	return b
}

func (b *BagInventory) ScreenTextureId() string {
	return b.screenTextureId
}

func (b *BagInventory) SourceStack() *item.Stack {
	return b.sourceStack
}

func (b *BagInventory) Saveable() bool {
	return b.saveAllowed
}

func (b *BagInventory) Loadable() bool {
	return b.loadAllowed
}

func (b *BagInventory) IsEmptyBag() bool {
	return b.sentinel
}

func (b *BagInventory) Config() BagConfig {
	return BagConfig{
		ScreenTextureId: b.screenTextureId,
		Rows:            b.Rows(),
		Columns:         b.Columns(),
		SaveAllowed:     b.saveAllowed,
		LoadAllowed:     b.loadAllowed,
	}
}

// 界面标题,不是背包物品时为空
func (b *BagInventory) DisplayName() string {
	if _, ok := b.sourceStack.Bag(); !ok {
		return ""
	}
	return b.sourceStack.DisplayName()
}

func (b *BagInventory) findContainer() (db.BagContainer, bool) {
	if b.store == nil {
		return nil, false
	}
	return b.store.Find(b.sourceStack)
}

// 打开界面,只在服务器执行
func (b *BagInventory) OnOpen(viewer Viewer) {
	if b.sentinel || viewer.IsClient() {
		return
	}
	if container, ok := b.findContainer(); ok {
		viewer.SetBagStatus(BagStatusOpen)
		if err := container.SetState(b.sourceStack, db.BagStateOpened); err != nil {
			slog.Error("BagSetStateErr", "item", b.sourceStack, "state", db.BagStateOpened, "err", err)
		}
	}
	if b.loadAllowed {
		// 错误在Load里已经记录,界面照常打开
		if err := b.Load(); err != nil {
			slog.Debug("BagOpenLoadErr", "item", b.sourceStack, "err", err)
		}
	}
}

// 关闭界面,有改动时保存
func (b *BagInventory) OnClose(viewer Viewer) {
	if b.sentinel || viewer.IsClient() {
		return
	}
	if container, ok := b.findContainer(); ok {
		viewer.SetBagStatus(BagStatusClose)
		if err := container.SetState(b.sourceStack, db.BagStateClosed); err != nil {
			slog.Error("BagSetStateErr", "item", b.sourceStack, "state", db.BagStateClosed, "err", err)
		}
	}
	if b.IsDirty() && b.saveAllowed {
		// 保存失败时保持dirty,下次关闭再存
		if err := b.Save(); err != nil {
			slog.Debug("BagCloseSaveErr", "item", b.sourceStack, "err", err)
		}
	}
}

// 从存储加载背包内容
// 存储的长度和格子数不一致时,多截少补,并返回ErrIndexViolation
func (b *BagInventory) Load() error {
	if b.sentinel {
		return nil
	}
	container, ok := b.findContainer()
	if !ok {
		slog.Error("BagLoadErr", "reason", "not a bag item", "item", b.sourceStack)
		return fmt.Errorf("%w: load %v", ErrBindingMissing, b.sourceStack)
	}
	if !b.loadAllowed {
		slog.Warn("BagLoadErr", "reason", "load not allowed", "item", b.sourceStack)
		return fmt.Errorf("%w: load %v", ErrPermissionDenied, b.sourceStack)
	}
	contents, err := container.Contents(b.sourceStack)
	if err != nil {
		slog.Error("BagLoadErr", "item", b.sourceStack, "err", err)
		return err
	}
	n := min(len(contents), len(b.cells))
	for i := 0; i < n; i++ {
		b.cells[i] = contents[i]
	}
	for i := n; i < len(b.cells); i++ {
		b.cells[i] = nil
	}
	if len(contents) != len(b.cells) {
		// 被截掉的物品记下来,方便人工恢复
		var dropped []*item.Stack
		for _, s := range contents[n:] {
			if !s.IsEmpty() {
				dropped = append(dropped, s)
			}
		}
		slog.Error("BagContentsSizeMismatch", "item", b.sourceStack, "uid", b.sourceStack.Uid,
			"stored", len(contents), "size", len(b.cells), "truncated", dropped)
		return fmt.Errorf("%w: stored %v, grid %v", ErrIndexViolation, len(contents), len(b.cells))
	}
	slog.Debug("BagLoad", "item", b.sourceStack, "uid", b.sourceStack.Uid, "size", len(b.cells))
	return nil
}

// 保存背包内容,成功后清除dirty
func (b *BagInventory) Save() error {
	if b.sentinel {
		return nil
	}
	container, ok := b.findContainer()
	if !ok {
		slog.Error("BagSaveErr", "reason", "not a bag item", "item", b.sourceStack)
		return fmt.Errorf("%w: save %v", ErrBindingMissing, b.sourceStack)
	}
	if !b.saveAllowed {
		slog.Warn("BagSaveErr", "reason", "save not allowed", "item", b.sourceStack)
		return fmt.Errorf("%w: save %v", ErrPermissionDenied, b.sourceStack)
	}
	if err := container.SetContents(b.sourceStack, b.Stacks()); err != nil {
		slog.Error("BagSaveErr", "item", b.sourceStack, "err", err)
		return err
	}
	b.ResetDirty()
	slog.Debug("BagSave", "item", b.sourceStack, "uid", b.sourceStack.Uid, "size", len(b.cells))
	return nil
}
