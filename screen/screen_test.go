package screen

import (
	"bytes"
	"testing"

	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/db/memdb"
	"github.com/fish-tennis/bagserver/inventory"
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/bagserver/player"
	"github.com/fish-tennis/gentity/util"
)

var (
	_torch    = &item.Def{Id: "bags:torch", Name: "Torch"}
	_stone    = &item.Def{Id: "bags:stone", Name: "Stone"}
	_helmet   = &item.Def{Id: "bags:iron_helmet", Name: "Iron Helmet", MaxCount: 1, Equipment: item.Head}
	_shield   = &item.Def{Id: "bags:shield", Name: "Shield", MaxCount: 1, Equipment: item.OffHand}
	_backpack = &item.Def{Id: "bags:backpack", Name: "Backpack", MaxCount: 1, Equipment: item.Chest,
		Bag: &item.BagSpec{Rows: 3, Columns: 9, Slot: item.Chest}}
	_pouch = &item.Def{Id: "bags:pouch", Name: "Pouch", MaxCount: 1,
		Bag: &item.BagSpec{Rows: 1, Columns: 9, Slot: item.MainHand}}
)

func TestMain(m *testing.M) {
	util.InitIdGenerator(1)
	m.Run()
}

type bagFixture struct {
	player   *player.Player
	store    *memdb.MemDb
	backpack *item.Stack
}

func newFixture() *bagFixture {
	f := &bagFixture{
		player:   player.NewPlayer(1, "test", false),
		store:    memdb.NewMemDb(),
		backpack: item.NewStack(_backpack, 1),
	}
	f.player.SetEquippedStack(item.Chest, f.backpack)
	return f
}

// 打开之前先往存储里写入背包内容
func (f *bagFixture) seed(t *testing.T, cells map[int]*item.Stack) {
	container, ok := f.store.Find(f.backpack)
	if !ok {
		t.Fatal("backpack not found in store")
	}
	contents := db.EmptyContents(f.backpack)
	for i, stack := range cells {
		contents[i] = stack
	}
	if err := container.SetContents(f.backpack, contents); err != nil {
		t.Fatal(err)
	}
}

func (f *bagFixture) open(lookup db.BagContainerLookup) *BagScreenHandler {
	bag := inventory.NewBagInventory(f.backpack, inventory.ConfigFromSpec(_backpack.Bag), lookup)
	return NewBagScreenHandler(1, f.player, bag)
}

func (f *bagFixture) invStack(index int) *item.Stack {
	stack, _ := f.player.GetInventory().Get(index)
	return stack
}

func TestPlayerScreenLayout(t *testing.T) {
	p := player.NewPlayer(1, "test", false)
	h := NewPlayerScreenHandler(0, PlayerHandlerType, p)
	if h.SlotCount() != OffHandSlot+1 {
		t.Fatalf("slot count:%v", h.SlotCount())
	}
	cases := []struct {
		slotId int
		index  int
		x, y   int
	}{
		{ResultSlot, 0, 154, 28},
		{CraftingStart, 0, 98, 18},
		{CraftingEnd - 1, 3, 116, 36},
		{EquipmentStart, player.ArmorStart + 3, 8, 8},
		{EquipmentEnd - 1, player.ArmorStart, 8, 62},
		{InventoryStart, 9, 8, 84},
		{InventoryEnd - 1, 35, 152, 120},
		{HotbarStart, 0, 8, 142},
		{HotbarEnd - 1, 8, 152, 142},
		{OffHandSlot, player.OffHandIndex, 77, 62},
	}
	for _, c := range cases {
		slot, err := h.GetSlot(c.slotId)
		if err != nil {
			t.Fatal(err)
		}
		if slot.Id != c.slotId || slot.GetIndex() != c.index || slot.X != c.x || slot.Y != c.y {
			t.Errorf("slot %v: index:%v pos:(%v,%v)", c.slotId, slot.GetIndex(), slot.X, slot.Y)
		}
	}
	for _, equipment := range []item.EquipmentSlot{item.Head, item.Chest, item.Legs, item.Feet} {
		slot := h.Slots()[EquipmentSlotId(equipment)]
		if slot.GetIndex() != player.ArmorStart+equipment.EntitySlotId() {
			t.Errorf("%v armor slot index:%v", equipment, slot.GetIndex())
		}
	}
	if _, err := h.GetSlot(OffHandSlot + 1); err == nil {
		t.Fatal("out of range slot")
	}
}

func TestBagScreenLayout(t *testing.T) {
	f := newFixture()
	h := f.open(f.store)
	if h.GetType() != GenericBagHandlerType || h.GetSyncId() != 1 {
		t.Fatalf("type:%v syncId:%v", h.GetType(), h.GetSyncId())
	}
	if h.BagStart() != OffHandSlot+1 || h.BagEnd() != h.BagStart()+27 || h.SlotCount() != h.BagEnd() {
		t.Fatalf("bag range:[%v,%v) slots:%v", h.BagStart(), h.BagEnd(), h.SlotCount())
	}
	offset := h.OffsetY()
	if offset != 58 {
		t.Fatalf("offset:%v", offset)
	}
	plain := NewPlayerScreenHandler(0, PlayerHandlerType, player.NewPlayer(2, "plain", false))
	for i := 0; i < h.BagStart(); i++ {
		slot, base := h.Slots()[i], plain.Slots()[i]
		want := base.Y
		// 只有主背包和快捷栏往下移
		if i >= InventoryStart && i < HotbarEnd {
			want += offset
		}
		if slot.Y != want || slot.X != base.X {
			t.Errorf("slot %v pos:(%v,%v) want:(%v,%v)", i, slot.X, slot.Y, base.X, want)
		}
	}
	anchor := h.Slots()[InventoryStart]
	for i := h.BagStart(); i < h.BagEnd(); i++ {
		slot := h.Slots()[i]
		n := i - h.BagStart()
		row, col := n/9, n%9
		if slot.GetIndex() != n {
			t.Errorf("bag slot %v index:%v", i, slot.GetIndex())
		}
		if slot.X != anchor.X+col*SlotSize || slot.Y != anchor.Y-offset+row*SlotSize {
			t.Errorf("bag slot %v pos:(%v,%v)", i, slot.X, slot.Y)
		}
	}
	// 背包格子在主背包的原位置
	if first := h.Slots()[h.BagStart()]; first.X != 8 || first.Y != 84 {
		t.Fatalf("first bag slot:(%v,%v)", first.X, first.Y)
	}
	if h.ScreenTextureId() != inventory.DefaultScreenTextureId || h.SourceStack() != f.backpack {
		t.Fatalf("texture:%v source:%v", h.ScreenTextureId(), h.SourceStack())
	}
	if f.player.GetBagStatus() != inventory.BagStatusOpen {
		t.Fatal("bag status not open")
	}
}

func TestEmptyBagScreen(t *testing.T) {
	p := player.NewPlayer(1, "test", false)
	h := NewBagScreenHandler(3, p, inventory.Empty)
	if h.BagStart() != h.BagEnd() || h.OffsetY() != 0 || h.SlotCount() != OffHandSlot+1 {
		t.Fatalf("bag range:[%v,%v) offset:%v", h.BagStart(), h.BagEnd(), h.OffsetY())
	}
	h.OnClosed(p)
}

func TestQuickMoveHotbarToBag(t *testing.T) {
	f := newFixture()
	inv := f.player.GetInventory()
	_ = inv.Set(0, item.NewStack(_torch, 10))
	h := f.open(f.store)
	moved := h.QuickMove(f.player, HotbarStart)
	if moved.GetCount() != 10 || moved.Def != _torch {
		t.Fatalf("moved:%v", moved)
	}
	if !f.invStack(0).IsEmpty() {
		t.Fatal("hotbar not cleared")
	}
	cell, _ := h.BagInventory().Get(0)
	if cell.GetCount() != 10 {
		t.Fatalf("bag cell:%v", cell)
	}
	if !h.BagInventory().IsDirty() {
		t.Fatal("bag should be dirty")
	}
	h.OnClosed(f.player)
	contents, state, ok := f.store.Peek(f.backpack.Uid)
	if !ok || state != db.BagStateClosed {
		t.Fatalf("record:%v state:%v", ok, state)
	}
	if contents[0].GetCount() != 10 || contents[0].Def != _torch {
		t.Fatalf("stored:%v", contents[0])
	}
	if f.player.GetBagStatus() != inventory.BagStatusClose {
		t.Fatal("bag status not closed")
	}
}

func TestQuickMoveHotbarMergesIntoBag(t *testing.T) {
	f := newFixture()
	f.seed(t, map[int]*item.Stack{5: item.NewStack(_torch, 60)})
	_ = f.player.GetInventory().Set(2, item.NewStack(_torch, 10))
	h := f.open(f.store)
	if h.QuickMove(f.player, HotbarStart+2) == nil {
		t.Fatal("nothing moved")
	}
	merged, _ := h.BagInventory().Get(5)
	rest, _ := h.BagInventory().Get(0)
	if merged.GetCount() != 64 || rest.GetCount() != 6 {
		t.Fatalf("merged:%v rest:%v", merged.GetCount(), rest.GetCount())
	}
	if !f.invStack(2).IsEmpty() {
		t.Fatal("hotbar not cleared")
	}
}

func TestQuickMoveHotbarBagFull(t *testing.T) {
	f := newFixture()
	cells := make(map[int]*item.Stack)
	for i := 0; i < 27; i++ {
		cells[i] = item.NewStack(_stone, 64)
	}
	f.seed(t, cells)
	_ = f.player.GetInventory().Set(0, item.NewStack(_torch, 10))
	h := f.open(f.store)
	if h.QuickMove(f.player, HotbarStart) == nil {
		t.Fatal("nothing moved")
	}
	// 背包满了,走默认规则放进主背包
	if f.invStack(9).GetCount() != 10 {
		t.Fatalf("main inventory:%v", f.invStack(9))
	}
	if h.BagInventory().IsDirty() {
		t.Fatal("bag should not be dirty")
	}
}

func TestQuickMoveNoNestedBags(t *testing.T) {
	f := newFixture()
	pouch := item.NewStack(_pouch, 1)
	_ = f.player.GetInventory().Set(0, pouch)
	h := f.open(f.store)
	if h.QuickMove(f.player, HotbarStart) == nil {
		t.Fatal("nothing moved")
	}
	if !h.BagInventory().IsEmpty() {
		t.Fatal("bag item inserted into bag")
	}
	if f.invStack(9).Def != _pouch {
		t.Fatalf("main inventory:%v", f.invStack(9))
	}
}

func TestQuickMoveBagToInventory(t *testing.T) {
	f := newFixture()
	f.seed(t, map[int]*item.Stack{3: item.NewStack(_torch, 20)})
	h := f.open(f.store)
	if h.QuickMove(f.player, h.BagStart()+3) == nil {
		t.Fatal("nothing moved")
	}
	if f.invStack(9).GetCount() != 20 {
		t.Fatalf("main inventory:%v", f.invStack(9))
	}
	if cell, _ := h.BagInventory().Get(3); !cell.IsEmpty() {
		t.Fatalf("bag cell:%v", cell)
	}
	h.OnClosed(f.player)
	contents, _, _ := f.store.Peek(f.backpack.Uid)
	if !contents[3].IsEmpty() {
		t.Fatalf("stored:%v", contents[3])
	}
}

func TestQuickMoveMainToHotbar(t *testing.T) {
	f := newFixture()
	_ = f.player.GetInventory().Set(12, item.NewStack(_stone, 5))
	h := f.open(f.store)
	if h.QuickMove(f.player, InventoryStart+3) == nil {
		t.Fatal("nothing moved")
	}
	if f.invStack(0).GetCount() != 5 || !f.invStack(12).IsEmpty() {
		t.Fatalf("hotbar:%v main:%v", f.invStack(0), f.invStack(12))
	}
}

func TestQuickMoveEquipment(t *testing.T) {
	f := newFixture()
	inv := f.player.GetInventory()
	_ = inv.Set(10, item.NewStack(_helmet, 1))
	_ = inv.Set(11, item.NewStack(_shield, 1))
	h := f.open(f.store)
	if h.QuickMove(f.player, InventoryStart+1) == nil {
		t.Fatal("helmet not moved")
	}
	if f.player.EquippedStack(item.Head).Def != _helmet {
		t.Fatal("helmet not equipped")
	}
	if h.QuickMove(f.player, InventoryStart+2) == nil {
		t.Fatal("shield not moved")
	}
	if f.player.EquippedStack(item.OffHand).Def != _shield {
		t.Fatal("shield not equipped")
	}
	// 从护甲格子移出到背包
	if h.QuickMove(f.player, EquipmentSlotId(item.Head)) == nil {
		t.Fatal("helmet not unequipped")
	}
	if !f.player.EquippedStack(item.Head).IsEmpty() || f.invStack(9).Def != _helmet {
		t.Fatal("helmet not in main inventory")
	}
}

func TestSourceStackLocked(t *testing.T) {
	f := newFixture()
	h := f.open(f.store)
	if h.QuickMove(f.player, EquipmentSlotId(item.Chest)) != nil {
		t.Fatal("open backpack moved")
	}
	if f.player.EquippedStack(item.Chest) != f.backpack {
		t.Fatal("backpack not equipped")
	}
}

func TestQuickMoveCrafting(t *testing.T) {
	f := newFixture()
	_ = f.player.GetCrafting().Set(0, item.NewStack(_stone, 5))
	h := f.open(f.store)
	if h.QuickMove(f.player, CraftingStart) == nil {
		t.Fatal("nothing moved")
	}
	if f.invStack(9).GetCount() != 5 || !f.player.GetCrafting().IsEmpty() {
		t.Fatalf("main inventory:%v", f.invStack(9))
	}
}

func TestQuickMoveResult(t *testing.T) {
	f := newFixture()
	_ = f.player.GetCraftResult().Set(0, item.NewStack(_stone, 4))
	h := f.open(f.store)
	transferred := 0
	h.Slots()[ResultSlot].OnQuickTransferFunc = func(amount int) {
		transferred += amount
	}
	if h.QuickMove(f.player, ResultSlot).GetCount() != 4 {
		t.Fatal("result not moved")
	}
	// 从后往前放,先到快捷栏最后一格
	if f.invStack(8).GetCount() != 4 {
		t.Fatalf("hotbar:%v", f.invStack(8))
	}
	if transferred != 4 || len(f.player.GetDropped()) != 0 {
		t.Fatalf("transferred:%v dropped:%v", transferred, f.player.GetDropped())
	}
}

func fillInventory(p *player.Player) {
	for i := 0; i < player.MainSize; i++ {
		_ = p.GetInventory().Set(i, item.NewStack(_helmet, 1))
	}
}

func TestQuickMoveResultNoRoom(t *testing.T) {
	f := newFixture()
	fillInventory(f.player)
	_ = f.player.GetCraftResult().Set(0, item.NewStack(_stone, 4))
	h := f.open(f.store)
	if h.QuickMove(f.player, ResultSlot) != nil {
		t.Fatal("moved without room")
	}
	result, _ := f.player.GetCraftResult().Get(0)
	if result.GetCount() != 4 || len(f.player.GetDropped()) != 0 {
		t.Fatalf("result:%v dropped:%v", result, f.player.GetDropped())
	}
}

func TestQuickMoveResultPartialDropsRemainder(t *testing.T) {
	f := newFixture()
	fillInventory(f.player)
	_ = f.player.GetInventory().Set(8, item.NewStack(_stone, 60))
	_ = f.player.GetCraftResult().Set(0, item.NewStack(_stone, 10))
	h := f.open(f.store)
	if h.QuickMove(f.player, ResultSlot).GetCount() != 10 {
		t.Fatal("result not moved")
	}
	if f.invStack(8).GetCount() != 64 {
		t.Fatalf("hotbar:%v", f.invStack(8))
	}
	dropped := f.player.GetDropped()
	if len(dropped) != 1 || dropped[0].Count != 6 {
		t.Fatalf("dropped:%v", dropped)
	}
	if !f.player.GetCraftResult().IsEmpty() {
		t.Fatal("result slot not cleared")
	}
}

func TestQuickMoveNothing(t *testing.T) {
	f := newFixture()
	h := f.open(f.store)
	if h.QuickMove(f.player, InventoryStart) != nil {
		t.Fatal("empty slot moved")
	}
	if h.QuickMove(f.player, h.BagEnd()) != nil || h.QuickMove(f.player, -1) != nil {
		t.Fatal("out of range slot moved")
	}
}

// 保存时检查合成格子是否已经还给玩家
type orderStore struct {
	*memdb.MemDb
	crafting       *inventory.Grid
	craftingAtSave bool
}

func (s *orderStore) Find(stack *item.Stack) (db.BagContainer, bool) {
	container, ok := s.MemDb.Find(stack)
	if !ok {
		return nil, false
	}
	return &orderContainer{BagContainer: container, store: s}, true
}

type orderContainer struct {
	db.BagContainer
	store *orderStore
}

func (c *orderContainer) SetContents(stack *item.Stack, contents []*item.Stack) error {
	c.store.craftingAtSave = !c.store.crafting.IsEmpty()
	return c.BagContainer.SetContents(stack, contents)
}

func TestCloseOrdering(t *testing.T) {
	f := newFixture()
	store := &orderStore{MemDb: f.store, crafting: f.player.GetCrafting()}
	_ = f.player.GetCrafting().Set(1, item.NewStack(_stone, 3))
	_ = f.player.GetInventory().Set(0, item.NewStack(_torch, 1))
	h := f.open(store)
	h.QuickMove(f.player, HotbarStart)
	h.SetCursor(item.NewStack(_torch, 2))
	h.OnClosed(f.player)
	if !store.craftingAtSave {
		t.Fatal("crafting returned before the bag was saved")
	}
	if !f.player.GetCrafting().IsEmpty() || f.invStack(0).GetCount() != 3 {
		t.Fatalf("crafting not returned:%v", f.invStack(0))
	}
	dropped := f.player.GetDropped()
	if len(dropped) != 1 || dropped[0].Count != 2 || h.GetCursor() != nil {
		t.Fatalf("cursor not dropped:%v", dropped)
	}
	if h.BagInventory().IsDirty() {
		t.Fatal("bag not saved")
	}
}

func TestFactory(t *testing.T) {
	f := newFixture()
	f.seed(t, map[int]*item.Stack{0: item.NewStack(_torch, 7)})
	bag := inventory.NewBagInventory(f.backpack, inventory.ConfigFromSpec(_backpack.Bag), f.store)
	factory := NewBagScreenFactory(bag)
	if factory.DisplayName() != "Backpack" || factory.ShouldCloseCurrentScreen() {
		t.Fatalf("name:%v", factory.DisplayName())
	}
	h, ok := factory.CreateMenu(4, f.player)
	if !ok || h.GetSyncId() != 4 {
		t.Fatal("menu not created")
	}
	var buf bytes.Buffer
	if err := factory.WriteScreenOpeningData(&buf); err != nil {
		t.Fatal(err)
	}
	// 客户端镜像
	client := player.NewPlayer(1, "test", true)
	client.SetEquippedStack(item.Chest, f.backpack.Copy())
	writes := f.store.WriteCount()
	clientScreen, err := NewBagScreenHandlerFromPayload(4, client, &buf, f.store)
	if err != nil {
		t.Fatal(err)
	}
	if clientScreen.BagEnd() != h.BagEnd() || clientScreen.OffsetY() != h.OffsetY() {
		t.Fatalf("client bag range:[%v,%v)", clientScreen.BagStart(), clientScreen.BagEnd())
	}
	if !clientScreen.BagInventory().IsEmpty() {
		t.Fatal("client must not load contents")
	}
	clientScreen.OnClosed(client)
	if f.store.WriteCount() != writes || client.GetBagStatus() != inventory.BagStatusClose {
		t.Fatal("client touched the store")
	}
}

func TestFactoryNotABag(t *testing.T) {
	bag := inventory.NewBagInventory(item.NewStack(_stone, 1), inventory.BagConfig{Rows: 1, Columns: 1}, memdb.NewMemDb())
	factory := NewBagScreenFactory(bag)
	if _, ok := factory.CreateMenu(1, player.NewPlayer(1, "test", false)); ok {
		t.Fatal("menu created for non-bag item")
	}
	if factory.DisplayName() != "" {
		t.Fatalf("name:%v", factory.DisplayName())
	}
	if _, ok := NewBagScreenFactory(inventory.Empty).CreateMenu(1, player.NewPlayer(1, "test", false)); ok {
		t.Fatal("menu created for empty bag")
	}
}
