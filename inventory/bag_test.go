package inventory

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/db/memdb"
	"github.com/fish-tennis/bagserver/item"
	"github.com/fish-tennis/gentity/util"
)

var (
	_torch    = &item.Def{Id: "bags:torch", Name: "Torch", MaxCount: 64}
	_backpack = &item.Def{Id: "bags:backpack", Name: "Backpack", MaxCount: 1, Equipment: item.Chest,
		Bag: &item.BagSpec{Rows: 3, Columns: 9, TextureId: "bags:textures/gui/backpack.png", Slot: item.Chest}}
)

func TestMain(m *testing.M) {
	util.InitIdGenerator(1)
	m.Run()
}

type testViewer struct {
	client   bool
	status   BagStatus
	equipped map[item.EquipmentSlot]*item.Stack
}

func (v *testViewer) IsClient() bool {
	return v.client
}

func (v *testViewer) SetBagStatus(status BagStatus) {
	v.status = status
}

func (v *testViewer) EquippedStack(slot item.EquipmentSlot) *item.Stack {
	return v.equipped[slot]
}

// 可以模拟存储层故障的存储
type flakyStore struct {
	*memdb.MemDb
	failWrites bool
	contents   []*item.Stack // 不为nil时读取返回该内容
}

func (f *flakyStore) Find(stack *item.Stack) (db.BagContainer, bool) {
	container, ok := f.MemDb.Find(stack)
	if !ok {
		return nil, false
	}
	return &flakyContainer{BagContainer: container, store: f}, true
}

type flakyContainer struct {
	db.BagContainer
	store *flakyStore
}

func (c *flakyContainer) Contents(stack *item.Stack) ([]*item.Stack, error) {
	if c.store.contents != nil {
		return db.CopyContents(c.store.contents), nil
	}
	return c.BagContainer.Contents(stack)
}

func (c *flakyContainer) SetContents(stack *item.Stack, contents []*item.Stack) error {
	if c.store.failWrites {
		return db.ErrStoreUnavailable
	}
	return c.BagContainer.SetContents(stack, contents)
}

func newBackpack(store db.BagContainerLookup, saveAllowed, loadAllowed bool) *BagInventory {
	config := ConfigFromSpec(_backpack.Bag)
	config.SaveAllowed = saveAllowed
	config.LoadAllowed = loadAllowed
	return NewBagInventory(item.NewStack(_backpack, 1), config, store)
}

// 往存储里预先写入内容
func seed(t *testing.T, store *memdb.MemDb, source *item.Stack, contents []*item.Stack) {
	container, ok := store.Find(source)
	if !ok {
		t.Fatal("no container")
	}
	if err := container.SetContents(source, contents); err != nil {
		t.Fatal(err)
	}
}

func TestNewBagInventory(t *testing.T) {
	for _, size := range [][2]int{{0, 0}, {1, 9}, {3, 9}, {6, 9}, {4, 4}} {
		b := NewBagInventory(item.NewStack(_backpack, 1), BagConfig{Rows: size[0], Columns: size[1]}, nil)
		if b.Size() != size[0]*size[1] || !b.IsEmpty() || b.IsDirty() {
			t.Fatalf("bag %v size:%v dirty:%v", size, b.Size(), b.IsDirty())
		}
	}
}

func TestMarkDirtyOnMutation(t *testing.T) {
	b := newBackpack(memdb.NewMemDb(), true, true)
	if err := b.Set(0, item.NewStack(_torch, 5)); err != nil {
		t.Fatal(err)
	}
	if !b.IsDirty() {
		t.Fatal("set should mark dirty")
	}
	// Empty的markDirty是空操作
	Empty.MarkDirty()
	if Empty.IsDirty() {
		t.Fatal("Empty should never be dirty")
	}
}

// 3x9背包: 打开加载,放入火把,关闭保存
func TestOpenEditCloseScenario(t *testing.T) {
	store := memdb.NewMemDb()
	b := newBackpack(store, true, true)
	stored := make([]*item.Stack, 27)
	stored[26] = item.NewStack(_torch, 64)
	seed(t, store, b.SourceStack(), stored)

	viewer := &testViewer{}
	b.OnOpen(viewer)
	if viewer.status != BagStatusOpen {
		t.Fatalf("status %v", viewer.status)
	}
	if _, state, _ := store.Peek(b.SourceStack().Uid); state != db.BagStateOpened {
		t.Fatalf("state %v", state)
	}
	if s, _ := b.Get(26); s.GetCount() != 64 {
		t.Fatalf("loaded cell 26: %v", s)
	}
	if b.IsDirty() {
		t.Fatal("load should not mark dirty")
	}

	if err := b.Set(0, item.NewStack(_torch, 5)); err != nil {
		t.Fatal(err)
	}
	if !b.IsDirty() {
		t.Fatal("should be dirty")
	}

	b.OnClose(viewer)
	if b.IsDirty() {
		t.Fatal("save should clear dirty")
	}
	if viewer.status != BagStatusClose {
		t.Fatalf("status %v", viewer.status)
	}
	contents, state, _ := store.Peek(b.SourceStack().Uid)
	if len(contents) != 27 || contents[0].GetCount() != 5 || contents[26].GetCount() != 64 {
		t.Fatalf("stored contents %v", contents)
	}
	if state != db.BagStateClosed {
		t.Fatalf("state %v", state)
	}
}

func TestCloseWithoutChangesDoesNotSave(t *testing.T) {
	store := memdb.NewMemDb()
	b := newBackpack(store, true, true)
	b.OnOpen(&testViewer{})
	b.OnClose(&testViewer{})
	if store.WriteCount() != 0 {
		t.Fatalf("write count %v", store.WriteCount())
	}
}

func TestLoadNotAllowed(t *testing.T) {
	store := memdb.NewMemDb()
	b := newBackpack(store, true, false)
	stored := make([]*item.Stack, 27)
	for i := range stored {
		stored[i] = item.NewStack(_torch, i+1)
	}
	seed(t, store, b.SourceStack(), stored)

	b.OnOpen(&testViewer{})
	if !b.IsEmpty() {
		t.Fatal("loadAllowed=false should leave cells empty after open")
	}
	if err := b.Load(); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err %v", err)
	}
	if !b.IsEmpty() {
		t.Fatal("Load should not mutate cells")
	}
}

func TestSaveNotAllowed(t *testing.T) {
	store := memdb.NewMemDb()
	b := newBackpack(store, false, true)
	_ = b.Set(0, item.NewStack(_torch, 1))
	if err := b.Save(); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err %v", err)
	}
	b.OnClose(&testViewer{})
	if store.WriteCount() != 0 {
		t.Fatalf("store written %v times", store.WriteCount())
	}
	if !b.IsDirty() {
		t.Fatal("dirty should stay set")
	}
}

func TestSaveIdempotent(t *testing.T) {
	store := memdb.NewMemDb()
	b := newBackpack(store, true, true)
	_ = b.Set(3, item.NewStack(_torch, 7))
	for i := 0; i < 2; i++ {
		if err := b.Save(); err != nil {
			t.Fatal(err)
		}
		if b.IsDirty() {
			t.Fatalf("save %v left dirty", i)
		}
		contents, _, _ := store.Peek(b.SourceStack().Uid)
		if len(contents) != 27 || contents[3].GetCount() != 7 {
			t.Fatalf("save %v contents %v", i, contents)
		}
	}
	if store.WriteCount() != 2 {
		t.Fatalf("write count %v", store.WriteCount())
	}
}

func TestBindingMissing(t *testing.T) {
	store := memdb.NewMemDb()
	// 不是背包物品
	b := NewBagInventory(item.NewStack(_torch, 1), ConfigFromSpec(_backpack.Bag), store)
	if err := b.Load(); !errors.Is(err, ErrBindingMissing) {
		t.Fatalf("load err %v", err)
	}
	_ = b.Set(0, item.NewStack(_torch, 1))
	if err := b.Save(); !errors.Is(err, ErrBindingMissing) {
		t.Fatalf("save err %v", err)
	}
	if !b.IsDirty() {
		t.Fatal("failed save should keep dirty")
	}
	// 没有存储
	if err := newBackpack(nil, true, true).Load(); !errors.Is(err, ErrBindingMissing) {
		t.Fatalf("nil store err %v", err)
	}
}

func TestLoadSizeMismatch(t *testing.T) {
	cases := []struct {
		name   string
		stored int
	}{
		{"shorter", 10},
		{"longer", 40},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := &flakyStore{MemDb: memdb.NewMemDb()}
			store.contents = make([]*item.Stack, c.stored)
			for i := range store.contents {
				store.contents[i] = item.NewStack(_torch, 1)
			}
			b := newBackpack(store, true, true)
			_ = b.Set(20, item.NewStack(_torch, 9))
			err := b.Load()
			if !errors.Is(err, ErrIndexViolation) {
				t.Fatalf("err %v", err)
			}
			if b.Size() != 27 {
				t.Fatalf("size changed %v", b.Size())
			}
			for i := 0; i < 27; i++ {
				s, _ := b.Get(i)
				want := 0
				if i < c.stored {
					want = 1
				}
				if s.GetCount() != want {
					t.Fatalf("cell %v: %v, want count %v", i, s, want)
				}
			}
		})
	}
}

func TestOpenWithLoadError(t *testing.T) {
	var buf bytes.Buffer
	defaultLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(defaultLogger)

	store := &flakyStore{MemDb: memdb.NewMemDb()}
	store.contents = []*item.Stack{item.NewStack(_torch, 3)}
	b := newBackpack(store, true, true)
	viewer := &testViewer{}
	b.OnOpen(viewer)
	if viewer.status != BagStatusOpen {
		t.Fatalf("status %v", viewer.status)
	}
	if s, _ := b.Get(0); s.GetCount() != 3 {
		t.Fatalf("cell 0 %v", s)
	}
	if !strings.Contains(buf.String(), "BagOpenLoadErr") {
		t.Fatalf("log %q", buf.String())
	}
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	store := &flakyStore{MemDb: memdb.NewMemDb(), failWrites: true}
	b := newBackpack(store, true, true)
	viewer := &testViewer{}
	b.OnOpen(viewer)
	_ = b.Set(0, item.NewStack(_torch, 5))
	b.OnClose(viewer)
	if !b.IsDirty() {
		t.Fatal("failed save should keep dirty")
	}
	// 下次关闭重试
	store.failWrites = false
	b.OnClose(viewer)
	if b.IsDirty() {
		t.Fatal("retry should clear dirty")
	}
	contents, _, _ := store.Peek(b.SourceStack().Uid)
	if contents[0].GetCount() != 5 {
		t.Fatalf("contents %v", contents)
	}
}

func TestClientSideSkipsPersistence(t *testing.T) {
	store := memdb.NewMemDb()
	b := newBackpack(store, true, true)
	stored := make([]*item.Stack, 27)
	stored[0] = item.NewStack(_torch, 3)
	seed(t, store, b.SourceStack(), stored)
	writes := store.WriteCount()

	client := &testViewer{client: true}
	b.OnOpen(client)
	if !b.IsEmpty() || client.status != BagStatusClose {
		t.Fatal("client open should not load")
	}
	_ = b.Set(1, item.NewStack(_torch, 1))
	b.OnClose(client)
	if store.WriteCount() != writes {
		t.Fatal("client close should not save")
	}
}

func TestSendReceive(t *testing.T) {
	source := item.NewStack(_backpack, 1)
	config := BagConfig{ScreenTextureId: "bags:textures/gui/satchel.png", Rows: 2, Columns: 5, SaveAllowed: true, LoadAllowed: false}
	b := NewBagInventory(source, config, nil)

	buf := &bytes.Buffer{}
	if err := b.Send(buf); err != nil {
		t.Fatal(err)
	}
	// 客户端自己身上同一个槽位的物品
	clientStack := item.NewStack(_backpack, 1)
	viewer := &testViewer{client: true, equipped: map[item.EquipmentSlot]*item.Stack{item.Chest: clientStack}}
	received, err := Receive(viewer, buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if received.Config() != config {
		t.Fatalf("config %+v, want %+v", received.Config(), config)
	}
	if received.SourceStack() != clientStack {
		t.Fatal("source stack should resolve to the receiver's equipped stack")
	}
	if received.Size() != 10 || !received.IsEmpty() {
		t.Fatal("contents are not transmitted")
	}
	if buf.Len() != 0 {
		t.Fatalf("%v bytes left", buf.Len())
	}
}

func TestSendReceiveEmpty(t *testing.T) {
	for _, b := range []*BagInventory{Empty, NewBagInventory(item.NewStack(_torch, 1), BagConfig{Rows: 1, Columns: 1}, nil)} {
		buf := &bytes.Buffer{}
		if err := b.Send(buf); err != nil {
			t.Fatal(err)
		}
		if buf.Len() != 1 {
			t.Fatalf("invalid bag payload should be one boolean, got %v bytes", buf.Len())
		}
		viewer := &testViewer{client: true}
		received, err := Receive(viewer, buf, nil)
		if err != nil {
			t.Fatal(err)
		}
		if received != Empty || received.Size() != 0 {
			t.Fatal("should receive Empty")
		}
		// 空操作
		received.OnOpen(viewer)
		received.OnClose(viewer)
		if received.Load() != nil || received.Save() != nil || viewer.status != BagStatusClose {
			t.Fatal("Empty should be a no-op")
		}
	}
}

func TestReceiveMalformed(t *testing.T) {
	valid := &bytes.Buffer{}
	_ = newBackpack(nil, true, true).Send(valid)
	payload := valid.Bytes()

	cases := map[string][]byte{
		"empty":     {},
		"truncated": payload[:len(payload)-1],
		// 装备槽位改成7
		"bad slot": func() []byte {
			b := bytes.Clone(payload)
			b[len(b)-5] = 7
			return b
		}(),
		// 行数改成65
		"too many rows": func() []byte {
			b := bytes.Clone(payload)
			b[len(b)-4] = 65
			return b
		}(),
	}
	for name, data := range cases {
		if _, err := Receive(&testViewer{client: true}, bytes.NewReader(data), nil); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("%v: err %v", name, err)
		}
	}
}
