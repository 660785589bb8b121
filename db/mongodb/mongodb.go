package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fish-tennis/bagserver/db"
	"github.com/fish-tennis/bagserver/item"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var _ db.BagContainerLookup = (*MongoDb)(nil)

const (
	defaultTimeout = 3 * time.Second
)

// 背包数据的mongo文档,一个背包一个文档
type bagDocument struct {
	Uid   int64          `bson:"_id"`
	State int32          `bson:"state"`
	Size  int            `bson:"size"`
	Cells []cellDocument `bson:"cells,omitempty"`
}

// 非空格子
type cellDocument struct {
	Slot  int    `bson:"slot"`
	Item  string `bson:"item"`
	Count int    `bson:"count"`
	Uid   int64  `bson:"uid,omitempty"`
	Name  string `bson:"name,omitempty"`
}

// 背包存储的mongo实现
type MongoDb struct {
	mongoClient   *mongo.Client
	mongoDatabase *mongo.Database

	uri            string
	dbName         string
	collectionName string

	// 解析物品id
	registry *item.Registry
	timeout  time.Duration
}

func NewMongoDb(uri, dbName, collectionName string, registry *item.Registry) *MongoDb {
	return &MongoDb{
		uri:            uri,
		dbName:         dbName,
		collectionName: collectionName,
		registry:       registry,
		timeout:        defaultTimeout,
	}
}

// 每次读写的超时
func (m *MongoDb) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		m.timeout = timeout
	}
}

func (m *MongoDb) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return err
	}
	// Ping the primary
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		slog.Error("MongoPingErr", "uri", m.uri, "err", err)
		_ = client.Disconnect(ctx)
		return err
	}
	m.mongoClient = client
	m.mongoDatabase = m.mongoClient.Database(m.dbName)
	slog.Info("mongo Connected", "db", m.dbName, "collection", m.collectionName)
	return nil
}

func (m *MongoDb) Disconnect(ctx context.Context) {
	if m.mongoClient == nil {
		return
	}
	if err := m.mongoClient.Disconnect(ctx); err != nil {
		slog.Error("MongoDisconnectErr", "err", err)
	}
	slog.Info("mongo Disconnected")
}

func (m *MongoDb) Find(stack *item.Stack) (db.BagContainer, bool) {
	if _, ok := stack.Bag(); !ok {
		return nil, false
	}
	return (*mongoContainer)(m), true
}

func (m *MongoDb) collection() *mongo.Collection {
	return m.mongoDatabase.Collection(m.collectionName)
}

type mongoContainer MongoDb

func (c *mongoContainer) Contents(stack *item.Stack) ([]*item.Stack, error) {
	if stack.Uid == 0 {
		return db.EmptyContents(stack), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	doc := &bagDocument{}
	result := (*MongoDb)(c).collection().FindOne(ctx, bson.D{{"_id", stack.Uid}})
	if err := result.Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return db.EmptyContents(stack), nil
		}
		return nil, fmt.Errorf("%w: %v", db.ErrStoreUnavailable, err)
	}
	// 只设置过状态,还没有保存过内容
	if doc.Size == 0 && len(doc.Cells) == 0 {
		return db.EmptyContents(stack), nil
	}
	return c.toStacks(doc)
}

func (c *mongoContainer) toStacks(doc *bagDocument) ([]*item.Stack, error) {
	if doc.Size < 0 || doc.Size > item.MaxContentsSize {
		return nil, fmt.Errorf("%w: bag %v size %v", item.ErrCorruptContents, doc.Uid, doc.Size)
	}
	contents := make([]*item.Stack, doc.Size)
	for _, cell := range doc.Cells {
		if cell.Slot < 0 || cell.Slot >= doc.Size {
			return nil, fmt.Errorf("%w: bag %v slot %v out of size %v", item.ErrCorruptContents, doc.Uid, cell.Slot, doc.Size)
		}
		def := c.registry.Get(cell.Item)
		if def == nil {
			return nil, fmt.Errorf("%w: bag %v unknown item %v", item.ErrCorruptContents, doc.Uid, cell.Item)
		}
		contents[cell.Slot] = &item.Stack{
			Def:        def,
			Count:      cell.Count,
			Uid:        cell.Uid,
			CustomName: cell.Name,
		}
	}
	return contents, nil
}

func (c *mongoContainer) SetContents(stack *item.Stack, contents []*item.Stack) error {
	uid := db.EnsureUid(stack)
	var cells []cellDocument
	for slot, s := range contents {
		if s.IsEmpty() {
			continue
		}
		cells = append(cells, cellDocument{
			Slot:  slot,
			Item:  s.Def.Id,
			Count: s.Count,
			Uid:   s.Uid,
			Name:  s.CustomName,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	_, err := (*MongoDb)(c).collection().UpdateOne(ctx, bson.D{{"_id", uid}},
		bson.D{{"$set", bson.D{{"size", len(contents)}, {"cells", cells}}}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %v", db.ErrStoreUnavailable, err)
	}
	return nil
}

func (c *mongoContainer) SetState(stack *item.Stack, state db.BagState) error {
	uid := db.EnsureUid(stack)
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	_, err := (*MongoDb)(c).collection().UpdateOne(ctx, bson.D{{"_id", uid}},
		bson.D{{"$set", bson.D{{"state", int32(state)}}}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %v", db.ErrStoreUnavailable, err)
	}
	return nil
}
