package catalog

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/internal/storage"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

// StorageStatement blocks talk to the Redis collaborator, directly or
// through a transaction connector
const StorageStatement block.Type = "storage-statement"

const (
	TransactionBegin    block.Action = "transaction-begin"
	TransactionCommit   block.Action = "transaction-commit"
	TransactionRollback block.Action = "transaction-rollback"
	RedisGet            block.Action = "redis-get"
	RedisSet            block.Action = "redis-set"
	RedisDelete         block.Action = "redis-delete"
)

const (
	slotConnector = "connector"
	slotKey       = "key"
	slotTTL       = "ttl"

	redisResource = "redis"
)

func registerStorageStatement(d *block.Dispatcher) {
	f := d.Family(StorageStatement)
	key := block.One(slotKey)
	conn := block.Optional(slotConnector)
	f.Register(TransactionBegin, block.Eval(transactionBegin))
	f.Register(TransactionCommit, block.Eval(transactionCommit,
		block.One(slotConnector),
	))
	f.Register(TransactionRollback, block.Eval(transactionRollback,
		block.One(slotConnector),
	))
	f.Register(RedisGet, block.Eval(redisGet, key))
	f.Register(RedisSet, block.Eval(redisSet,
		key, block.One(slotValue), block.Optional(slotTTL), conn,
	))
	f.Register(RedisDelete, block.Eval(redisDelete, key, conn))
}

func transactionBegin(c *block.Call) (api.Value, error) {
	store, err := c.Exec.Redis()
	if err != nil {
		return api.Null, storageErr("begin", redisResource, err)
	}
	tx := store.Begin()
	c.Exec.Transactions().Track(tx)
	return api.ConnectorValue(tx), nil
}

func transactionCommit(c *block.Call) (api.Value, error) {
	tx, err := block.ConnectorAs[state.Transactional](c.In, slotConnector)
	if err != nil {
		return api.Null, err
	}
	if err := c.Exec.Transactions().Commit(c.Context(), tx); err != nil {
		return api.Null, storageErr("commit", redisResource, err)
	}
	return api.Boolean(true), nil
}

func transactionRollback(c *block.Call) (api.Value, error) {
	tx, err := block.ConnectorAs[state.Transactional](c.In, slotConnector)
	if err != nil {
		return api.Null, err
	}
	if err := c.Exec.Transactions().Rollback(c.Context(), tx); err != nil {
		return api.Null, storageErr("rollback", redisResource, err)
	}
	return api.Boolean(true), nil
}

// redisGet returns the stored value, decoding it when it holds JSON
func redisGet(c *block.Call) (api.Value, error) {
	key, err := c.In.String(slotKey)
	if err != nil {
		return api.Null, err
	}
	store, err := c.Exec.Redis()
	if err != nil {
		return api.Null, storageErr("get", key, err)
	}
	raw, err := store.Get(c.Context(), key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return api.Null, nil
	}
	if err != nil {
		return api.Null, storageErr("get", key, err)
	}
	if v, err := decodeJSON([]byte(raw)); err == nil {
		return v, nil
	}
	return api.String(raw), nil
}

// redisSet stores the JSON encoding of the value. With a connector, the
// write is queued in the transaction instead
func redisSet(c *block.Call) (api.Value, error) {
	key, err := c.In.String(slotKey)
	if err != nil {
		return api.Null, err
	}
	ttlMS, err := c.In.IntegerOr(slotTTL, 0)
	if err != nil {
		return api.Null, err
	}
	data, err := json.Marshal(c.In.Value(slotValue))
	if err != nil {
		return api.Null, err
	}
	ttl := time.Duration(ttlMS) * time.Millisecond

	if c.In.Has(slotConnector) {
		tx, err := block.ConnectorAs[*storage.RedisTx](c.In, slotConnector)
		if err != nil {
			return api.Null, err
		}
		if err := tx.Set(c.Context(), key, string(data), ttl); err != nil {
			return api.Null, storageErr("set", key, err)
		}
		return api.Boolean(true), nil
	}

	store, err := c.Exec.Redis()
	if err != nil {
		return api.Null, storageErr("set", key, err)
	}
	if err := store.Set(c.Context(), key, string(data), ttl); err != nil {
		return api.Null, storageErr("set", key, err)
	}
	return api.Boolean(true), nil
}

// redisDelete returns the number of keys removed. A delete queued in a
// transaction returns null, since the count is not known until commit
func redisDelete(c *block.Call) (api.Value, error) {
	key, err := c.In.String(slotKey)
	if err != nil {
		return api.Null, err
	}

	if c.In.Has(slotConnector) {
		tx, err := block.ConnectorAs[*storage.RedisTx](c.In, slotConnector)
		if err != nil {
			return api.Null, err
		}
		if err := tx.Delete(c.Context(), key); err != nil {
			return api.Null, storageErr("delete", key, err)
		}
		return api.Null, nil
	}

	store, err := c.Exec.Redis()
	if err != nil {
		return api.Null, storageErr("delete", key, err)
	}
	n, err := store.Delete(c.Context(), key)
	if err != nil {
		return api.Null, storageErr("delete", key, err)
	}
	return api.Integer(n), nil
}

func storageErr(op, resource string, err error) error {
	return fault.WithContext(err, fault.Storage{
		Operation: op,
		Resource:  resource,
	})
}
