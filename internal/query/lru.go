package query

import (
	"container/list"
	"sync"
	"time"
)

// 文档注释：进程内 LRU 缓存（带 TTL）
// 背景：交互式切片在短周期内反复请求相同的 (帧, 时间步, 中心, 宽度)，命中时跳过二分与扫描。
// 约束：容量为 0 时禁用缓存；过期条目在读取时淘汰。
type LRU[K comparable, V any] struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[K]*list.Element
	now  func() time.Time
}

type entry[K comparable, V any] struct {
	k   K
	v   V
	exp time.Time
}

func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	return &LRU[K, V]{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[K]*list.Element), now: time.Now}
}

func (c *LRU[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	e, ok := c.dict[k]
	if !ok {
		return zero, false
	}
	it := e.Value.(entry[K, V])
	if c.now().Before(it.exp) {
		c.lst.MoveToFront(e)
		return it.v, true
	}
	c.lst.Remove(e)
	delete(c.dict, k)
	return zero, false
}

func (c *LRU[K, V]) Set(k K, v V) {
	if c.cap <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry[K, V]{k: k, v: v, exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry[K, V]).k)
		c.lst.Remove(back)
	}
}

func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// Purge：清空全部条目
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	c.lst.Init()
	c.dict = make(map[K]*list.Element)
	c.mu.Unlock()
}
