package dataset

import (
	"sort"
	"sync"

	"meshcore/internal/logger"
)

// 文档注释：数据集注册表
// 背景：宿主程序可同时打开多个网格数据集，按名称登记与检索；关闭时统一释放。
// 约束：同名注册会先关闭旧数据集；线程安全读写；绕过注册表直接关闭的数据集对 Get/Names 不可见。
type Registry struct {
	mu sync.RWMutex
	ds map[string]*Dataset
}

func NewRegistry() *Registry {
	return &Registry{ds: make(map[string]*Dataset)}
}

// Register：登记数据集
func (r *Registry) Register(d *Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.ds[d.Name()]; ok && old != d {
		_ = old.Close()
	}
	r.ds[d.Name()] = d
	logger.L().Info("dataset_registered", "name", d.Name())
}

func (r *Registry) Get(name string) (*Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.ds[name]
	if !ok || d.closed() {
		return nil, false
	}
	return d, true
}

// Names：已登记名称（升序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ds))
	for k, d := range r.ds {
		if !d.closed() {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Close：关闭并移除指定数据集；不存在时返回 false
func (r *Registry) Close(name string) bool {
	r.mu.Lock()
	d, ok := r.ds[name]
	delete(r.ds, name)
	r.mu.Unlock()
	if ok {
		_ = d.Close()
	}
	return ok
}

// CloseAll：关闭全部数据集
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.ds
	r.ds = make(map[string]*Dataset)
	r.mu.Unlock()
	for _, d := range all {
		_ = d.Close()
	}
}
