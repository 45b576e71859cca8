package minmax

// Listener：扫描进度回调，回调之间由计算器串行化
type Listener interface {
	MinMaxProgress(s Snapshot)
}

// ListenerFunc：函数适配器
type ListenerFunc func(s Snapshot)

func (fn ListenerFunc) MinMaxProgress(s Snapshot) { fn(s) }

func notify(l Listener, i *Info) {
	if l != nil {
		l.MinMaxProgress(i.Snapshot())
	}
}
