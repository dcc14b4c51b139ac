package service

import "sync"

// keyedMutex 按键串行化互斥量。
// 考勤/休息/批注的"先检查后写入"序列必须以 (subject_id, work_date) 为粒度串行，
// 否则两个并发的开始休息请求可能同时通过存在性检查。
// 数据库唯一索引是最终兜底，这里把常规路径的竞态在进程内先行消除。
//
// 键集合以 活跃用户数 × 日期 为上界，进程生命周期内不回收。
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock 锁定指定键，返回解锁函数
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
