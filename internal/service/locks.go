package service

import "sync"

// MemberLocks serializes balance-sensitive operations per member. Every
// service that checks a balance before writing against it must share the same
// instance, otherwise two concurrent checks can both pass and overdraw the
// member. Different members never contend.
type MemberLocks struct {
	mu    sync.Mutex
	locks map[int32]*sync.Mutex
}

func NewMemberLocks() *MemberLocks {
	return &MemberLocks{locks: make(map[int32]*sync.Mutex)}
}

func (l *MemberLocks) Lock(memberID int32) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[memberID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[memberID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m
}
