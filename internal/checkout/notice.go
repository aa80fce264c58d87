package checkout

import "sync"

type NoticeKind string

const (
	NoticeLoading NoticeKind = "loading"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient, user-visible message about the checkout.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

type Notifier interface {
	Notify(n Notice)
}

// NoticeLog keeps notices until they are drained.
type NoticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *NoticeLog) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *NoticeLog) Notices() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notice(nil), l.notices...)
}

// Drain returns the pending notices and forgets them.
func (l *NoticeLog) Drain() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.notices
	l.notices = nil
	return out
}

// Last returns the most recent notice.
func (l *NoticeLog) Last() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		return Notice{}, false
	}
	return l.notices[len(l.notices)-1], true
}
