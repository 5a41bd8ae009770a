package state

import "sync"

// AuthStatus 凭证状态
type AuthStatus int

const (
	// AuthUnauthorized 没有可用的 Key，或上一次调用因凭证失败
	AuthUnauthorized AuthStatus = iota
	// AuthUnverified 用户刚完成 Key 选择，还没有一次成功调用来确认
	AuthUnverified
	// AuthAuthorized 有一次成功调用确认过当前 Key
	AuthAuthorized
)

func (s AuthStatus) String() string {
	switch s {
	case AuthUnauthorized:
		return "unauthorized"
	case AuthUnverified:
		return "unverified"
	case AuthAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Auth 凭证状态机
//
//	probe(true)        -> Authorized
//	probe(false)       -> Unauthorized
//	auth failure       -> Unauthorized
//	selection finished -> Unverified
//	success call       -> Unverified becomes Authorized
type Auth struct {
	mu       sync.RWMutex
	status   AuthStatus
	watchers []func(AuthStatus)
}

// Status 当前状态
func (a *Auth) Status() AuthStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Usable 是否可以发起调用（Unverified 也算可用，由下一次调用来确认）
func (a *Auth) Usable() bool {
	return a.Status() != AuthUnauthorized
}

// Probe 用启动时的探测结果初始化
func (a *Auth) Probe(hasKey bool) {
	if hasKey {
		a.set(AuthAuthorized)
		return
	}
	a.set(AuthUnauthorized)
}

// MarkUnauthorized 远端报告凭证无效
func (a *Auth) MarkUnauthorized() {
	a.set(AuthUnauthorized)
}

// MarkSelected 用户完成了 Key 选择，但尚未验证
func (a *Auth) MarkSelected() {
	a.set(AuthUnverified)
}

// ConfirmSuccess 一次成功调用确认了未验证的 Key
func (a *Auth) ConfirmSuccess() {
	a.mu.Lock()
	if a.status != AuthUnverified {
		a.mu.Unlock()
		return
	}
	a.status = AuthAuthorized
	watchers := append([]func(AuthStatus){}, a.watchers...)
	a.mu.Unlock()
	notify(watchers, AuthAuthorized)
}

// Watch 注册状态变更回调，回调在锁外执行
func (a *Auth) Watch(fn func(AuthStatus)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.watchers = append(a.watchers, fn)
}

func (a *Auth) set(s AuthStatus) {
	a.mu.Lock()
	a.status = s
	watchers := append([]func(AuthStatus){}, a.watchers...)
	a.mu.Unlock()
	notify(watchers, s)
}

func notify(watchers []func(AuthStatus), s AuthStatus) {
	for _, w := range watchers {
		w(s)
	}
}
