package session

import "sps-logbook/internal/model"

// KeyState 某个 (日期, 泵站) 在本会话中的覆盖状态
type KeyState string

const (
	KeyBlocked  KeyState = "blocked"  // 提交时撞键，等待授权码
	KeyUnlocked KeyState = "unlocked" // 已授权，下一次提交可覆盖，用后即失效
)

// State 会话可变状态，按会话 ID 存储
type State struct {
	ActivePage Page                `json:"active_page,omitempty"`
	Keys       map[string]KeyState `json:"keys,omitempty"`
}

// NewState 空状态
func NewState() *State {
	return &State{Keys: make(map[string]KeyState)}
}

// Status 返回键状态，未记录时为空串
func (st *State) Status(k model.RecordKey) KeyState {
	return st.Keys[k.String()]
}

// Block 标记键为待授权
func (st *State) Block(k model.RecordKey) { st.set(k, KeyBlocked) }

// Unlock 标记键为已授权
func (st *State) Unlock(k model.RecordKey) { st.set(k, KeyUnlocked) }

// Consume 消耗一次授权，返回此前是否处于已授权状态
func (st *State) Consume(k model.RecordKey) bool {
	if st.Keys[k.String()] != KeyUnlocked {
		return false
	}
	delete(st.Keys, k.String())
	return true
}

// Clear 移除键状态
func (st *State) Clear(k model.RecordKey) { delete(st.Keys, k.String()) }

func (st *State) set(k model.RecordKey, v KeyState) {
	if st.Keys == nil {
		st.Keys = make(map[string]KeyState)
	}
	st.Keys[k.String()] = v
}
