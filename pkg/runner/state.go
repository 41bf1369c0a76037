package runner

// State は物語生成の進行状態です。
type State int

const (
	StateIdle State = iota
	StateStyleDerived
	StateSeedCreated
	StatePage2Created
	StateReady
	StateExtending
)

// String はログや API 応答で用いる状態名を返します。
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStyleDerived:
		return "style_derived"
	case StateSeedCreated:
		return "seed_created"
	case StatePage2Created:
		return "page2_created"
	case StateReady:
		return "ready"
	case StateExtending:
		return "extending"
	default:
		return "unknown"
	}
}

// TransitionFunc は状態遷移のたびに呼び出される通知関数です。
type TransitionFunc func(State)
