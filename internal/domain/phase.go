package domain

// Phase は画面状態の種別を表す定数です
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseReady
	PhaseEnhancing
	PhaseSuccess
	PhaseFailed
)

// phaseData はPhaseの名前と表示名を保持します
type phaseData struct {
	Value       string
	DisplayName string
}

// phases は各Phaseのデータを定義します
var phases = []phaseData{
	{"empty", "Upload an image to get started"},
	{"ready", "Ready to enhance"},
	{"enhancing", "Enhancing..."},
	{"success", "Enhanced"},
	{"failed", "Enhancement failed"},
}

// String はPhaseの名前を返します
func (p Phase) String() string {
	if int(p) >= 0 && int(p) < len(phases) {
		return phases[p].Value
	}
	return "empty"
}

// DisplayName はPhaseの表示名を返します
func (p Phase) DisplayName() string {
	if int(p) >= 0 && int(p) < len(phases) {
		return phases[p].DisplayName
	}
	return phases[PhaseEmpty].DisplayName
}

// AllPhases はすべてのPhaseを返します
func AllPhases() []Phase {
	return []Phase{
		PhaseEmpty,
		PhaseReady,
		PhaseEnhancing,
		PhaseSuccess,
		PhaseFailed,
	}
}
