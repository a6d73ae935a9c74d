package grammar

// Report describes the LR(1) automaton of a grammar. It is produced even when the grammar has conflicts.
// State numbers are the baked state IDs when the grammar is conflict-free.
type Report struct {
	Tokens []*ReportToken `json:"tokens"`
	Rules  []*ReportRule  `json:"rules"`
	States []*State       `json:"states"`
}

type ReportToken struct {
	Number int    `json:"number"`
	Kind   string `json:"kind"`
	Text   string `json:"text"`
}

type ReportRule struct {
	Number       int                  `json:"number"`
	Name         string               `json:"name"`
	Type         string               `json:"type"`
	Alternatives []*ReportAlternative `json:"alternatives"`
}

type ReportAlternative struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Code   string `json:"code"`
}

type Item struct {
	Rule        int      `json:"rule"`
	Alternative int      `json:"alternative"`
	Dot         int      `json:"dot"`
	Text        string   `json:"text"`
	LookAhead   []string `json:"look_ahead"`
}

type Transition struct {
	Symbol string `json:"symbol"`
	State  int    `json:"state"`
}

type Reduce struct {
	LookAhead   []string `json:"look_ahead"`
	Rule        int      `json:"rule"`
	Alternative int      `json:"alternative"`
	Text        string   `json:"text"`
}

type SRConflict struct {
	Token       string `json:"token"`
	ShiftTarget int    `json:"shift_target"`
	Rule        int    `json:"rule"`
	Alternative int    `json:"alternative"`
	Text        string `json:"text"`
}

type RRConflict struct {
	Token        string `json:"token"`
	Rule1        int    `json:"rule_1"`
	Alternative1 int    `json:"alternative_1"`
	Text1        string `json:"text_1"`
	Rule2        int    `json:"rule_2"`
	Alternative2 int    `json:"alternative_2"`
	Text2        string `json:"text_2"`
}

type State struct {
	Number     int           `json:"number"`
	Kernel     []*Item       `json:"kernel"`
	Shift      []*Transition `json:"shift"`
	Reduce     []*Reduce     `json:"reduce"`
	GoTo       []*Transition `json:"goto"`
	SRConflict []*SRConflict `json:"sr_conflict"`
	RRConflict []*RRConflict `json:"rr_conflict"`
}
