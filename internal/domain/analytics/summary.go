package analytics

// Summary is the fixed-shape analytics aggregate for one owner. Stored status
// values that don't match a bucket still count toward the totals.
type Summary struct {
	Projects      ProjectBuckets `json:"projects"`
	Tasks         TaskBuckets    `json:"tasks"`
	TotalProjects int            `json:"totalProjects"`
	TotalTasks    int            `json:"totalTasks"`
}

type ProjectBuckets struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Planning  int `json:"planning"`
	OnHold    int `json:"onhold"`
}

type TaskBuckets struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in-progress"`
	Done       int `json:"done"`
}
