package monitor

import "time"

type Status struct {
	Storage    bool      `json:"storage"`
	QueueDepth int       `json:"queue_depth"`
	FailedKeys int       `json:"failed_keys"`
	LastCheck  time.Time `json:"last_check"`
}
