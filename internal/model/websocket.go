package model

// WebSocket message types sent on /ws/jobs/:jobId
const (
	WSMessageTypeSubscribed = "subscribed"
	WSMessageTypeProgress   = "progress"
	WSMessageTypeComplete   = "complete"
	WSMessageTypeError      = "error"
	WSMessageTypePing       = "ping"
	WSMessageTypePong       = "pong"
)

type WSMessage struct {
	Type string `json:"type"`
}

type WSSubscribedMessage struct {
	Type  string `json:"type"`
	JobID string `json:"jobId"`
}

// WSProgressMessage reports how many roots of a pitch table are done
type WSProgressMessage struct {
	Type        string    `json:"type"`
	JobID       string    `json:"jobId"`
	Progress    int       `json:"progress"`
	Status      JobStatus `json:"status"`
	CurrentStep string    `json:"currentStep,omitempty"`
}

type WSCompleteMessage struct {
	Type   string      `json:"type"`
	JobID  string      `json:"jobId"`
	Result interface{} `json:"result"`
}

type WSErrorMessage struct {
	Type  string  `json:"type"`
	JobID string  `json:"jobId"`
	Error WSError `json:"error"`
}

type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
