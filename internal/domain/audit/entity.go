package audit

import "time"

type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPublish Action = "publish"
	ActionSend    Action = "send"
	ActionSign    Action = "sign"
	ActionPay     Action = "pay"
	ActionConvert Action = "convert"
	ActionResolve Action = "resolve"
)

// Entry is an immutable audit-log row.
type Entry struct {
	ID           string
	ActorID      string
	ActorName    string
	Action       Action
	ResourceType string
	ResourceID   string
	Details      map[string]any
	IPAddress    *string
	CreatedAt    time.Time
}

type Filter struct {
	ResourceType string
	ResourceID   string
	ActorID      string
	Limit        int
}
