package audit

import "time"

// TimelineRow is one cheque history entry joined with its cheque identity.
type TimelineRow struct {
	ID        int64     `json:"id"`
	ChequeID  int64     `json:"cheque_id"`
	ChequeUID string    `json:"cheque_uid"`
	ChequeNo  string    `json:"cheque_no"`
	Action    string    `json:"action"`
	OldStatus *string   `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Remarks   string    `json:"remarks"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineFilters narrows the history timeline.
type TimelineFilters struct {
	ChequeUID string
	Action    string
	Actor     string
	From      time.Time
	To        time.Time
	Page      int
	PageSize  int
}

// PagingInfo describes the window returned by Timeline.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result bundles timeline rows with paging state.
type Result struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}
