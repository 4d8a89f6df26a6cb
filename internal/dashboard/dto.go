// AngelaMos | 2026
// dto.go

package dashboard

type DashboardResponse struct {
	Entity   string    `json:"entity"`
	Sections []Section `json:"sections"`
}

type CreateRowRequest struct {
	Fields map[string]any `json:"fields" validate:"required"`
}

type UpdateRowRequest struct {
	Changes map[string]any `json:"changes" validate:"required"`
}

type StartEditRequest struct {
	RowID string `json:"row_id" validate:"required"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}
