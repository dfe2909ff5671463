package simapi

// FieldResponse is the merged scent field of the latest display frame,
// ghost border included.
type FieldResponse struct {
	Tick  int64     `json:"tick"`
	Rows  int       `json:"rows"`
	Cols  int       `json:"cols"`
	Cells []float64 `json:"cells"`
}
