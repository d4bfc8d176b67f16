package types

type OutputSuccess struct {
	Success bool   `json:"success"`
	Email   string `json:"email,omitempty"`
}
