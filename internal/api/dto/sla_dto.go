package dto

// SlaSweepResponse reports how many tickets changed SLA status.
type SlaSweepResponse struct {
	Updated int `json:"updated"`
}
