package models

type Campus struct {
	Lifecycle
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone,omitempty"`
}
