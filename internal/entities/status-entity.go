package entities

type Status struct {
	ID      uint64  `json:"id"`
	Name    string  `json:"name"`
	Comment *string `json:"comment"`
}
