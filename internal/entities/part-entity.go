package entities

type Part struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Unit        *string `json:"unit"`
	Description *string `json:"description"`
}
