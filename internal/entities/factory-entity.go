package entities

type Factory struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type FactorySection struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	FactoryID uint64 `json:"factory_id"`
}
