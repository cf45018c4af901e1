package dto

type ShortDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ShortFactoryDTO struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type ShortProfileDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Permission string `json:"permission,omitempty"`
}
