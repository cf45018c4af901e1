package dto

// CatalogDTO - справочники для выпадающих списков формы создания и фильтров.
type CatalogDTO struct {
	Factories   []ShortFactoryDTO `json:"factories"`
	Departments []ShortDTO        `json:"departments"`
	Statuses    []ShortDTO        `json:"statuses"`
}
