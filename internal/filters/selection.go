package filters

import (
	"strings"
	"time"
)

type SearchMode string

const (
	ModeID   SearchMode = "id"
	ModeDate SearchMode = "date"
)

// Hierarchy - выбор завод → участок → станок. Смена родителя всегда сбрасывает потомков.
type Hierarchy struct {
	FactoryID        *uint64 `json:"factory_id"`
	FactorySectionID *uint64 `json:"factory_section_id"`
	MachineID        *uint64 `json:"machine_id"`
}

func (h Hierarchy) WithFactory(id *uint64) Hierarchy {
	return Hierarchy{FactoryID: copyID(id)}
}

func (h Hierarchy) WithSection(id *uint64) Hierarchy {
	return Hierarchy{FactoryID: h.FactoryID, FactorySectionID: copyID(id)}
}

func (h Hierarchy) WithMachine(id *uint64) Hierarchy {
	h.MachineID = copyID(id)
	return h
}

// Selection - незафиксированное состояние панели фильтров.
type Selection struct {
	Mode  SearchMode `json:"search_type"`
	Query string     `json:"query"`
	Date  *time.Time `json:"date"`
	Hierarchy
	DepartmentID *uint64 `json:"department_id"`
	StatusID     *uint64 `json:"status_id"`
}

// ToFilter превращает выбор в фильтр запроса. Учитывается только значение текущего режима поиска.
func (s Selection) ToFilter() OrderFilter {
	f := OrderFilter{
		FactoryID:        copyID(s.FactoryID),
		FactorySectionID: copyID(s.FactorySectionID),
		MachineID:        copyID(s.MachineID),
		DepartmentID:     copyID(s.DepartmentID),
		StatusID:         copyID(s.StatusID),
	}
	switch s.Mode {
	case ModeDate:
		if s.Date != nil {
			d := *s.Date
			f.Date = &d
		}
	default:
		f.Query = strings.TrimSpace(s.Query)
	}
	return f
}

func copyID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
