package filters

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"factory-ops/pkg/constants"
)

// OrderFilter - зафиксированный фильтр списка заявок. Пустые поля не фильтруют.
// Query и Date взаимоисключающие.
type OrderFilter struct {
	Query            string     `json:"query,omitempty"`
	Date             *time.Time `json:"date,omitempty"`
	FactoryID        *uint64    `json:"factory_id,omitempty"`
	FactorySectionID *uint64    `json:"factory_section_id,omitempty"`
	MachineID        *uint64    `json:"machine_id,omitempty"`
	DepartmentID     *uint64    `json:"department_id,omitempty"`
	StatusID         *uint64    `json:"status_id,omitempty"`
}

func (f OrderFilter) IsEmpty() bool {
	return f.Query == "" && f.Date == nil && f.FactoryID == nil && f.FactorySectionID == nil &&
		f.MachineID == nil && f.DepartmentID == nil && f.StatusID == nil
}

// OrderID возвращает номер заявки из текстового запроса. Нечисловой запрос игнорируется.
func (f OrderFilter) OrderID() (uint64, bool) {
	if f.Query == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimSpace(f.Query), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// DateRange - полуинтервал [начало дня, начало следующего дня) в поясе даты.
func (f OrderFilter) DateRange() (from, to time.Time, ok bool) {
	if f.Date == nil {
		return time.Time{}, time.Time{}, false
	}
	from = startOfDay(*f.Date)
	return from, from.AddDate(0, 0, 1), true
}

// ParseID приводит строку к id. "", "all", "-1" и всё нечисловое означает "без фильтра".
func ParseID(raw string) *uint64 {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "all", "-1":
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}

// ParseDate разбирает дату формата 2006-01-02 в поясе loc.
func ParseDate(raw string, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(constants.DateLayout, raw, loc)
	if err != nil {
		return nil
	}
	return &d
}

// FromQuery собирает фильтр из query-параметров, прогоняя редьюсер от родителя к потомкам.
func FromQuery(values url.Values, loc *time.Location) OrderFilter {
	s := SelectionFromQuery(values, loc)
	return s.ToFilter()
}

func SelectionFromQuery(values url.Values, loc *time.Location) Selection {
	s := Selection{Mode: ModeID}

	mode := SearchMode(strings.ToLower(values.Get("search_type")))
	s = Reduce(s, SetMode(mode))
	if s.Mode == ModeDate {
		s = Reduce(s, SetDate(ParseDate(values.Get("date"), loc)))
	} else {
		q := values.Get("query")
		if q == "" {
			q = values.Get("search")
		}
		s = Reduce(s, SetQuery(q))
	}

	s = Reduce(s, SelectFactory(ParseID(values.Get("factory_id"))))
	s = Reduce(s, SelectSection(ParseID(values.Get("factory_section_id"))))
	s = Reduce(s, SelectMachine(ParseID(values.Get("machine_id"))))
	s = Reduce(s, SelectDepartment(ParseID(values.Get("department_id"))))
	s = Reduce(s, SelectStatus(ParseID(values.Get("status_id"))))
	return s
}
