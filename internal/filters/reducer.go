package filters

import "time"

type ActionKind int

const (
	ActSetMode ActionKind = iota
	ActSetQuery
	ActSetDate
	ActSelectFactory
	ActSelectSection
	ActSelectMachine
	ActSelectDepartment
	ActSelectStatus
	ActReset
)

type Action struct {
	Kind  ActionKind
	Mode  SearchMode
	Query string
	Date  *time.Time
	ID    *uint64
}

func SetMode(m SearchMode) Action { return Action{Kind: ActSetMode, Mode: m} }
func SetQuery(q string) Action { return Action{Kind: ActSetQuery, Query: q} }
func SetDate(d *time.Time) Action { return Action{Kind: ActSetDate, Date: d} }
func SelectFactory(id *uint64) Action { return Action{Kind: ActSelectFactory, ID: id} }
func SelectSection(id *uint64) Action { return Action{Kind: ActSelectSection, ID: id} }
func SelectMachine(id *uint64) Action { return Action{Kind: ActSelectMachine, ID: id} }
func SelectDepartment(id *uint64) Action { return Action{Kind: ActSelectDepartment, ID: id} }
func SelectStatus(id *uint64) Action { return Action{Kind: ActSelectStatus, ID: id} }
func ResetAction() Action { return Action{Kind: ActReset} }

// Reduce - единственное место, где живут правила каскадного сброса.
// Смена режима поиска очищает и текст, и дату; выбор родителя очищает всех потомков.
func Reduce(s Selection, a Action) Selection {
	switch a.Kind {
	case ActSetMode:
		mode := a.Mode
		if mode != ModeDate {
			mode = ModeID
		}
		s.Mode = mode
		s.Query = ""
		s.Date = nil
	case ActSetQuery:
		s.Mode = ModeID
		s.Query = a.Query
		s.Date = nil
	case ActSetDate:
		s.Mode = ModeDate
		s.Query = ""
		s.Date = nil
		if a.Date != nil {
			d := startOfDay(*a.Date)
			s.Date = &d
		}
	case ActSelectFactory:
		s.Hierarchy = s.Hierarchy.WithFactory(a.ID)
	case ActSelectSection:
		s.Hierarchy = s.Hierarchy.WithSection(a.ID)
	case ActSelectMachine:
		s.Hierarchy = s.Hierarchy.WithMachine(a.ID)
	case ActSelectDepartment:
		s.DepartmentID = copyID(a.ID)
	case ActSelectStatus:
		s.StatusID = copyID(a.ID)
	case ActReset:
		return Selection{Mode: ModeID}
	}
	return s
}
