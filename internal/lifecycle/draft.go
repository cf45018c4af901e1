package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"factory-ops/internal/entities"
	"factory-ops/internal/filters"
	"factory-ops/pkg/constants"
)

type State string

const (
	StateIdle             State = "idle"
	StateCollectingHeader State = "collecting_header"
	StateAwaitingParts    State = "awaiting_parts"
	StateCommitting       State = "committing"
	StateDone             State = "done"
	StateCancelled        State = "cancelled"
)

// Header - шапка заявки. До фиксации живёт только в черновике.
type Header struct {
	FactoryID    *uint64 `json:"factory_id"`
	DepartmentID *uint64 `json:"department_id"`
	OrderType    string  `json:"order_type"`
	Description  string  `json:"description"`
}

// PartSelector - состояние формы добавления строки. Сбрасывается после каждого добавления.
type PartSelector struct {
	PartID               *uint64 `json:"part_id"`
	Qty                  int     `json:"qty"`
	FactorySectionID     *uint64 `json:"factory_section_id"`
	MachineID            *uint64 `json:"machine_id"`
	IsSampleSentToOffice bool    `json:"is_sample_sent_to_office"`
	Note                 string  `json:"note"`
}

type PartLine struct {
	PartID               uint64  `json:"part_id"`
	Qty                  int     `json:"qty"`
	FactorySectionID     *uint64 `json:"factory_section_id"`
	MachineID            *uint64 `json:"machine_id"`
	IsSampleSentToOffice bool    `json:"is_sample_sent_to_office"`
	Note                 *string `json:"note"`
}

// Draft - черновик заявки одного пользователя.
type Draft struct {
	ID        string       `json:"id"`
	OwnerID   uint64       `json:"owner_id"`
	State     State        `json:"state"`
	Header    Header       `json:"header"`
	Selector  PartSelector `json:"selector"`
	Parts     []PartLine   `json:"parts"`
	OrderID   *uint64      `json:"order_id,omitempty"`
	LastError string       `json:"last_error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func New(ownerID uint64, now time.Time) *Draft {
	return &Draft{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		State:     StateIdle,
		Parts:     []PartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Start создаёт черновик сразу на шаге заполнения шапки.
func Start(ownerID uint64, now time.Time) *Draft {
	d := New(ownerID, now)
	_ = d.Begin(now)
	return d
}

func (d *Draft) Begin(now time.Time) error {
	if d.State != StateIdle {
		return ErrInvalidTransition
	}
	d.State = StateCollectingHeader
	d.touch(now)
	return nil
}

func (d *Draft) SetHeader(h Header, now time.Time) error {
	if d.State != StateCollectingHeader {
		return ErrInvalidTransition
	}
	d.Header = h
	d.touch(now)
	return nil
}

func (d *Draft) IsOrderFormComplete() bool {
	h := d.Header
	return h.FactoryID != nil &&
		h.DepartmentID != nil &&
		constants.IsValidOrderType(h.OrderType) &&
		strings.TrimSpace(h.Description) != ""
}

func (d *Draft) ConfirmHeader(now time.Time) error {
	if d.State != StateCollectingHeader {
		return ErrInvalidTransition
	}
	if !d.IsOrderFormComplete() {
		return ErrHeaderIncomplete
	}
	d.Header.Description = strings.TrimSpace(d.Header.Description)
	d.State = StateAwaitingParts
	d.touch(now)
	return nil
}

func (d *Draft) isMachineOrder() bool {
	return d.Header.OrderType == constants.OrderTypeMachine
}

// SetSelector заменяет форму строки целиком. Для заявок на склад участок и станок не хранятся.
func (d *Draft) SetSelector(sel PartSelector, now time.Time) error {
	if d.State != StateAwaitingParts {
		return ErrInvalidTransition
	}
	if !d.isMachineOrder() {
		sel.FactorySectionID = nil
		sel.MachineID = nil
	}
	d.Selector = sel
	d.touch(now)
	return nil
}

// SelectSection меняет участок в форме строки и сбрасывает выбранный станок.
func (d *Draft) SelectSection(id *uint64, now time.Time) error {
	if d.State != StateAwaitingParts || !d.isMachineOrder() {
		return ErrInvalidTransition
	}
	loc := d.location().WithSection(id)
	d.Selector.FactorySectionID, d.Selector.MachineID = loc.FactorySectionID, loc.MachineID
	d.touch(now)
	return nil
}

func (d *Draft) SelectMachine(id *uint64, now time.Time) error {
	if d.State != StateAwaitingParts || !d.isMachineOrder() {
		return ErrInvalidTransition
	}
	loc := d.location().WithMachine(id)
	d.Selector.MachineID = loc.MachineID
	d.touch(now)
	return nil
}

func (d *Draft) location() filters.Hierarchy {
	return filters.Hierarchy{
		FactoryID:        d.Header.FactoryID,
		FactorySectionID: d.Selector.FactorySectionID,
		MachineID:        d.Selector.MachineID,
	}
}

func (d *Draft) IsAddPartFormComplete() bool {
	s := d.Selector
	if s.PartID == nil || s.Qty <= 0 {
		return false
	}
	if d.isMachineOrder() {
		return s.FactorySectionID != nil && s.MachineID != nil
	}
	return true
}

// AddPart переносит форму строки в список и очищает форму.
func (d *Draft) AddPart(now time.Time) (PartLine, error) {
	if d.State != StateAwaitingParts {
		return PartLine{}, ErrInvalidTransition
	}
	if !d.IsAddPartFormComplete() {
		return PartLine{}, ErrPartIncomplete
	}

	s := d.Selector
	line := PartLine{
		PartID:               *s.PartID,
		Qty:                  s.Qty,
		IsSampleSentToOffice: s.IsSampleSentToOffice,
	}
	if d.isMachineOrder() {
		line.FactorySectionID = copyID(s.FactorySectionID)
		line.MachineID = copyID(s.MachineID)
	}
	if note := strings.TrimSpace(s.Note); note != "" {
		line.Note = &note
	}

	d.Parts = append(d.Parts, line)
	d.Selector = PartSelector{}
	d.touch(now)
	return line, nil
}

func (d *Draft) RemovePart(index int, now time.Time) error {
	if d.State != StateCollectingHeader && d.State != StateAwaitingParts {
		return ErrInvalidTransition
	}
	if index < 0 || index >= len(d.Parts) {
		return ErrPartIndexOutOfRange
	}
	d.Parts = append(d.Parts[:index], d.Parts[index+1:]...)
	d.touch(now)
	return nil
}

// BeginCommit переводит черновик в фиксацию. Пустой список строк не пропускается, состояние не меняется.
func (d *Draft) BeginCommit(now time.Time) error {
	if d.State != StateAwaitingParts {
		return ErrInvalidTransition
	}
	if len(d.Parts) == 0 {
		return ErrNoParts
	}
	d.State = StateCommitting
	d.LastError = ""
	d.touch(now)
	return nil
}

func (d *Draft) CompleteCommit(orderID uint64, now time.Time) error {
	if d.State != StateCommitting {
		return ErrInvalidTransition
	}
	d.State = StateDone
	d.OrderID = &orderID
	d.Header = Header{}
	d.Selector = PartSelector{}
	d.Parts = []PartLine{}
	d.touch(now)
	return nil
}

// AbortCommit возвращает черновик к добавлению строк, строки сохраняются для повтора.
func (d *Draft) AbortCommit(cause error, now time.Time) error {
	if d.State != StateCommitting {
		return ErrInvalidTransition
	}
	d.State = StateAwaitingParts
	if cause != nil {
		d.LastError = cause.Error()
	}
	d.touch(now)
	return nil
}

func (d *Draft) Cancel(now time.Time) error {
	if d.State != StateCollectingHeader && d.State != StateAwaitingParts {
		return ErrInvalidTransition
	}
	d.State = StateCancelled
	d.Header = Header{}
	d.Selector = PartSelector{}
	d.Parts = []PartLine{}
	d.touch(now)
	return nil
}

func (d *Draft) IsTerminal() bool {
	return d.State == StateDone || d.State == StateCancelled
}

// BuildOrder раскладывает черновик в записи для вставки. Участок и станок шапки берутся
// из первой строки, направленной на станок; для заявок на склад они пустые.
func (d *Draft) BuildOrder(actorID uint64, initialStatusID uint64) (entities.Order, []entities.OrderedPart) {
	order := entities.Order{
		OrderNote:       d.Header.Description,
		CreatedByUserID: actorID,
		DepartmentID:    derefID(d.Header.DepartmentID),
		CurrentStatusID: initialStatusID,
		FactoryID:       derefID(d.Header.FactoryID),
		OrderType:       d.Header.OrderType,
	}

	parts := make([]entities.OrderedPart, 0, len(d.Parts))
	for _, line := range d.Parts {
		part := entities.OrderedPart{
			PartID:               line.PartID,
			Qty:                  line.Qty,
			FactoryID:            order.FactoryID,
			IsSampleSentToOffice: line.IsSampleSentToOffice,
			Note:                 line.Note,
		}
		if d.isMachineOrder() {
			part.FactorySectionID = copyID(line.FactorySectionID)
			part.MachineID = copyID(line.MachineID)
			if order.MachineID == nil && part.IsMachineDestined() {
				order.FactorySectionID = copyID(part.FactorySectionID)
				order.MachineID = copyID(part.MachineID)
			}
		}
		parts = append(parts, part)
	}
	return order, parts
}

func (d *Draft) touch(now time.Time) {
	d.UpdatedAt = now
}

func copyID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func derefID(id *uint64) uint64 {
	if id == nil {
		return 0
	}
	return *id
}
