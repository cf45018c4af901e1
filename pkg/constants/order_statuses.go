package constants

// --- СТАТУСЫ ЗАЯВОК (совпадают с statuses.name в БД) ---
const (
	StatusPending       = "Pending"
	StatusApproved      = "Approved"
	StatusProcessing    = "Processing"
	StatusPartsSent     = "Parts Sent"
	StatusPartsReceived = "Parts Received"
	StatusRejected      = "Rejected"
)

// InitialStatusID - статус, с которым создаётся любая заявка (Pending).
const InitialStatusID uint64 = 1

// Финальные статусы
var FinalStatuses = []string{
	StatusPartsReceived,
	StatusRejected,
}

func IsFinalStatus(name string) bool {
	for _, s := range FinalStatuses {
		if s == name {
			return true
		}
	}
	return false
}

// Типы заявок
const (
	OrderTypeStorage = "Storage"
	OrderTypeMachine = "Machine"
)

func IsValidOrderType(t string) bool {
	return t == OrderTypeStorage || t == OrderTypeMachine
}
