package seeders

import (
	"factory-ops/internal/entities"
	"factory-ops/pkg/constants"
)

// Порядок важен: id статусов 1..6 совпадают с позицией в списке. Pending обязан быть первым.
var statusesData = []struct {
	Name    string
	Comment string
}{
	{Name: constants.StatusPending, Comment: "Заявка создана и ждёт согласования"},
	{Name: constants.StatusApproved, Comment: "Согласована отделом"},
	{Name: constants.StatusProcessing, Comment: "Офис закупает детали"},
	{Name: constants.StatusPartsSent, Comment: "Детали отправлены на фабрику"},
	{Name: constants.StatusPartsReceived, Comment: "Детали получены фабрикой"},
	{Name: constants.StatusRejected, Comment: "Заявка отклонена"},
}

var departmentsData = []string{
	"Production",
	"Maintenance",
	"Quality Control",
	"Procurement",
}

type sectionSeed struct {
	Name     string
	Machines []string
}

type factorySeed struct {
	Name         string
	Abbreviation string
	Sections     []sectionSeed
}

var factoriesData = []factorySeed{
	{
		Name:         "Factory A",
		Abbreviation: "FA",
		Sections: []sectionSeed{
			{Name: "Weaving", Machines: []string{"Loom 1", "Loom 2", "Loom 3"}},
			{Name: "Dyeing", Machines: []string{"Dye Jet 1", "Dye Jet 2"}},
		},
	},
	{
		Name:         "Factory B",
		Abbreviation: "FB",
		Sections: []sectionSeed{
			{Name: "Knitting", Machines: []string{"Knitter 1", "Knitter 2"}},
			{Name: "Finishing", Machines: []string{"Stenter 1"}},
		},
	},
}

var partsData = []struct {
	Name        string
	Unit        string
	Description string
}{
	{Name: "Bearing 6204", Unit: "pcs", Description: "Шариковый подшипник"},
	{Name: "V-Belt A42", Unit: "pcs", Description: "Клиновой ремень"},
	{Name: "Shuttle", Unit: "pcs", Description: "Челнок ткацкого станка"},
	{Name: "Heddle Wire", Unit: "pcs", Description: "Ремизка"},
	{Name: "Gear Oil 80W-90", Unit: "l", Description: "Трансмиссионное масло"},
	{Name: "Solenoid Valve 24V", Unit: "pcs", Description: "Электромагнитный клапан"},
}

// Профили для локальной разработки. Настоящие пользователи приходят из внешней авторизации.
var profilesData = []entities.Profile{
	{ID: 1, Name: "Admin", Email: "admin@factory-ops.local", Permission: constants.PermissionAdmin},
	{ID: 2, Name: "Department User", Email: "department@factory-ops.local", Permission: constants.PermissionDepartment},
	{ID: 3, Name: "Office User", Email: "office@factory-ops.local", Permission: constants.PermissionOffice},
	{ID: 4, Name: "Factory User", Email: "factory@factory-ops.local", Permission: constants.PermissionFactory},
}
