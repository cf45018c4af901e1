package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCoreDictionaries наполняет справочники без зависимостей: статусы, отделы, детали.
func SeedCoreDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения базовых справочников...")

	if err := seedStatuses(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Статусов (Statuses): %v", err)
	}
	if err := seedDepartments(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Отделов (Departments): %v", err)
	}
	if err := seedParts(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Деталей (Parts): %v", err)
	}
	log.Println("✅ Наполнение базовых справочников завершено!")
}

// SeedFactories создаёт фабрики, участки, станки и складские остатки деталей на станках.
func SeedFactories(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения фабрик и станков...")

	if err := seedFactories(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Фабрик (Factories): %v", err)
	}
	if err := seedMachineParts(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения остатков деталей (MachineParts): %v", err)
	}
	log.Println("✅ Наполнение фабрик и станков завершено!")
}

// SeedProfiles создаёт тестовые профили для каждого уровня прав.
func SeedProfiles(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания тестовых профилей...")

	if err := seedProfiles(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания Профилей (Profiles): %v", err)
	}
	log.Println("✅ Тестовые профили созданы!")
}
