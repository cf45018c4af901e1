package main

import (
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"factory-ops/pkg/config"
	"factory-ops/pkg/database/postgresql"
	"factory-ops/pkg/service"
	"factory-ops/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runCore := flag.Bool("core", false, "Запустить наполнение базовых справочников (статусы, отделы, детали)")
	runFactories := flag.Bool("factories", false, "Запустить наполнение фабрик, участков и станков")
	runProfiles := flag.Bool("profiles", false, "Создать тестовые профили")
	printTokens := flag.Bool("tokens", false, "Напечатать JWT тестовых профилей для локальной разработки")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -core -factories -profiles)")

	flag.Parse()

	if !*runCore && !*runFactories && !*runProfiles && !*printTokens && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -core")
		log.Println("  go run ./seeders/cmd/seed -all -tokens")
		log.Println("======================================================")
		return
	}

	cfg := config.New()

	if *runAll || *runCore || *runFactories || *runProfiles {
		dbPool := postgresql.ConnectDB(cfg.Postgres)
		defer dbPool.Close()

		log.Println("======================================================")

		if *runAll || *runCore {
			seeders.SeedCoreDictionaries(dbPool)
			log.Println("======================================================")
		}
		if *runAll || *runFactories {
			seeders.SeedFactories(dbPool)
			log.Println("======================================================")
		}
		if *runAll || *runProfiles {
			seeders.SeedProfiles(dbPool)
			log.Println("======================================================")
		}
	}

	if *printTokens {
		jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, 30*24*time.Hour, zap.NewNop())
		for _, p := range seeders.DevProfiles() {
			token, err := jwtSvc.GenerateToken(p)
			if err != nil {
				log.Fatalf("❌ Не удалось выпустить токен для %s: %v", p.Email, err)
			}
			log.Printf("🔑 %-10s %s", p.Permission, token)
		}
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции успешно завершены.")
	log.Println("======================================================")
}
